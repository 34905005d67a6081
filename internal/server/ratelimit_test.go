package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Errorf("other clients have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Errorf("bucket should refill after the window")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("10.0.0.1")

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	if len(rl.clients) != 0 {
		t.Errorf("expected stale bucket to be removed, %d remain", len(rl.clients))
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestRetryAfter(t *testing.T) {
	if got := retryAfter(time.Minute); got != "60" {
		t.Errorf("retryAfter(1m) = %q", got)
	}
	if got := retryAfter(100 * time.Millisecond); got != "1" {
		t.Errorf("retryAfter(100ms) = %q", got)
	}
}
