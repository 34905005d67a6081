package datetime

import (
	"testing"
)

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		months   int
		expected string
		wantErr  bool
	}{
		{name: "Add multiple years", date: "2025-01", months: 24, expected: "2027-01"},
		{name: "Cross year boundary forward", date: "2025-06", months: 8, expected: "2026-02"},
		{name: "Cross year boundary backward", date: "2025-06", months: -8, expected: "2024-10"},
		{name: "Zero months", date: "2025-06", months: 0, expected: "2025-06"},
		{name: "Invalid date", date: "June 2025", months: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, DateTimeLayout, tt.months)
			if tt.wantErr {
				if err == nil {
					t.Errorf("OffsetDate() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("OffsetDate() error = %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "Empty stays empty", input: "", expected: ""},
		{name: "Whitespace only", input: "   ", expected: ""},
		{name: "Valid month", input: "2025-03", expected: "2025-03"},
		{name: "Surrounding whitespace", input: " 2025-03 ", expected: "2025-03"},
		{name: "Full date rejected", input: "2025-03-01", wantErr: true},
		{name: "Month out of range", input: "2025-13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizeMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeMonth(%q) expected error but got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeMonth(%q) error = %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("NormalizeMonth(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPaymentMonth(t *testing.T) {
	first, err := PaymentMonth("2025-01", 1)
	if err != nil {
		t.Fatalf("PaymentMonth() error = %v", err)
	}
	if first != "2025-01" {
		t.Errorf("first payment month = %s, expected 2025-01", first)
	}

	last, err := PaymentMonth("2025-01", 360)
	if err != nil {
		t.Fatalf("PaymentMonth() error = %v", err)
	}
	if last != "2054-12" {
		t.Errorf("360th payment month = %s, expected 2054-12", last)
	}

	if _, err := PaymentMonth("2025-01", 0); err == nil {
		t.Errorf("expected error for payment number 0")
	}
}
