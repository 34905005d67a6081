// Package cache stores serialized calculation results keyed by their inputs.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// Cache is a key/value store for encoded results. A miss is reported with
// ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options select and configure a backend.
type Options struct {
	Backend   string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
	// MaxEntries caps the memory backend. Zero leaves it unbounded.
	MaxEntries int
}

// New returns the backend named by opts.Backend. An empty backend or "none"
// returns a nil Cache, which callers treat as caching disabled.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", constants.CacheBackendNone:
		return nil, nil
	case constants.CacheBackendMemory:
		return NewMemoryCache(opts.TTL, opts.MaxEntries), nil
	case constants.CacheBackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return NewRedisCache(opts.RedisAddr, opts.RedisDB, opts.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Key builds a namespaced cache key for an operation over its numeric inputs
// and optional labels.
func Key(op string, values []float64, labels ...string) string {
	d := xxhash.New()
	_, _ = d.WriteString(op)
	for _, v := range values {
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, l := range labels {
		_, _ = d.WriteString("|")
		_, _ = d.WriteString(l)
	}
	return constants.CacheKeyPrefix + op + ":" + strconv.FormatUint(d.Sum64(), 16)
}
