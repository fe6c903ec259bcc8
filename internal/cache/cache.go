// Package cache stores rendered schedule responses keyed by loan terms.
// Schedules are cheap to recompute, so every backend is best-effort: a miss
// or a backend error only means the schedule is generated again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/constants"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-valued cache. Get returns ErrMiss for an absent key and
// any other error for a backend failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config selects and configures a cache backend.
type Config struct {
	Backend       string `yaml:"backend"`
	RedisAddress  string `yaml:"redisAddress"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	TTLSeconds    int    `yaml:"ttlSeconds"`
	MaxEntries    int    `yaml:"maxEntries"`
}

// TTL returns the entry lifetime, falling back to the default.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return constants.DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// New builds the configured backend. It returns nil when caching is off.
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", constants.CacheBackendNone:
		return nil, nil
	case constants.CacheBackendMemory:
		return NewMemory(cfg.MaxEntries, cfg.TTL()), nil
	case constants.CacheBackendRedis:
		if cfg.RedisAddress == "" {
			return nil, fmt.Errorf("cache backend redis requires redisAddress")
		}
		return NewRedis(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, cfg.TTL()), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// Key returns the canonical cache key for a rendering of the given terms.
// variant distinguishes renderings of the same schedule, e.g. a start month.
func Key(terms amortization.LoanTerms, variant string) string {
	return fmt.Sprintf("loan-gauge:schedule:%s:%s:%d:%s",
		terms.Principal.StringFixedBank(constants.CurrencyPlaces),
		terms.AnnualInterestRate.String(),
		terms.TermYears,
		variant,
	)
}
