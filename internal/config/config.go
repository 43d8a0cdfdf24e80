// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of submission workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the event store.
	ShardCount int `koanf:"shard_count"`

	// MaxRankingLimit caps GET ranking ?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// DefaultMethod selects the ranking method used when a request does
	// not name one: spearman or general.
	DefaultMethod string `koanf:"default_method"`
}

// New creates a Config with defaults applied.
func New() *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       100_000,
		WorkerCount:     runtime.NumCPU() * 4,
		DedupeSize:      500_000,
		ShardCount:      8,
		MaxRankingLimit: 1000,
		DefaultMethod:   "spearman",
	}
	return c
}
