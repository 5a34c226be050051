package audit

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config specifies the audit sink
type Config struct {
	// Backend is one of memory|sqlite|redis, memory by default
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,oneof=memory sqlite redis"`
	// Path is the sqlite database file
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// RedisURL is the redis connection URL, for example redis://localhost:6379/0
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	// Prefix is the redis key prefix
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// MaxEntries limits the number of records kept by memory and redis sinks
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty" validate:"gte=0"`
}

// New returns the sink for the configuration
func New(ctx context.Context, cfg *Config) (Sink, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemorySink(cfg.MaxEntries), nil
	case BackendSQLite:
		return NewSQLiteSink(ctx, cfg.Path)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("redis_url is required")
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid redis_url")
		}
		client := redis.NewClient(opts)
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "failed to connect to Redis")
		}
		return NewRedisSink(client, cfg.Prefix, cfg.MaxEntries), nil
	default:
		return nil, errors.Errorf("unsupported audit backend: %s", cfg.Backend)
	}
}
