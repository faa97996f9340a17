package redis

import "time"

// Config tunes the Redis backend. Zero fields fall back to DefaultConfig.
type Config struct {
	URL          string // redis://[user:pass@]host:port/db
	PoolSize     int
	MinIdleConns int

	// PingTimeout bounds the reachability check New performs.
	PingTimeout time.Duration

	// MaxTxRetries caps WATCH retries before a write gives up with
	// model.ErrConflict.
	MaxTxRetries int
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		PingTimeout:  5 * time.Second,
		MaxTxRetries: 5,
	}
}
