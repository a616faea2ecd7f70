package gateway

import "time"

// Config tunes the liveness protocol. The defaults match spec: a 30s
// server-side ping tick, two missed ticks (60s) force-terminate a
// session.
type Config struct {
	PingInterval time.Duration
	WriteWait    time.Duration
}

// DefaultConfig returns the baseline liveness timings.
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		WriteWait:    10 * time.Second,
	}
}
