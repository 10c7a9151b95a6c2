package faktory

import (
	"fmt"
	"time"
)

// Config is the immutable client configuration. It is created once, at
// construction time, and never mutated afterward; environment-variable
// resolution is an outer-adapter concern (see internal/env), not part of
// the core.
type Config struct {
	Host     string
	Port     int
	Password string
	Labels   []string
	WorkerID string

	ReconnectAttempts  int
	ReconnectBaseDelay time.Duration
	SocketTimeout      time.Duration
}

// NewConfig returns a Config with every optional field defaulted, ready
// to have Host/Port/Password/Labels/WorkerID overridden by the caller.
func NewConfig(host string) (*Config, error) {
	if host == "" {
		return nil, &ConfigError{Reason: "host must not be empty"}
	}

	return &Config{
		Host:               host,
		Port:               DefaultPort,
		ReconnectAttempts:  DefaultReconnectAttempts,
		ReconnectBaseDelay: DefaultReconnectBaseDelay,
		SocketTimeout:      DefaultSocketTimeout,
	}, nil
}

func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
