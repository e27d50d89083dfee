package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 0..65535 (got %d)", c.Server.Port)
	}

	if !strings.HasPrefix(c.API.Prefix, "/") {
		return fmt.Errorf("api.prefix must start with / (got %q)", c.API.Prefix)
	}
	if strings.TrimRight(c.API.Prefix, "/") == "" {
		return fmt.Errorf("api.prefix must carry a version segment (got %q)", c.API.Prefix)
	}

	for name, p := range map[string]string{
		"graphql.path":  c.GraphQL.Path,
		"notifier.path": c.Notifier.Path,
		"metrics.path":  c.Metrics.Path,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with / (got %q)", name, p)
		}
	}

	if c.GraphQL.ComplexityLimit < 0 {
		return fmt.Errorf("graphql.complexity_limit must be >= 0 (got %d)", c.GraphQL.ComplexityLimit)
	}

	if err := c.Notifier.validate(); err != nil {
		return fmt.Errorf("notifier: %w", err)
	}

	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("rate_limit.writes_per_minute must be >= 0 (got %d)", c.RateLimit.WritesPerMinute)
	}
	if c.RateLimit.Enabled() && c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 when limiting is enabled")
	}

	return nil
}

func (n *NotifierConfig) validate() error {
	if n.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be > 0 (got %d)", n.BufferSize)
	}
	if n.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be > 0 (got %s)", n.WriteTimeout)
	}
	if n.PingInterval <= 0 {
		return fmt.Errorf("ping_interval must be > 0 (got %s)", n.PingInterval)
	}
	return nil
}
