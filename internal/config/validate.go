package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Registry.Path == "" {
		return errors.New("registry.path is required")
	}

	switch c.Source.Name {
	case "eodhd":
		if c.Source.EODHD.RateLimit < 1 {
			return fmt.Errorf("source.eodhd.rate_limit must be >= 1, got %d", c.Source.EODHD.RateLimit)
		}
		if c.Source.EODHD.Timeout < 0 {
			return errors.New("source.eodhd.timeout must not be negative")
		}
	case "csvdir":
	default:
		return fmt.Errorf("source.name %q is not one of eodhd, csvdir", c.Source.Name)
	}

	for _, f := range c.Output.Formats {
		switch f {
		case FormatCSV, FormatXLSX, FormatPostgres:
		default:
			return fmt.Errorf("output.formats: unknown format %q", f)
		}
	}
	if c.Output.Postgres.MaxConns < 1 {
		return fmt.Errorf("output.postgres.max_conns must be >= 1, got %d", c.Output.Postgres.MaxConns)
	}

	seen := make(map[string]bool)
	for _, g := range c.Granularities {
		if g != "quarterly" && g != "annual" {
			return fmt.Errorf("granularities: unknown granularity %q", g)
		}
		if seen[g] {
			return fmt.Errorf("granularities: %q listed twice", g)
		}
		seen[g] = true
	}

	if c.History.Years < 1 {
		return fmt.Errorf("history.years must be >= 1, got %d", c.History.Years)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
