package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/finstat-dev/finstat/internal/config"
)

// FromConfig builds the sinks enabled in cfg.Output.Formats, in that order.
// The caller closes the returned Multi.
func FromConfig(ctx context.Context, cfg *config.Config) (Multi, error) {
	dir := cfg.Resolve(cfg.Output.Dir)

	var m Multi
	for _, format := range cfg.Output.Formats {
		switch format {
		case config.FormatCSV:
			m = append(m, NewCSV(dir))
		case config.FormatXLSX:
			m = append(m, NewXLSX(dir))
		case config.FormatPostgres:
			dsn := cfg.PostgresDSN()
			if dsn == "" {
				m.Close()
				return nil, errors.New("postgres: connection string not set in $" + cfg.Output.Postgres.DSNEnv)
			}
			pool, err := Connect(ctx, dsn, cfg.Output.Postgres.MaxConns)
			if err != nil {
				m.Close()
				return nil, fmt.Errorf("postgres: %w", err)
			}
			pg := NewPostgres(pool)
			if err := pg.EnsureSchema(ctx); err != nil {
				pg.Close()
				m.Close()
				return nil, fmt.Errorf("postgres: %w", err)
			}
			m = append(m, pg)
		default:
			m.Close()
			return nil, fmt.Errorf("unknown output format %q", format)
		}
	}
	return m, nil
}
