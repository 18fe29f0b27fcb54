package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS statement_wide (
	granularity TEXT    NOT NULL,
	kind        TEXT    NOT NULL,
	row_num     INTEGER NOT NULL,
	account     TEXT    NOT NULL,
	entity      TEXT    NOT NULL,
	periods     JSONB   NOT NULL,
	PRIMARY KEY (granularity, kind, row_num)
);
CREATE TABLE IF NOT EXISTS statement_observations (
	granularity TEXT    NOT NULL,
	row_num     INTEGER NOT NULL,
	accounts    TEXT    NOT NULL,
	code        TEXT    NOT NULL,
	year        TEXT    NOT NULL,
	value       NUMERIC,
	report      TEXT    NOT NULL,
	PRIMARY KEY (granularity, row_num)
);
CREATE TABLE IF NOT EXISTS price_history (
	code           TEXT    NOT NULL,
	date           DATE    NOT NULL,
	open           NUMERIC NOT NULL,
	high           NUMERIC NOT NULL,
	low            NUMERIC NOT NULL,
	close          NUMERIC NOT NULL,
	adjusted_close NUMERIC NOT NULL,
	volume         BIGINT  NOT NULL,
	PRIMARY KEY (code, date)
);`

var (
	wideColumns = []string{"granularity", "kind", "row_num", "account", "entity", "periods"}
	tallColumns    = []string{"granularity", "row_num", "accounts", "code", "year", "value", "report"}
	historyColumns = []string{"code", "date", "open", "high", "low", "close", "adjusted_close", "volume"}
)

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres stores wide rows with their periods as JSONB and tall rows as one
// observation per row.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a sink on pool. The sink owns the pool and closes it.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Name() string { return "postgres" }

// EnsureSchema creates the sink's tables if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Write replaces the rows of out's granularity in one transaction.
func (s *Postgres) Write(ctx context.Context, out *model.Output) error {
	wide, err := wideRows(out)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	g := string(out.Granularity)
	if _, err := tx.Exec(ctx, `DELETE FROM statement_wide WHERE granularity = $1`, g); err != nil {
		return fmt.Errorf("clearing statement_wide: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM statement_observations WHERE granularity = $1`, g); err != nil {
		return fmt.Errorf("clearing statement_observations: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"statement_wide"}, wideColumns, pgx.CopyFromRows(wide)); err != nil {
		return fmt.Errorf("copying statement_wide: %w", err)
	}
	if out.Tall != nil {
		tall := tallRows(out.Tall)
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"statement_observations"}, tallColumns, pgx.CopyFromRows(tall)); err != nil {
			return fmt.Errorf("copying statement_observations: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WriteHistory replaces the stored price history with h in one transaction.
func (s *Postgres) WriteHistory(ctx context.Context, h *model.PriceHistory) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM price_history`); err != nil {
		return fmt.Errorf("clearing price_history: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"price_history"}, historyColumns, pgx.CopyFromRows(historyRows(h))); err != nil {
		return fmt.Errorf("copying price_history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func wideRows(out *model.Output) ([][]any, error) {
	var rows [][]any
	for _, w := range out.Wide {
		for i, r := range w.Rows {
			periods := make(map[string]decimal.NullDecimal, len(w.Periods))
			for j, p := range w.Periods {
				periods[p] = r.Values[j]
			}
			data, err := json.Marshal(periods)
			if err != nil {
				return nil, fmt.Errorf("encoding periods of %s row %d: %w", w.Kind, i, err)
			}
			rows = append(rows, []any{string(out.Granularity), string(w.Kind), i, r.Account, r.Entity, string(data)})
		}
	}
	return rows, nil
}

func tallRows(t *model.TallTable) [][]any {
	rows := make([][]any, 0, len(t.Rows))
	for i, r := range t.Rows {
		rows = append(rows, []any{string(t.Granularity), i, r.Account, r.Entity, r.Period, numeric(r.Value), string(r.Kind)})
	}
	return rows
}

func historyRows(h *model.PriceHistory) [][]any {
	rows := make([][]any, 0, len(h.Bars))
	for _, b := range h.Bars {
		rows = append(rows, []any{
			b.Code,
			b.Date,
			numeric(decimal.NewNullDecimal(b.Open)),
			numeric(decimal.NewNullDecimal(b.High)),
			numeric(decimal.NewNullDecimal(b.Low)),
			numeric(decimal.NewNullDecimal(b.Close)),
			numeric(decimal.NewNullDecimal(b.AdjustedClose)),
			b.Volume,
		})
	}
	return rows
}

func numeric(v decimal.NullDecimal) pgtype.Numeric {
	if !v.Valid {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: v.Decimal.Coefficient(), Exp: v.Decimal.Exponent(), Valid: true}
}
