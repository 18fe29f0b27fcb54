// Package statement turns per-entity raw statements into cross-entity wide
// tables and the long-format table that unifies all statement kinds.
package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"github.com/finstat-dev/finstat/internal/logging"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/period"
)

// ErrEmptyTable is the cause of a FetchFailure when the source answered
// without error but returned no observations.
var ErrEmptyTable = errors.New("empty statement table")

// FetchFailure reports that the source could not provide a statement for one
// entity. It is recoverable: the entity is left out of that statement kind.
type FetchFailure struct {
	Entity      string
	Kind        model.StatementKind
	Granularity model.Granularity
	Err         error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("fetching %s %s for %s: %v", e.Granularity, e.Kind, e.Entity, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// Fetcher is the part of a statement source the loader needs.
type Fetcher interface {
	Fetch(ctx context.Context, entity string, kind model.StatementKind, g model.Granularity) (*model.RawTable, error)
}

// Loader fetches and normalizes one entity's statement at a time.
type Loader struct {
	src    Fetcher
	logger *log.Logger
}

// NewLoader creates a Loader reading from src. A nil logger discards.
func NewLoader(src Fetcher, logger *log.Logger) *Loader {
	return &Loader{src: src, logger: logging.OrDiscard(logger)}
}

// Load returns the normalized statement of entity. Source errors and empty
// tables are returned as *FetchFailure; unlabelable periods as
// *period.MalformedError.
func (l *Loader) Load(ctx context.Context, entity string, kind model.StatementKind, g model.Granularity) (*model.NormalizedTable, error) {
	raw, err := l.src.Fetch(ctx, entity, kind, g)
	if err == nil && raw.Empty() {
		err = ErrEmptyTable
	}
	if err != nil {
		return nil, &FetchFailure{Entity: entity, Kind: kind, Granularity: g, Err: err}
	}

	t, err := Normalize(entity, kind, g, raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s %s for %s: %w", g, kind, entity, err)
	}
	l.logger.Debug().
		Str("entity", entity).
		Str("kind", string(kind)).
		Str("granularity", string(g)).
		Int("rows", len(t.Rows)).
		Int("periods", len(t.Periods)).
		Msg("statement loaded")
	return t, nil
}

// Normalize relabels the columns of raw with canonical period labels and tags
// every row with entity. Rows keep their source order; duplicate accounts are
// kept as they are.
func Normalize(entity string, kind model.StatementKind, g model.Granularity, raw *model.RawTable) (*model.NormalizedTable, error) {
	labels := make([]string, len(raw.Periods))
	seen := make(map[string]bool, len(raw.Periods))
	for i, id := range raw.Periods {
		label, err := period.Label(id, g)
		if err != nil {
			return nil, err
		}
		if seen[label] {
			return nil, &period.MalformedError{Period: id, Reason: fmt.Sprintf("duplicate label %q", label)}
		}
		seen[label] = true
		labels[i] = label
	}

	t := &model.NormalizedTable{
		Entity:      entity,
		Kind:        kind,
		Granularity: g,
		Periods:     labels,
		Rows:        make([]model.Row, 0, len(raw.Rows)),
	}
	for i, r := range raw.Rows {
		if len(r.Values) != len(labels) {
			return nil, fmt.Errorf("row %d (%s): expected %d values, got %d", i, r.Account, len(labels), len(r.Values))
		}
		t.Rows = append(t.Rows, model.Row{Account: r.Account, Entity: entity, Values: r.Values})
	}
	return t, nil
}
