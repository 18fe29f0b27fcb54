// Package pipeline drives a run: registry, per-entity loads, aggregation,
// reshape and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/finstat-dev/finstat/internal/logging"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/runlog"
	"github.com/finstat-dev/finstat/internal/sink"
	"github.com/finstat-dev/finstat/internal/statement"
)

// State is the terminal state of a run.
type State string

const (
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// EntitySource yields the suffixed entity identifiers of the registry.
type EntitySource interface {
	Entities() ([]string, error)
}

// Skip records one (entity, kind, granularity) left out of its aggregate.
type Skip struct {
	Entity      string
	Kind        model.StatementKind
	Granularity model.Granularity
	Err         error // *statement.FetchFailure, or wraps *period.MalformedError
}

// Result is the outcome of a run. Outputs hold the computed tables even when
// persisting them failed.
type Result struct {
	RunID         string
	State         State
	Entities      []string
	Outputs       []*model.Output
	Skipped       []Skip
	Persisted     []sink.Result
	PersistErrors []error
}

// Driver runs the pipeline. Registry, Loader and Granularities are required.
// Kinds defaults to every statement kind. Sinks may be empty, in which case
// nothing is persisted. RunLogDir, when set, receives the run log.
type Driver struct {
	Registry      EntitySource
	Loader        *statement.Loader
	Sinks         sink.Multi
	Granularities []model.Granularity
	Kinds         []model.StatementKind
	RunLogDir     string
	Logger        *log.Logger

	now func() time.Time
}

// Run executes one pipeline run. A registry failure or cancellation aborts
// the run before anything is persisted and is returned as the error; fetch
// failures, malformed periods and persistence failures are reported in the
// Result instead.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	logger := logging.OrDiscard(d.Logger)
	res := &Result{RunID: uuid.NewString(), State: StateAborted}

	entities, err := d.Registry.Entities()
	if err != nil {
		return res, fmt.Errorf("loading registry: %w", err)
	}
	res.Entities = entities
	logger.Info().
		Str("run_id", res.RunID).
		Int("entities", len(entities)).
		Str("sinks", d.Sinks.Name()).
		Msg("run started")

	for _, g := range d.Granularities {
		out, skipped, err := d.build(ctx, logger, entities, g)
		res.Skipped = append(res.Skipped, skipped...)
		if err != nil {
			logger.Warn().Str("run_id", res.RunID).Err(err).Msg("run aborted")
			return res, err
		}
		res.Outputs = append(res.Outputs, out)
	}
	res.State = StateCompleted

	for _, out := range res.Outputs {
		for _, r := range d.Sinks.WriteEach(ctx, out) {
			res.Persisted = append(res.Persisted, r)
			if r.Err != nil {
				res.PersistErrors = append(res.PersistErrors, r.Err)
				logger.Error().Str("sink", r.Sink).Str("granularity", string(r.Granularity)).Err(r.Err).Msg("persist failed")
			}
		}
	}

	if d.RunLogDir != "" {
		if err := runlog.Append(d.RunLogDir, d.logEntries(res)); err != nil {
			logger.Error().Err(err).Msg("writing run log")
		}
	}

	logger.Info().
		Str("run_id", res.RunID).
		Int("skipped", len(res.Skipped)).
		Int("persist_errors", len(res.PersistErrors)).
		Msg("run completed")
	return res, nil
}

// build loads every entity for each statement kind of granularity g, then
// aggregates and reshapes.
func (d *Driver) build(ctx context.Context, logger *log.Logger, entities []string, g model.Granularity) (*model.Output, []Skip, error) {
	out := &model.Output{Granularity: g}
	var skipped []Skip

	kinds := d.Kinds
	if len(kinds) == 0 {
		kinds = model.StatementKinds
	}

	for _, kind := range kinds {
		var tables []*model.NormalizedTable
		for _, entity := range entities {
			if err := ctx.Err(); err != nil {
				return nil, skipped, err
			}
			t, err := d.Loader.Load(ctx, entity, kind, g)
			if err != nil {
				if !recoverable(err) {
					return nil, skipped, err
				}
				logger.Warn().
					Str("entity", entity).
					Str("kind", string(kind)).
					Str("granularity", string(g)).
					Err(err).
					Msg("statement skipped")
				skipped = append(skipped, Skip{Entity: entity, Kind: kind, Granularity: g, Err: err})
				continue
			}
			tables = append(tables, t)
		}
		out.Wide = append(out.Wide, statement.Aggregate(kind, g, tables))
	}

	out.Tall = statement.Reshape(g, out.Wide...)
	return out, skipped, nil
}

// recoverable reports whether err only excludes one entity from one table.
// Everything the loader returns is, except cancellation surfacing through a
// source.
func recoverable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (d *Driver) logEntries(res *Result) []runlog.Entry {
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	ts := now()

	var entries []runlog.Entry
	for _, s := range res.Skipped {
		entries = append(entries, runlog.Entry{
			Timestamp:   ts,
			RunID:       res.RunID,
			Granularity: string(s.Granularity),
			Kind:        string(s.Kind),
			Entity:      s.Entity,
			Status:      runlog.StatusSkipped,
			Details:     s.Err.Error(),
		})
	}

	for _, r := range res.Persisted {
		e := runlog.Entry{
			Timestamp:   ts,
			RunID:       res.RunID,
			Granularity: string(r.Granularity),
			Status:      runlog.StatusPersisted,
			Details:     r.Sink,
		}
		if r.Err != nil {
			e.Status = runlog.StatusPersistFailed
			e.Details = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}
