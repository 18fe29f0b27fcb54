// Package sink persists the wide and tall tables of a run.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/finstat-dev/finstat/internal/model"
)

// Sink writes the output of one granularity to durable storage. A write
// replaces whatever the sink held for that granularity.
type Sink interface {
	Name() string
	Write(ctx context.Context, out *model.Output) error
}

// HistoryWriter is implemented by sinks that also store price history. A
// write replaces the history the sink held.
type HistoryWriter interface {
	WriteHistory(ctx context.Context, h *model.PriceHistory) error
}

// PersistenceError reports a failed write. The in-memory output it was
// given stays valid.
type PersistenceError struct {
	Sink        string
	Granularity model.Granularity
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s output to %s: %v", e.Granularity, e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Result is the outcome of one sink write.
type Result struct {
	Sink        string
	Granularity model.Granularity
	Err         error // nil or *PersistenceError
}

// Multi writes to several sinks in order.
type Multi []Sink

// Name returns the member names joined by "+".
func (m Multi) Name() string {
	name := ""
	for i, s := range m {
		if i > 0 {
			name += "+"
		}
		name += s.Name()
	}
	return name
}

// WriteEach writes out to every sink, continuing past failures, and returns
// one Result per sink.
func (m Multi) WriteEach(ctx context.Context, out *model.Output) []Result {
	results := make([]Result, 0, len(m))
	for _, s := range m {
		res := Result{Sink: s.Name(), Granularity: out.Granularity}
		if err := s.Write(ctx, out); err != nil {
			res.Err = &PersistenceError{Sink: s.Name(), Granularity: out.Granularity, Err: err}
		}
		results = append(results, res)
	}
	return results
}

// WriteHistory writes h to every member that stores price history and
// returns the sinks written to. Failures are joined; the remaining members
// are still written.
func (m Multi) WriteHistory(ctx context.Context, h *model.PriceHistory) ([]string, error) {
	var written []string
	var errs []error
	for _, s := range m {
		hw, ok := s.(HistoryWriter)
		if !ok {
			continue
		}
		if err := hw.WriteHistory(ctx, h); err != nil {
			errs = append(errs, fmt.Errorf("persisting price history to %s: %w", s.Name(), err))
			continue
		}
		written = append(written, s.Name())
	}
	return written, errors.Join(errs...)
}

// Close closes every member that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
