package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/history"
	"github.com/finstat-dev/finstat/internal/runlog"
	"github.com/finstat-dev/finstat/internal/sink"
	"github.com/finstat-dev/finstat/internal/source"
)

// Run log fields of price history entries.
const (
	historyKind        = "price_history"
	historyGranularity = "daily"
)

type historyOptions struct {
	configPath string
	years      int
}

func newHistoryCommand() *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Fetch daily price history for the index and every registry entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runHistory(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName)
	cmd.Flags().IntVar(&opts.years, "years", 0, "override history.years")

	return cmd
}

func runHistory(ctx context.Context, opts historyOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.years != 0 {
		cfg.History.Years = opts.years
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)

	src, err := source.DefaultRegistry().New(cfg.Source.Name, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating source: %w", err)
	}
	fetcher, ok := src.(history.Fetcher)
	if !ok {
		return fmt.Errorf("source %s does not provide price history", src.Name())
	}

	entities, err := registryFile(cfg).Entities()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	targets := make([]history.Target, 0, len(entities))
	for _, e := range entities {
		targets = append(targets, history.Target{Symbol: e, Code: e})
	}
	index := history.Target{Symbol: cfg.History.IndexSymbol, Code: cfg.History.IndexCode}

	runID := uuid.NewString()
	from, to := history.Window(time.Now(), cfg.History.Years)
	h, skipped, err := history.NewCollector(fetcher, logger).Collect(ctx, index, targets, from, to)
	if err != nil {
		return fmt.Errorf("history %s aborted: %w", runID, err)
	}

	sinks, err := sink.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating sinks: %w", err)
	}
	defer sinks.Close()

	written, writeErr := sinks.WriteHistory(ctx, h)
	if writeErr != nil {
		logger.Error().Str("sinks", sinks.Name()).Err(writeErr).Msg("persist failed")
	}

	outputDir := cfg.Resolve(cfg.Output.Dir)
	if err := runlog.Append(outputDir, historyEntries(runID, time.Now(), skipped, written, writeErr)); err != nil {
		logger.Error().Err(err).Msg("writing run log")
	}

	fmt.Printf("history %s: %d codes, %d bars from %s to %s\n",
		runID, len(h.Codes()), len(h.Bars), from.Format(history.DateLayout), to.Format(history.DateLayout))
	for _, s := range skipped {
		fmt.Printf("  skipped %s: %v\n", s.Code, s.Err)
	}

	if err := snapshotOutput(cfg, fmt.Sprintf("history %s: %d codes", runID, len(h.Codes()))); err != nil {
		return err
	}
	return writeErr
}

func historyEntries(runID string, ts time.Time, skipped []history.Skip, written []string, writeErr error) []runlog.Entry {
	entry := func(entity string, status runlog.Status, details string) runlog.Entry {
		return runlog.Entry{
			Timestamp:   ts,
			RunID:       runID,
			Granularity: historyGranularity,
			Kind:        historyKind,
			Entity:      entity,
			Status:      status,
			Details:     details,
		}
	}

	var entries []runlog.Entry
	for _, s := range skipped {
		entries = append(entries, entry(s.Code, runlog.StatusSkipped, s.Err.Error()))
	}
	for _, name := range written {
		entries = append(entries, entry("", runlog.StatusPersisted, name))
	}
	if writeErr != nil {
		errs := []error{writeErr}
		if joined, ok := writeErr.(interface{ Unwrap() []error }); ok {
			errs = joined.Unwrap()
		}
		for _, err := range errs {
			entries = append(entries, entry("", runlog.StatusPersistFailed, err.Error()))
		}
	}
	return entries
}
