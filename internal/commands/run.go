package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/pipeline"
	"github.com/finstat-dev/finstat/internal/sink"
	"github.com/finstat-dev/finstat/internal/source"
	"github.com/finstat-dev/finstat/internal/statement"
)

type runOptions struct {
	configPath  string
	granularity string
	kinds       []string
	source      string
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, normalize and reshape statements for every registry entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runRun(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName)
	cmd.Flags().StringVar(&opts.granularity, "granularity", "", "run only quarterly or annual")
	cmd.Flags().StringSliceVar(&opts.kinds, "kind", nil, "run only these statement kinds (balance_sheet, income_statement, cash_flow)")
	cmd.Flags().StringVar(&opts.source, "source", "", "override source.name")

	return cmd
}

func runRun(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.source != "" {
		cfg.Source.Name = opts.source
	}
	if opts.granularity != "" {
		cfg.Granularities = []string{opts.granularity}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	granularities, err := cfg.ParsedGranularities()
	if err != nil {
		return err
	}
	var kinds []model.StatementKind
	for _, k := range opts.kinds {
		kind, err := model.ParseStatementKind(k)
		if err != nil {
			return err
		}
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}

	logger := newLogger(cfg)

	src, err := source.DefaultRegistry().New(cfg.Source.Name, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating source: %w", err)
	}

	sinks, err := sink.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating sinks: %w", err)
	}
	defer sinks.Close()

	outputDir := cfg.Resolve(cfg.Output.Dir)
	driver := &pipeline.Driver{
		Registry:      registryFile(cfg),
		Loader:        statement.NewLoader(src, logger),
		Sinks:         sinks,
		Granularities: granularities,
		Kinds:         kinds,
		RunLogDir:     outputDir,
		Logger:        logger,
	}

	res, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s aborted: %w", res.RunID, err)
	}
	if err := pipeline.WriteSummary(os.Stdout, res); err != nil {
		return err
	}

	if err := snapshotOutput(cfg, fmt.Sprintf("run %s: %d entities", res.RunID, len(res.Entities))); err != nil {
		return err
	}

	if n := len(res.PersistErrors); n > 0 {
		return fmt.Errorf("%d sink write(s) failed", n)
	}
	return nil
}
