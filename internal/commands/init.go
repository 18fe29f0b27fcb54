package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/registry"
)

func newInitCommand() *cobra.Command {
	var sourceName string
	var suffix string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finstat project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, sourceName, suffix)
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", config.DefaultSource, "statement source (eodhd or csvdir)")
	cmd.Flags().StringVar(&suffix, "suffix", ".JK", "market suffix appended to every code")

	return cmd
}

func runInit(dir, sourceName, suffix string) error {
	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	cfg := config.Default()
	cfg.Source.Name = sourceName
	cfg.Registry.Suffix = suffix
	cfg.SetBaseDir(dir)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dirs := []string{
		filepath.Dir(cfg.Registry.Path),
		cfg.Output.Dir,
		cfg.Source.CSVDir.Dir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(cfg.Resolve(d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Empty registry: header only.
	f, err := os.Create(cfg.Resolve(cfg.Registry.Path))
	if err != nil {
		return fmt.Errorf("creating registry: %w", err)
	}
	if err := registry.WriteCodes(f, cfg.Registry.CodeColumn, nil); err != nil {
		f.Close()
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}

	gitignore := ".env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Initialized finstat project at %s\n", dir)
	return nil
}
