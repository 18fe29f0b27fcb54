package commands

import (
	"fmt"
	"os"

	"github.com/phuslu/log"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/gitops"
	"github.com/finstat-dev/finstat/internal/logging"
	"github.com/finstat-dev/finstat/internal/registry"
	"github.com/finstat-dev/finstat/internal/runlog"
)

// loadConfig reads the config file and the .env next to it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.New(cfg.Log.Level, os.Stderr)
}

func registryFile(cfg *config.Config) registry.File {
	return registry.File{
		Path:   cfg.Resolve(cfg.Registry.Path),
		Column: cfg.Registry.CodeColumn,
		Suffix: cfg.Registry.Suffix,
	}
}

// snapshotOutput commits the output directory when auto_commit is on. The
// run log stays out of the snapshot so an unchanged re-run commits nothing.
func snapshotOutput(cfg *config.Config, message string) error {
	if !cfg.Output.Git.AutoCommit {
		return nil
	}
	git := cfg.Output.Git
	hash, committed, err := gitops.Snapshot(cfg.Resolve(cfg.Output.Dir), message, git.AuthorName, git.AuthorEmail, runlog.IgnorePattern)
	if err != nil {
		return fmt.Errorf("snapshotting output: %w", err)
	}
	if committed {
		fmt.Printf("committed output snapshot %s\n", hash)
	} else {
		fmt.Println("output unchanged, nothing to commit")
	}
	return nil
}
