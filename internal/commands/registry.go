package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/registry"
)

func newRegistryCommand() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Registry operations",
	}
	registryCmd.AddCommand(newRegistryListCommand())
	registryCmd.AddCommand(newRegistryScrapeCommand())
	return registryCmd
}

func newRegistryListCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the entities a run would fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryList(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.FileName, "path to "+config.FileName)

	return cmd
}

func runRegistryList(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	entities, err := registryFile(cfg).Entities()
	if err != nil {
		return err
	}
	for _, e := range entities {
		fmt.Println(e)
	}
	return nil
}

type scrapeOptions struct {
	configPath string
	column     string
	url        string
	table      string
	header     string
	out        string
	timeout    time.Duration
}

func newRegistryScrapeCommand() *cobra.Command {
	var opts scrapeOptions

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract entity codes from a listed-company web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "listing page URL (required)")
	_ = cmd.MarkFlagRequired("url")
	cmd.Flags().StringVar(&opts.table, "table", "table", "CSS selector of the listing table")
	cmd.Flags().StringVar(&opts.header, "header", registry.DefaultColumn, "header of the code column in the listing table")
	cmd.Flags().StringVar(&opts.out, "out", "", "registry CSV to write (default stdout)")
	cmd.Flags().StringVar(&opts.column, "column", registry.DefaultColumn, "header of the written code column, else registry.code_column of --config")
	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName+", read for the code column when present")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP timeout")

	return cmd
}

func runRegistryScrape(cmd *cobra.Command, opts scrapeOptions) error {
	column := opts.column
	if !cmd.Flags().Changed("column") {
		if _, err := os.Stat(opts.configPath); err == nil {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			column = cfg.Registry.CodeColumn
		}
	}

	client := &http.Client{Timeout: opts.timeout}
	codes, err := registry.Scrape(cmd.Context(), client, opts.url, registry.ScrapeOptions{
		Table:  opts.table,
		Header: opts.header,
	})
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}

	if err := registry.WriteCodes(w, column, codes); err != nil {
		return err
	}
	if opts.out != "" {
		fmt.Fprintf(os.Stderr, "wrote %d codes to %s\n", len(codes), opts.out)
	}
	return nil
}
