// Package source defines the boundary to statement providers and keeps a
// registry of the available implementations.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"github.com/finstat-dev/finstat/internal/config"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/source/csvdir"
	"github.com/finstat-dev/finstat/internal/source/eodhd"
)

// Source returns raw statement tables for one entity at a time. A Source may
// fail or return an empty table; callers treat both as a fetch failure.
type Source interface {
	Name() string
	Fetch(ctx context.Context, entity string, kind model.StatementKind, g model.Granularity) (*model.RawTable, error)
}

// Factory builds a Source from configuration.
type Factory func(cfg *config.Config, logger *log.Logger) (Source, error)

// Registry holds named source factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate name.
func (r *Registry) Register(name string, f Factory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate source: " + key)
	}
	r.factories[key] = f
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the named source.
func (r *Registry) New(name string, cfg *config.Config, logger *log.Logger) (Source, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (have %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(cfg, logger)
}

// DefaultRegistry returns a registry with all built-in sources.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("eodhd", newEODHD)
	r.Register("csvdir", newCSVDir)
	return r
}

func newEODHD(cfg *config.Config, logger *log.Logger) (Source, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, errors.New("eodhd: API key not set in $" + cfg.Source.EODHD.APIKeyEnv)
	}
	ec := cfg.Source.EODHD
	return eodhd.NewClient(key,
		eodhd.WithBaseURL(ec.BaseURL),
		eodhd.WithTimeout(ec.Timeout),
		eodhd.WithRateLimit(ec.RateLimit),
		eodhd.WithLogger(logger),
	), nil
}

func newCSVDir(cfg *config.Config, _ *log.Logger) (Source, error) {
	return csvdir.New(cfg.Resolve(cfg.Source.CSVDir.Dir)), nil
}
