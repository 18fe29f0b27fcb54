package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/finstat-dev/finstat/internal/model"
)

// FileName is the default config file name.
const FileName = "finstat.yaml"

// Config represents the top-level finstat.yaml configuration.
type Config struct {
	Registry      RegistryConfig `yaml:"registry"`
	Source        SourceConfig   `yaml:"source"`
	Output        OutputConfig   `yaml:"output"`
	Granularities []string       `yaml:"granularities"`
	History       HistoryConfig  `yaml:"history"`
	Log           LogConfig      `yaml:"log"`

	baseDir string
}

// RegistryConfig locates the list of tracked entity codes.
type RegistryConfig struct {
	Path       string `yaml:"path"`
	CodeColumn string `yaml:"code_column"`
	Suffix     string `yaml:"suffix"` // appended to every code, e.g. ".JK"
}

// SourceConfig selects and configures the statement source.
type SourceConfig struct {
	Name   string       `yaml:"name"`
	EODHD  EODHDConfig  `yaml:"eodhd"`
	CSVDir CSVDirConfig `yaml:"csvdir"`
}

// EODHDConfig configures the EODHD fundamentals client.
type EODHDConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"` // requests per second
}

// CSVDirConfig configures the local CSV source.
type CSVDirConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig controls where and how results are persisted.
type OutputConfig struct {
	Dir      string         `yaml:"dir"`
	Formats  []string       `yaml:"formats"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
	Git      GitConfig      `yaml:"git"`
}

// PostgresConfig configures the PostgreSQL sink. The DSN itself is read from
// the environment.
type PostgresConfig struct {
	DSNEnv   string `yaml:"dsn_env"`
	MaxConns int    `yaml:"max_conns"`
}

// GitConfig controls snapshots of the output directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// HistoryConfig configures the daily price history fetched next to the
// statements. The index is stored under IndexCode; entities keep their
// registry identifier.
type HistoryConfig struct {
	IndexSymbol string `yaml:"index_symbol"`
	IndexCode   string `yaml:"index_code"`
	Years       int    `yaml:"years"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a finstat.yaml file from disk, fills defaults and validates it.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.baseDir = filepath.Dir(abs)

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	cfg := &Config{
		Registry: RegistryConfig{
			Path:       filepath.Join("registry", "companies.csv"),
			CodeColumn: "code",
			Suffix:     ".JK",
		},
		Output: OutputConfig{
			Git: GitConfig{
				AuthorName:  "finstat",
				AuthorEmail: "finstat@localhost",
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadEnv loads a .env file from the config directory into the process
// environment. A missing file is not an error; existing variables win.
func (c *Config) LoadEnv() error {
	err := godotenv.Load(c.Resolve(".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// SetBaseDir overrides the directory relative paths are resolved against.
func (c *Config) SetBaseDir(dir string) {
	c.baseDir = dir
}

// Resolve makes p absolute relative to the config directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// ParsedGranularities returns the configured granularities in run order.
func (c *Config) ParsedGranularities() ([]model.Granularity, error) {
	out := make([]model.Granularity, 0, len(c.Granularities))
	for _, s := range c.Granularities {
		g, err := model.ParseGranularity(s)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// APIKey returns the EODHD API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(c.Source.EODHD.APIKeyEnv)
}

// PostgresDSN returns the PostgreSQL connection string from the environment.
func (c *Config) PostgresDSN() string {
	return os.Getenv(c.Output.Postgres.DSNEnv)
}
