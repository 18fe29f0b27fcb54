package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultCodeColumn     = "code"
	DefaultSource         = "eodhd"
	DefaultEODHDBaseURL   = "https://eodhd.com/api"
	DefaultAPIKeyEnv      = "EODHD_API_KEY"
	DefaultEODHDTimeout   = 30 * time.Second
	DefaultEODHDRateLimit = 10
	DefaultCSVDir         = "raw"
	DefaultOutputDir      = "output"
	DefaultFormat         = "csv"
	DefaultDSNEnv         = "DATABASE_URL"
	DefaultMaxConns       = 4
	DefaultIndexSymbol    = "JKSE.INDX"
	DefaultIndexCode      = "JKSE"
	DefaultHistoryYears   = 2
	DefaultLogLevel       = "info"
)

// Output formats.
const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatPostgres = "postgres"
)

func (c *Config) applyDefaults() {
	if c.Registry.CodeColumn == "" {
		c.Registry.CodeColumn = DefaultCodeColumn
	}

	if c.Source.Name == "" {
		c.Source.Name = DefaultSource
	}
	if c.Source.EODHD.BaseURL == "" {
		c.Source.EODHD.BaseURL = DefaultEODHDBaseURL
	}
	if c.Source.EODHD.APIKeyEnv == "" {
		c.Source.EODHD.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Source.EODHD.Timeout == 0 {
		c.Source.EODHD.Timeout = DefaultEODHDTimeout
	}
	if c.Source.EODHD.RateLimit == 0 {
		c.Source.EODHD.RateLimit = DefaultEODHDRateLimit
	}
	if c.Source.CSVDir.Dir == "" {
		c.Source.CSVDir.Dir = DefaultCSVDir
	}

	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{DefaultFormat}
	}
	if c.Output.Postgres.DSNEnv == "" {
		c.Output.Postgres.DSNEnv = DefaultDSNEnv
	}
	if c.Output.Postgres.MaxConns == 0 {
		c.Output.Postgres.MaxConns = DefaultMaxConns
	}

	if len(c.Granularities) == 0 {
		c.Granularities = []string{"quarterly", "annual"}
	}

	if c.History.IndexSymbol == "" {
		c.History.IndexSymbol = DefaultIndexSymbol
	}
	if c.History.IndexCode == "" {
		c.History.IndexCode = DefaultIndexCode
	}
	if c.History.Years == 0 {
		c.History.Years = DefaultHistoryYears
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
