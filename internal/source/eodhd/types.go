// Package eodhd fetches financial statements and daily prices from the EODHD API.
package eodhd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	dateLayout = "2006-01-02"
)

// APIError represents a non-200 response from the EODHD API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// fundamentalsResponse is the subset of /fundamentals the pipeline reads.
type fundamentalsResponse struct {
	Financials *Financials `json:"Financials"`
}

// Financials contains the three financial statements.
type Financials struct {
	BalanceSheet    *Statement `json:"Balance_Sheet"`
	CashFlow        *Statement `json:"Cash_Flow"`
	IncomeStatement *Statement `json:"Income_Statement"`
}

// Statement holds one statement's quarterly and yearly data, keyed by
// period-end date and then by field name.
type Statement struct {
	Currency  string                    `json:"currency_symbol"`
	Quarterly map[string]map[string]any `json:"quarterly"`
	Yearly    map[string]map[string]any `json:"yearly"`
}

// eodBar is one element of the /eod response.
type eodBar struct {
	Date          string          `json:"date"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
	Volume        int64           `json:"volume"`
}
