package model

import "fmt"

// StatementKind identifies one of the three financial statements.
type StatementKind string

const (
	BalanceSheet    StatementKind = "balance_sheet"
	IncomeStatement StatementKind = "income_statement"
	CashFlow        StatementKind = "cash_flow"
)

// StatementKinds lists every kind in output order.
var StatementKinds = []StatementKind{BalanceSheet, IncomeStatement, CashFlow}

// ParseStatementKind converts a config or CLI string to a StatementKind.
func ParseStatementKind(s string) (StatementKind, error) {
	for _, k := range StatementKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown statement kind %q", s)
}

// Granularity is the reporting frequency of a statement.
type Granularity string

const (
	Quarterly Granularity = "quarterly"
	Annual    Granularity = "annual"
)

// Granularities lists every granularity in run order.
var Granularities = []Granularity{Quarterly, Annual}

// ParseGranularity converts a config or CLI string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	for _, g := range Granularities {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// PeriodID is a provider-native period identifier reduced to the fields the
// pipeline needs. Year is 0 when the provider value carried no usable year;
// Quarter is 0 when it carried no quarter.
type PeriodID struct {
	Year    int
	Quarter int
	Raw     string // original provider text, kept for error messages
}

func (p PeriodID) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	if p.Quarter != 0 {
		return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
	}
	return fmt.Sprintf("%d", p.Year)
}
