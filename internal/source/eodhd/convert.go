package eodhd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/period"
)

// metaFields are per-period keys that are not accounts.
var metaFields = map[string]bool{
	"date":            true,
	"filing_date":     true,
	"currency_symbol": true,
}

// Statement returns the statement of the given kind, or nil.
func (f *Financials) Statement(kind model.StatementKind) (*Statement, error) {
	switch kind {
	case model.BalanceSheet:
		return f.BalanceSheet, nil
	case model.IncomeStatement:
		return f.IncomeStatement, nil
	case model.CashFlow:
		return f.CashFlow, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}

// Table converts one statement at granularity g into a RawTable. A missing
// statement yields an empty table.
func (f *Financials) Table(kind model.StatementKind, g model.Granularity) (*model.RawTable, error) {
	st, err := f.Statement(kind)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return &model.RawTable{}, nil
	}

	var periods map[string]map[string]any
	switch g {
	case model.Quarterly:
		periods = st.Quarterly
	case model.Annual:
		periods = st.Yearly
	default:
		return nil, fmt.Errorf("unknown granularity %q", g)
	}
	return toRawTable(periods), nil
}

// toRawTable lays out periods newest first and accounts in name order.
func toRawTable(periods map[string]map[string]any) *model.RawTable {
	dates := make([]string, 0, len(periods))
	accountSet := make(map[string]bool)
	for date, fields := range periods {
		dates = append(dates, date)
		for name := range fields {
			if !metaFields[name] {
				accountSet[name] = true
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	accounts := make([]string, 0, len(accountSet))
	for name := range accountSet {
		accounts = append(accounts, name)
	}
	sort.Strings(accounts)

	t := &model.RawTable{Periods: make([]model.PeriodID, len(dates))}
	for i, d := range dates {
		t.Periods[i] = period.ParseIdentifier(d)
	}

	for _, acct := range accounts {
		row := model.RawRow{Account: acct, Values: make([]decimal.NullDecimal, len(dates))}
		for i, d := range dates {
			row.Values[i] = toValue(periods[d][acct])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// toValue converts a decoded JSON field to a nullable decimal. EODHD sends
// numbers as strings; anything non-numeric is treated as null.
func toValue(v any) decimal.NullDecimal {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	default:
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
