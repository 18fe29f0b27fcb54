package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

// TallHeader is the CSV header of the long-format table.
const TallHeader = "accounts,code,year,value,report"

const (
	numTallFields = 5
	colAccounts   = 0
	colCode       = 1
	colYear       = 2
	colValue      = 3
	colReport     = 4
)

// WriteWide writes w as CSV: account, entity, then one column per period.
func WriteWide(out io.Writer, w *model.WideTable) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write(w.Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range w.Rows {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTall writes t as CSV with TallHeader.
func WriteTall(out io.Writer, t *model.TallTable) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TallHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range t.Rows {
		if err := cw.Write(MarshalTallRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a wide row to a CSV record.
func MarshalRow(r model.Row) []string {
	rec := make([]string, 0, len(r.Values)+2)
	rec = append(rec, r.Account, r.Entity)
	for _, v := range r.Values {
		rec = append(rec, FormatValue(v))
	}
	return rec
}

// MarshalTallRow converts a tall row to a CSV record.
func MarshalTallRow(r model.TallRow) []string {
	rec := make([]string, numTallFields)
	rec[colAccounts] = r.Account
	rec[colCode] = r.Entity
	rec[colYear] = r.Period
	rec[colValue] = FormatValue(r.Value)
	rec[colReport] = string(r.Kind)
	return rec
}

// FormatValue renders a cell; null is the empty string.
func FormatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
