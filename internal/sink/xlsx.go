package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/finstat-dev/finstat/internal/history"
	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/period"
	"github.com/finstat-dev/finstat/internal/statement"
)

// Worksheets holding the long-format table and the price history.
const (
	TallSheet    = "statements"
	HistorySheet = "history"
)

// XLSX writes one workbook per granularity: a sheet per statement kind and
// the tall table.
type XLSX struct {
	dir string
}

// NewXLSX creates an XLSX sink writing into dir.
func NewXLSX(dir string) *XLSX {
	return &XLSX{dir: dir}
}

func (s *XLSX) Name() string { return "xlsx" }

// Path returns the workbook of granularity g.
func (s *XLSX) Path(g model.Granularity) string {
	return filepath.Join(s.dir, fmt.Sprintf("statements_%s.xlsx", g))
}

// Write builds the workbook for out and saves it, replacing any earlier one.
func (s *XLSX) Write(ctx context.Context, out *model.Output) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	for i, w := range out.Wide {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheet := string(w.Kind)
		if i == 0 {
			if err := f.SetSheetName(first, sheet); err != nil {
				return fmt.Errorf("naming sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("adding sheet %s: %w", sheet, err)
		}
		if err := writeRows(f, sheet, wideRecords(w)); err != nil {
			return err
		}
	}

	if out.Tall != nil {
		if len(out.Wide) == 0 {
			if err := f.SetSheetName(first, TallSheet); err != nil {
				return fmt.Errorf("naming sheet %s: %w", TallSheet, err)
			}
		} else if _, err := f.NewSheet(TallSheet); err != nil {
			return fmt.Errorf("adding sheet %s: %w", TallSheet, err)
		}
		if err := writeRows(f, TallSheet, tallRecords(out.Tall)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.Path(out.Granularity)); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// HistoryPath returns the price history workbook.
func (s *XLSX) HistoryPath() string {
	return filepath.Join(s.dir, "history.xlsx")
}

// WriteHistory saves h as a single-sheet workbook, replacing any earlier one.
func (s *XLSX) WriteHistory(ctx context.Context, h *model.PriceHistory) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HistorySheet); err != nil {
		return fmt.Errorf("naming sheet %s: %w", HistorySheet, err)
	}
	if err := writeRows(f, HistorySheet, historyRecords(h)); err != nil {
		return err
	}
	if err := f.SaveAs(s.HistoryPath()); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, records [][]any) error {
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func wideRecords(w *model.WideTable) [][]any {
	records := make([][]any, 0, len(w.Rows)+1)
	header := make([]any, 0, len(w.Periods)+2)
	for _, c := range w.Columns() {
		header = append(header, c)
	}
	records = append(records, header)

	for _, r := range w.Rows {
		rec := make([]any, 0, len(r.Values)+2)
		rec = append(rec, r.Account, r.Entity)
		for _, v := range r.Values {
			rec = append(rec, cellValue(v))
		}
		records = append(records, rec)
	}
	return records
}

func tallRecords(t *model.TallTable) [][]any {
	records := make([][]any, 0, len(t.Rows)+1)
	var header []any
	for _, c := range strings.Split(statement.TallHeader, ",") {
		header = append(header, c)
	}
	records = append(records, header)
	for _, r := range t.Rows {
		records = append(records, []any{r.Account, r.Entity, yearCell(r.Period), cellValue(r.Value), string(r.Kind)})
	}
	return records
}

func historyRecords(h *model.PriceHistory) [][]any {
	records := make([][]any, 0, len(h.Bars)+1)
	var header []any
	for _, c := range strings.Split(history.Header, ",") {
		header = append(header, c)
	}
	records = append(records, header)
	for _, b := range h.Bars {
		records = append(records, []any{
			b.Date.Format(history.DateLayout),
			b.Open.InexactFloat64(),
			b.High.InexactFloat64(),
			b.Low.InexactFloat64(),
			b.Close.InexactFloat64(),
			b.AdjustedClose.InexactFloat64(),
			b.Volume,
			b.Code,
		})
	}
	return records
}

// yearCell coerces pure-year labels to numbers; quarter labels stay text.
func yearCell(label string) any {
	if y, ok := period.Year(label); ok {
		return y
	}
	return label
}

func cellValue(v decimal.NullDecimal) any {
	if !v.Valid {
		return nil
	}
	return v.Decimal.InexactFloat64()
}
