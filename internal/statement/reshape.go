package statement

import "github.com/finstat-dev/finstat/internal/model"

// Reshape melts the wide tables of one granularity into the long format.
// Blocks follow the fixed kind order balance sheet, income statement, cash
// flow regardless of argument order; within a block rows go period by period
// in column order, then in wide row order. Kinds without a table contribute
// nothing.
func Reshape(g model.Granularity, wides ...*model.WideTable) *model.TallTable {
	tall := &model.TallTable{Granularity: g}
	for _, kind := range model.StatementKinds {
		for _, w := range wides {
			if w != nil && w.Kind == kind {
				tall.Rows = append(tall.Rows, Melt(w)...)
			}
		}
	}
	return tall
}

// Melt returns one row per (period, wide row) of w. Null cells stay null.
func Melt(w *model.WideTable) []model.TallRow {
	rows := make([]model.TallRow, 0, len(w.Periods)*len(w.Rows))
	for j, p := range w.Periods {
		for _, r := range w.Rows {
			rows = append(rows, model.TallRow{
				Account: r.Account,
				Entity:  r.Entity,
				Period:  p,
				Value:   r.Values[j],
				Kind:    w.Kind,
			})
		}
	}
	return rows
}
