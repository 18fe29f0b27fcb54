package statement

import (
	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

// Aggregate stacks the rows of tables into one wide table. The period columns
// are the union of the inputs' columns in order of first appearance; a period
// an entity lacks is null for all of that entity's rows. No tables yields an
// empty table with only the account and entity columns.
func Aggregate(kind model.StatementKind, g model.Granularity, tables []*model.NormalizedTable) *model.WideTable {
	w := &model.WideTable{Kind: kind, Granularity: g}

	index := make(map[string]int)
	for _, t := range tables {
		for _, p := range t.Periods {
			if _, ok := index[p]; !ok {
				index[p] = len(w.Periods)
				w.Periods = append(w.Periods, p)
			}
		}
	}

	for _, t := range tables {
		for _, r := range t.Rows {
			values := make([]decimal.NullDecimal, len(w.Periods))
			for j, p := range t.Periods {
				values[index[p]] = r.Values[j]
			}
			w.Rows = append(w.Rows, model.Row{Account: r.Account, Entity: t.Entity, Values: values})
		}
	}
	return w
}
