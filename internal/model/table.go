package model

import "github.com/shopspring/decimal"

// Fixed column names of the wide schema.
const (
	ColAccount = "account"
	ColEntity  = "entity"
)

// RawTable is a statement table as returned by a source: one row per account,
// one column per provider period. Row values are aligned with Periods.
type RawTable struct {
	Periods []PeriodID
	Rows    []RawRow
}

// RawRow is one account line of a RawTable. A Valid=false value is null.
type RawRow struct {
	Account string
	Values  []decimal.NullDecimal
}

// Empty reports whether the table carries no observations at all.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Periods) == 0
}

// Row is one account line of a normalized or wide table. Values are aligned
// with the owning table's Periods.
type Row struct {
	Account string
	Entity  string
	Values  []decimal.NullDecimal
}

// NormalizedTable is one entity's statement with canonical period labels.
type NormalizedTable struct {
	Entity      string
	Kind        StatementKind
	Granularity Granularity
	Periods     []string
	Rows        []Row
}

// WideTable is the cross-entity union of normalized tables for one statement
// kind and granularity.
type WideTable struct {
	Kind        StatementKind
	Granularity Granularity
	Periods     []string
	Rows        []Row
}

// Columns returns the full header: account, entity, then the period labels.
func (t *WideTable) Columns() []string {
	cols := make([]string, 0, len(t.Periods)+2)
	cols = append(cols, ColAccount, ColEntity)
	return append(cols, t.Periods...)
}

// Entities returns the distinct entities of the table in row order.
func (t *WideTable) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			out = append(out, r.Entity)
		}
	}
	return out
}

// TallRow is one observation of the long-format table.
type TallRow struct {
	Account string
	Entity  string
	Period  string
	Value   decimal.NullDecimal
	Kind    StatementKind
}

// TallTable is the long-format union of all statement kinds for one granularity.
type TallTable struct {
	Granularity Granularity
	Rows        []TallRow
}

// Output is everything one granularity produces: a wide table per statement
// kind (in StatementKinds order) and the tall table.
type Output struct {
	Granularity Granularity
	Wide        []*WideTable
	Tall        *TallTable
}

// WideFor returns the wide table for kind, or nil.
func (o *Output) WideFor(kind StatementKind) *WideTable {
	for _, w := range o.Wide {
		if w.Kind == kind {
			return w
		}
	}
	return nil
}
