// Package csvdir reads raw statement tables from a directory of CSV files laid
// out as <dir>/<granularity>/<kind>/<ENTITY>.csv.
package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
	"github.com/finstat-dev/finstat/internal/period"
)

// Source serves raw tables from local CSV files.
type Source struct {
	dir string
}

// New creates a Source rooted at dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Name returns the source name.
func (s *Source) Name() string { return "csvdir" }

// Path returns the file holding one entity's statement.
func (s *Source) Path(entity string, kind model.StatementKind, g model.Granularity) string {
	return filepath.Join(s.dir, string(g), string(kind), entity+".csv")
}

// Fetch reads one entity's statement.
func (s *Source) Fetch(ctx context.Context, entity string, kind model.StatementKind, g model.Granularity) (*model.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(entity, kind, g)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadRaw(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// ReadRaw reads a raw statement CSV: a header of "account" followed by
// period identifiers, then one row per account. Empty, "NaN" and "null"
// cells are null.
func ReadRaw(r io.Reader) (*model.RawTable, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) == 0 {
		return &model.RawTable{}, nil
	}

	header := records[0]
	t := &model.RawTable{Periods: make([]model.PeriodID, len(header)-1)}
	for i, h := range header[1:] {
		t.Periods[i] = period.ParseIdentifier(h)
	}

	for i, rec := range records[1:] {
		row := model.RawRow{Account: rec[0], Values: make([]decimal.NullDecimal, len(t.Periods))}
		for j, cell := range rec[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %s: %w", i+2, header[j+1], err)
			}
			row.Values[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func parseCell(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null":
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing value %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}
