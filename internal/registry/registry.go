// Package registry loads the list of tracked entity codes.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultColumn is the header of the entity code column.
const DefaultColumn = "code"

// ErrUnavailable is returned when the registry file cannot be opened.
var ErrUnavailable = errors.New("registry unavailable")

// SchemaError reports a registry file without the expected code column, or
// one that cannot be parsed as a table.
type SchemaError struct {
	Path   string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("registry %s: column %q: %s", e.Path, e.Column, e.Reason)
}

// Load reads entity codes from a .csv or .xlsx registry file, in file order.
func Load(path, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path, column)
	default:
		return loadCSV(path, column)
	}
}

func loadCSV(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()

	codes, err := ReadCodes(f, column)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return codes, nil
}

// File is a registry file together with its code column and market suffix.
type File struct {
	Path   string
	Column string
	Suffix string
}

// Entities loads the codes of f and appends the suffix to each.
func (f File) Entities() ([]string, error) {
	codes, err := Load(f.Path, f.Column)
	if err != nil {
		return nil, err
	}
	return Entities(codes, f.Suffix), nil
}

// Entities appends the market suffix to each code.
func Entities(codes []string, suffix string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c + suffix
	}
	return out
}

// columnIndex finds column in a header row, ignoring case and surrounding space.
func columnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}

// collect pulls the code column out of data rows, dropping blanks.
func collect(rows [][]string, idx int) []string {
	var codes []string
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[idx])
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
