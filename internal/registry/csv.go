package registry

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCodes reads a registry CSV with a header row and returns the values of
// column. Extra columns are ignored.
func ReadCodes(r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &SchemaError{Column: column, Reason: fmt.Sprintf("reading registry CSV: %v", err)}
	}

	if len(records) == 0 {
		return nil, &SchemaError{Column: column, Reason: "empty file"}
	}

	idx := columnIndex(records[0], column)
	if idx < 0 {
		return nil, &SchemaError{Column: column, Reason: "not found in header"}
	}
	return collect(records[1:], idx), nil
}

// WriteCodes writes a one-column registry CSV.
func WriteCodes(w io.Writer, column string, codes []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{column}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range codes {
		if err := cw.Write([]string{c}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
