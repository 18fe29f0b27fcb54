package registry

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// loadXLSX reads the code column from the first sheet of a workbook.
func loadXLSX(path, column string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SchemaError{Path: path, Column: column, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &SchemaError{Path: path, Column: column, Reason: fmt.Sprintf("reading sheet %s: %v", sheets[0], err)}
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Path: path, Column: column, Reason: "empty sheet"}
	}

	idx := columnIndex(rows[0], column)
	if idx < 0 {
		return nil, &SchemaError{Path: path, Column: column, Reason: "not found in header"}
	}
	return collect(rows[1:], idx), nil
}
