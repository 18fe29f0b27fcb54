package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// Header is the CSV header of the price history table.
const Header = "date,open,high,low,close,adjusted_close,volume,code"

// DateLayout formats the date column.
const DateLayout = "2006-01-02"

const (
	numFields        = 8
	colDate          = 0
	colOpen          = 1
	colHigh          = 2
	colLow           = 3
	colClose         = 4
	colAdjustedClose = 5
	colVolume        = 6
	colCode          = 7
)

// WriteCSV writes h as CSV with Header.
func WriteCSV(out io.Writer, h *model.PriceHistory) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range h.Bars {
		if err := cw.Write(MarshalBar(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalBar converts a bar to a CSV record.
func MarshalBar(b model.PriceBar) []string {
	rec := make([]string, numFields)
	rec[colDate] = b.Date.Format(DateLayout)
	rec[colOpen] = b.Open.String()
	rec[colHigh] = b.High.String()
	rec[colLow] = b.Low.String()
	rec[colClose] = b.Close.String()
	rec[colAdjustedClose] = b.AdjustedClose.String()
	rec[colVolume] = strconv.FormatInt(b.Volume, 10)
	rec[colCode] = b.Code
	return rec
}
