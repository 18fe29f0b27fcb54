package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one trading day of an entity or index.
type PriceBar struct {
	Code          string
	Date          time.Time
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	Close         decimal.Decimal
	AdjustedClose decimal.Decimal
	Volume        int64
}

// PriceHistory is the daily history of the index and every entity that
// returned data, in fetch order. Each code's bars are in ascending date order.
type PriceHistory struct {
	From time.Time
	To   time.Time
	Bars []PriceBar
}

// Codes returns the distinct codes of h in first-seen order.
func (h *PriceHistory) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, b := range h.Bars {
		if !seen[b.Code] {
			seen[b.Code] = true
			codes = append(codes, b.Code)
		}
	}
	return codes
}
