// Package history collects the daily price history of the market index and
// every registry entity.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/finstat-dev/finstat/internal/logging"
	"github.com/finstat-dev/finstat/internal/model"
)

// ErrNoData is the cause of a skip when the source answered without error
// but returned no bars.
var ErrNoData = errors.New("no price data")

// Fetcher returns the daily bars of one symbol.
type Fetcher interface {
	EOD(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
}

// Target is a symbol to fetch and the code its bars are stored under.
type Target struct {
	Symbol string
	Code   string
}

// Skip records an entity left out of the history.
type Skip struct {
	Code string
	Err  error
}

// Window returns the date range covering the given number of years up to the
// day of now.
func Window(now time.Time, years int) (from, to time.Time) {
	to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return to.AddDate(-years, 0, 0), to
}

// Collector fetches price history one symbol at a time.
type Collector struct {
	src    Fetcher
	logger *log.Logger
}

// NewCollector creates a Collector reading from src. A nil logger discards.
func NewCollector(src Fetcher, logger *log.Logger) *Collector {
	return &Collector{src: src, logger: logging.OrDiscard(logger)}
}

// Collect fetches the index, then every entity, between from and to. The
// index is required: a failure or an empty index history is returned as the
// error. Entities that fail or return nothing are skipped; a code already
// collected is not fetched again.
func (c *Collector) Collect(ctx context.Context, index Target, entities []Target, from, to time.Time) (*model.PriceHistory, []Skip, error) {
	h := &model.PriceHistory{From: from, To: to}

	bars, err := c.fetch(ctx, index, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching index %s: %w", index.Symbol, err)
	}
	h.Bars = append(h.Bars, bars...)
	seen := map[string]bool{index.Code: true}

	var skipped []Skip
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		if seen[e.Code] {
			continue
		}
		seen[e.Code] = true

		bars, err := c.fetch(ctx, e, from, to)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, skipped, err
			}
			c.logger.Warn().Str("entity", e.Code).Err(err).Msg("price history skipped")
			skipped = append(skipped, Skip{Code: e.Code, Err: err})
			continue
		}
		h.Bars = append(h.Bars, bars...)
	}
	return h, skipped, nil
}

func (c *Collector) fetch(ctx context.Context, t Target, from, to time.Time) ([]model.PriceBar, error) {
	bars, err := c.src.EOD(ctx, t.Symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	for i := range bars {
		bars[i].Code = t.Code
	}
	c.logger.Debug().Str("symbol", t.Symbol).Int("bars", len(bars)).Msg("price history loaded")
	return bars, nil
}
