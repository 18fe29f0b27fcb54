package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeOptions selects the listing table and the code column to extract.
type ScrapeOptions struct {
	Table  string // CSS selector for candidate tables; default "table"
	Header string // header text of the code column; default "code"
}

func (o *ScrapeOptions) applyDefaults() {
	if o.Table == "" {
		o.Table = "table"
	}
	if o.Header == "" {
		o.Header = DefaultColumn
	}
}

// Scrape downloads a listed-company page and extracts entity codes from it.
func Scrape(ctx context.Context, client *http.Client, url string, opts ScrapeOptions) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return ParseListing(resp.Body, opts)
}

// ParseListing extracts the code column from the first table matching
// opts.Table whose header row contains opts.Header. Codes are de-duplicated
// and keep page order.
func ParseListing(r io.Reader, opts ScrapeOptions) ([]string, error) {
	opts.applyDefaults()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	var codes []string
	found := false
	doc.Find(opts.Table).EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		var header []string
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, cell.Text())
		})
		idx := columnIndex(header, opts.Header)
		if idx < 0 {
			return true
		}
		found = true

		seen := make(map[string]bool)
		rows.Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cell := row.Find("th,td").Eq(idx)
			code := strings.TrimSpace(cell.Text())
			if code == "" || seen[code] {
				return
			}
			seen[code] = true
			codes = append(codes, code)
		})
		return false
	})

	if !found {
		return nil, &SchemaError{Path: "listing", Column: opts.Header, Reason: "no table with matching header"}
	}
	return codes, nil
}
