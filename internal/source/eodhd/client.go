package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/finstat-dev/finstat/internal/model"
)

// Client is an EODHD API client. Fundamentals are requested once per symbol;
// the outcome, success or failure, is reused for every statement of that symbol.
// A Client is not safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
	limiter    *rate.Limiter

	fetched map[string]fetchResult
}

type fetchResult struct {
	financials *Financials
	err        error
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout. It applies to whichever HTTP client
// the Client ends up with and never modifies a client passed to
// WithHTTPClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new EODHD API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		fetched: make(map[string]fetchResult),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c
}

// Name returns the source name.
func (c *Client) Name() string { return "eodhd" }

// Fetch returns one statement of symbol at granularity g.
func (c *Client) Fetch(ctx context.Context, symbol string, kind model.StatementKind, g model.Granularity) (*model.RawTable, error) {
	fin, err := c.Financials(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fin.Table(kind, g)
}

// Financials returns the financial statements of symbol, requesting them at
// most once per Client.
func (c *Client) Financials(ctx context.Context, symbol string) (*Financials, error) {
	if res, ok := c.fetched[symbol]; ok {
		return res.financials, res.err
	}

	var resp fundamentalsResponse
	err := c.get(ctx, "/fundamentals/"+symbol, nil, &resp)
	if err == nil && resp.Financials == nil {
		err = fmt.Errorf("no financials for %s", symbol)
	}
	c.fetched[symbol] = fetchResult{financials: resp.Financials, err: err}
	return resp.Financials, err
}

// EOD returns the daily bars of symbol between from and to inclusive, oldest
// first. Bars carry no Code; the caller tags them.
func (c *Client) EOD(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	params := url.Values{}
	params.Set("from", from.Format(dateLayout))
	params.Set("to", to.Format(dateLayout))
	params.Set("period", "d")
	params.Set("order", "a")

	var resp []eodBar
	if err := c.get(ctx, "/eod/"+symbol, params, &resp); err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(resp))
	for _, b := range resp {
		date, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q for %s: %w", b.Date, symbol, err)
		}
		bars = append(bars, model.PriceBar{
			Date:          date,
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			AdjustedClose: b.AdjustedClose,
			Volume:        b.Volume,
		})
	}
	return bars, nil
}

// get performs a GET request to the API and decodes the JSON body into result.
// params may be nil.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
