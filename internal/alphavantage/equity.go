// Package alphavantage prices equity and ETF symbols through the
// AlphaVantage GLOBAL_QUOTE endpoint, one upstream call per symbol.
package alphavantage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"assettracker/internal/httpx"
	"assettracker/internal/pricing"
	"assettracker/internal/ratelimit"
	"assettracker/internal/symbols"
)

// GlobalQuoteResponse represents the AlphaVantage API response for stock quotes
type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// Client fetches equity quotes from AlphaVantage
type Client struct {
	apiKey  string
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// New creates a new equity quote client
func New(apiKey, baseURL string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		apiKey:  apiKey,
		client:  httpx.NewClient(baseURL),
		limiter: limiter,
	}
}

// Name identifies this provider in logs and provenance checks.
func (c *Client) Name() string {
	return "alphavantage"
}

// Fetch retrieves the current quote for one symbol. A missing or zero price
// field is a validation failure, never a valid zero price - AlphaVantage
// answers 200 with an empty quote for unknown symbols and with a "Note"
// payload when throttled, and both must read as misses.
func (c *Client) Fetch(ctx context.Context, symbol string) (pricing.Record, error) {
	sym := symbols.Normalize(symbol)

	if err := c.limiter.Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
		return pricing.Record{}, pricing.ClassifyTransportError(err)
	}

	var result GlobalQuoteResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   c.apiKey,
			"function": "GLOBAL_QUOTE",
			"symbol":   sym,
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		return pricing.Record{}, pricing.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return pricing.Record{}, pricing.ClassifyHTTPStatus(resp.StatusCode())
	}

	if result.GlobalQuote.Price == "" {
		return pricing.Record{}, pricing.NewValidationError(fmt.Sprintf("price not found in response for %s", sym))
	}

	price, err := decimal.NewFromString(result.GlobalQuote.Price)
	if err != nil {
		return pricing.Record{}, pricing.NewValidationError(fmt.Sprintf("unparseable price %q for %s", result.GlobalQuote.Price, sym))
	}
	if !price.IsPositive() {
		return pricing.Record{}, pricing.NewValidationError(fmt.Sprintf("non-positive price %s for %s", price, sym))
	}

	rec := pricing.Record{
		Symbol:     sym,
		Price:      price,
		ObservedAt: time.Now(),
		Source:     pricing.SourceAlphaVantage,
	}

	// The change fields are optional in practice; keep them when they parse.
	if chg, err := decimal.NewFromString(result.GlobalQuote.Change); err == nil && result.GlobalQuote.Change != "" {
		rec.Change24h = &chg
	}
	if raw := strings.TrimSuffix(result.GlobalQuote.ChangePercent, "%"); raw != "" {
		if pct, err := decimal.NewFromString(raw); err == nil {
			rec.ChangePercent24h = &pct
		}
	}

	return rec, nil
}
