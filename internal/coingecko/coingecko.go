// Package coingecko prices crypto symbols through CoinGecko's simple/price
// endpoint. The endpoint is batch-capable: one request covers every symbol
// in the call, which matters because the upstream rate limit counts
// requests, not symbols.
package coingecko

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"assettracker/internal/httpx"
	"assettracker/internal/pricing"
	"assettracker/internal/ratelimit"
	"assettracker/internal/symbols"
)

// Client fetches batch crypto quotes from CoinGecko.
type Client struct {
	apiKey  string
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// New creates a CoinGecko client. The API key is optional on the demo tier.
func New(apiKey, baseURL string, limiter *ratelimit.Limiter) *Client {
	return &Client{
		apiKey:  apiKey,
		client:  httpx.NewClient(baseURL),
		limiter: limiter,
	}
}

// Name identifies this provider in logs and provenance checks.
func (c *Client) Name() string {
	return "coingecko"
}

// FetchBatch retrieves current USD prices for the given symbols in a single
// upstream request. Symbols with no known asset id are omitted from the
// result without any network traffic; ids missing from an otherwise
// successful payload are omitted individually. Only a total request failure
// returns an error.
func (c *Client) FetchBatch(ctx context.Context, syms []string) (map[string]pricing.Record, error) {
	// Translate tickers to upstream asset ids up front. idToSym remembers
	// the reverse mapping for decoding the response.
	idToSym := make(map[string]string, len(syms))
	ids := make([]string, 0, len(syms))
	for _, raw := range syms {
		sym := symbols.Normalize(raw)
		id, ok := symbols.CryptoID(sym)
		if !ok {
			continue
		}
		if _, dup := idToSym[id]; dup {
			continue
		}
		idToSym[id] = sym
		ids = append(ids, id)
	}

	out := make(map[string]pricing.Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	if err := c.limiter.Wait(ctx, ratelimit.APICoinGecko); err != nil {
		return nil, pricing.ClassifyTransportError(err)
	}

	// json.Number keeps the upstream literal intact for decimal conversion.
	var payload map[string]map[string]json.Number

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 strings.Join(ids, ","),
			"vs_currencies":       "usd",
			"include_24hr_change": "true",
		}).
		SetResult(&payload)
	if c.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := req.Get("/simple/price")
	if err != nil {
		return nil, pricing.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return nil, pricing.ClassifyHTTPStatus(resp.StatusCode())
	}
	if payload == nil {
		return nil, pricing.NewValidationError("empty response payload")
	}

	observed := time.Now()
	for id, sym := range idToSym {
		fields, ok := payload[id]
		if !ok {
			// Partial payload: this id simply has no quote right now.
			continue
		}
		raw, ok := fields["usd"]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(raw.String())
		if err != nil || !price.IsPositive() {
			continue
		}

		rec := pricing.Record{
			Symbol:     sym,
			Price:      price,
			ObservedAt: observed,
			Source:     pricing.SourceCoinGecko,
		}
		if chg, ok := fields["usd_24h_change"]; ok {
			if pct, err := decimal.NewFromString(chg.String()); err == nil {
				rec.ChangePercent24h = &pct
			}
		}
		out[sym] = rec
	}

	return out, nil
}
