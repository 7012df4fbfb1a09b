package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// API represents the different external APIs we interact with
type API string

const (
	// APICoinGecko represents the CoinGecko API
	APICoinGecko API = "coingecko"
	// APIAlphaVantage represents the AlphaVantage API
	APIAlphaVantage API = "alphavantage"
)

// Limiter manages rate limits for different APIs. It is an explicit
// dependency of each provider client, not process-wide state, so tests can
// substitute an unlimited one.
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a Limiter with conservative production limits.
func New() *Limiter {
	return &Limiter{
		limiters: map[API]*rate.Limiter{
			// CoinGecko demo tier: ~30 requests per minute. One batch call
			// prices any number of symbols, so this is rarely the bottleneck.
			APICoinGecko: rate.NewLimiter(rate.Limit(0.5), 1),

			// AlphaVantage: 5 requests per minute on the free tier
			// = 1 request every 12 seconds.
			APIAlphaVantage: rate.NewLimiter(rate.Limit(1.0/12.0), 1),
		},
	}
}

// NewUnlimited creates a Limiter that never blocks, for tests.
func NewUnlimited() *Limiter {
	return &Limiter{
		limiters: map[API]*rate.Limiter{
			APICoinGecko:    rate.NewLimiter(rate.Inf, 1),
			APIAlphaVantage: rate.NewLimiter(rate.Inf, 1),
		},
	}
}

// Wait blocks until the rate limiter permits an event for the given API.
// It returns an error if the context is canceled before the event can proceed.
func (l *Limiter) Wait(ctx context.Context, api API) error {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		// If no limiter exists for this API, allow the request without limiting
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given API may happen now
func (l *Limiter) Allow(api API) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
