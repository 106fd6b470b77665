// Package rates provides crypto exchange rates for the deposit flow.
package rates

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Rate struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	USD       float64 `json:"usd"`
	Change24h float64 `json:"change_24h"`
}

type Provider interface {
	Rates(ctx context.Context) (map[string]Rate, error)
}

// StaticProvider serves a fixed rates table. It stands in for a market-data
// API (CoinGecko, CoinMarketCap) that a production deployment would call.
type StaticProvider struct{}

func (StaticProvider) Rates(_ context.Context) (map[string]Rate, error) {
	return map[string]Rate{
		"btc":  {Symbol: "BTC", Name: "Bitcoin", USD: 43250.0, Change24h: 2.5},
		"eth":  {Symbol: "ETH", Name: "Ethereum", USD: 2650.0, Change24h: 1.8},
		"usdt": {Symbol: "USDT", Name: "Tether", USD: 1.0, Change24h: 0.1},
		"sol":  {Symbol: "SOL", Name: "Solana", USD: 98.5, Change24h: 4.2},
	}, nil
}

const cacheKey = "rates"

type cachedProvider struct {
	next  Provider
	cache *expirable.LRU[string, map[string]Rate]
}

// WithCache wraps a provider with a TTL cache so every dashboard poll does
// not hit the upstream API.
func WithCache(next Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return next
	}
	return &cachedProvider{
		next:  next,
		cache: expirable.NewLRU[string, map[string]Rate](1, nil, ttl),
	}
}

func (p *cachedProvider) Rates(ctx context.Context) (map[string]Rate, error) {
	if cached, ok := p.cache.Get(cacheKey); ok {
		return cached, nil
	}
	fresh, err := p.next.Rates(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Add(cacheKey, fresh)
	return fresh, nil
}
