package port

import "context"

// PriceFeedClient looks up USD prices by price-feed id.
type PriceFeedClient interface {
	// GetUSDPrices returns id -> USD price. Ids missing from the response are missing from the map.
	GetUSDPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// ExchangeRateService resolves how many token units equal one USD.
type ExchangeRateService interface {
	FetchExchangeRate(ctx context.Context, chainID uint64, tokenAddress string) (float64, error)
}
