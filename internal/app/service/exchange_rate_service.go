package service

import (
	"context"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"
)

// ExchangeRateServiceImpl implements port.ExchangeRateService on top of a price feed.
// Every call is a fresh lookup; throttling lives in the feed client.
type ExchangeRateServiceImpl struct {
	registry port.NetworkRegistry
	feed     port.PriceFeedClient
	logger   port.Logger
}

func NewExchangeRateService(registry port.NetworkRegistry, feed port.PriceFeedClient, logger port.Logger) *ExchangeRateServiceImpl {
	return &ExchangeRateServiceImpl{registry: registry, feed: feed, logger: logger}
}

// FetchExchangeRate returns how many units of the token equal one USD (1 / priceUSD).
// Unsupported chains or tokens fail before any network call.
func (s *ExchangeRateServiceImpl) FetchExchangeRate(ctx context.Context, chainID uint64, tokenAddress string) (float64, error) {
	def, ok := s.registry.GetNetworkConfig(chainID)
	if !ok {
		return 0, entity.NewUnsupportedAssetError("chain %d is not supported", chainID)
	}
	meta, ok := resolveAsset(def, tokenAddress)
	if !ok {
		return 0, entity.NewUnsupportedAssetError("token %s is not supported on chain %d", tokenAddress, chainID)
	}

	prices, err := s.feed.GetUSDPrices(ctx, []string{meta.PriceFeedID})
	if err != nil {
		s.logger.Warn("Price feed lookup failed", "chain_id", chainID, "feed_id", meta.PriceFeedID, "error", err)
		return 0, entity.NewPriceFeedError(err, "price lookup for %s failed", meta.PriceFeedID)
	}
	price, ok := prices[meta.PriceFeedID]
	if !ok {
		return 0, entity.NewPriceFeedError(nil, "price feed response has no usd price for %s", meta.PriceFeedID)
	}
	if price <= 0 {
		return 0, entity.NewPriceFeedError(nil, "price feed returned non-positive price %v for %s", price, meta.PriceFeedID)
	}

	s.logger.Debug("Exchange rate fetched", "chain_id", chainID, "symbol", meta.Symbol, "usd_price", price)
	return 1 / price, nil
}
