package service

import (
	"context"
	"errors"
	"testing"

	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTokenRead = errors.New("execution reverted")

func TestFetchExchangeRate_InvertsPrice(t *testing.T) {
	feed := &fakeFeed{prices: func(ids []string) (map[string]float64, error) {
		assert.Equal(t, []string{"ethereum"}, ids)
		return map[string]float64{"ethereum": 2000}, nil
	}}
	svc := NewExchangeRateService(newFakeRegistry(sepoliaDef()), feed, logger.NewNop())

	for _, native := range []string{"", "native", entity.ZeroAddress} {
		rate, err := svc.FetchExchangeRate(context.Background(), sepoliaID, native)
		require.NoError(t, err)
		assert.InDelta(t, 0.0005, rate, 1e-12)
	}
}

func TestFetchExchangeRate_TokenUsesItsFeedID(t *testing.T) {
	feed := &fakeFeed{prices: func(ids []string) (map[string]float64, error) {
		assert.Equal(t, []string{"usd-coin"}, ids)
		return map[string]float64{"usd-coin": 1}, nil
	}}
	svc := NewExchangeRateService(newFakeRegistry(sepoliaDef()), feed, logger.NewNop())

	rate, err := svc.FetchExchangeRate(context.Background(), sepoliaID, "0x1C7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestFetchExchangeRate_UnsupportedFailsWithoutNetwork(t *testing.T) {
	feed := &fakeFeed{prices: func([]string) (map[string]float64, error) { return nil, nil }}
	svc := NewExchangeRateService(newFakeRegistry(sepoliaDef()), feed, logger.NewNop())

	_, err := svc.FetchExchangeRate(context.Background(), 1, "")
	require.ErrorIs(t, err, entity.ErrUnsupportedAsset)

	_, err = svc.FetchExchangeRate(context.Background(), sepoliaID, "0x00000000000000000000000000000000000000bb")
	require.ErrorIs(t, err, entity.ErrUnsupportedAsset)

	_, err = svc.FetchExchangeRate(context.Background(), sepoliaID, "not-an-address")
	require.ErrorIs(t, err, entity.ErrUnsupportedAsset)

	assert.Zero(t, feed.Calls())
}

func TestFetchExchangeRate_FeedFailures(t *testing.T) {
	tests := []struct {
		name   string
		prices map[string]float64
		err    error
	}{
		{name: "transport error", err: errors.New("status 503")},
		{name: "missing id", prices: map[string]float64{"bitcoin": 60000}},
		{name: "zero price", prices: map[string]float64{"ethereum": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &fakeFeed{prices: func([]string) (map[string]float64, error) { return tt.prices, tt.err }}
			svc := NewExchangeRateService(newFakeRegistry(sepoliaDef()), feed, logger.NewNop())

			_, err := svc.FetchExchangeRate(context.Background(), sepoliaID, "native")
			require.ErrorIs(t, err, entity.ErrPriceFeed)

			var de *entity.DonationError
			require.ErrorAs(t, err, &de)
			assert.True(t, de.Retryable())
		})
	}
}
