package utils

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFixed(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, "1.0000", FormatFixed(oneEth, 18, DisplayPlaces))
	assert.Equal(t, "0.0000", FormatFixed(big.NewInt(0), 6, DisplayPlaces))
	assert.Equal(t, "0.0000", FormatFixed(nil, 6, DisplayPlaces))
	assert.Equal(t, "2.5000", FormatFixed(big.NewInt(2_500_000), 6, DisplayPlaces))

	// truncation: 1.23459 must not round up to 1.2346
	v, _ := new(big.Int).SetString("1234590000000000000", 10)
	assert.Equal(t, "1.2345", FormatFixed(v, 18, DisplayPlaces))
}

func TestFormatBigInt(t *testing.T) {
	v, _ := new(big.Int).SetString("1234500000000000000", 10)
	assert.Equal(t, "1.2345", FormatBigInt(v, 18))
	assert.Equal(t, "42", FormatBigInt(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatBigInt(nil, 18))
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits(decimal.RequireFromString("0.05"), 18)
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", got.String())

	got, err = ParseUnits(decimal.RequireFromString("2.5"), 6)
	require.NoError(t, err)
	assert.Equal(t, "2500000", got.String())

	_, err = ParseUnits(decimal.RequireFromString("0.0000001"), 6)
	require.Error(t, err)
}

func TestBatchStrings(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, BatchStrings([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, BatchStrings([]string{"a", "b", "c"}, 0))
	assert.Empty(t, BatchStrings(nil, 3))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, UniqueStrings([]string{"b", "a", "b"}))
}

func TestLoadTokensFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sepolia.json")
	body := `[{"chainId":11155111,"address":"0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238","symbol":"USDC","decimals":6,"priceFeedId":"usd-coin"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tokens, err := LoadTokensFromJSON(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "usd-coin", tokens[0].PriceFeedID)
	assert.Equal(t, uint8(6), tokens[0].Decimals)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("DONATION_PORTAL_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("DONATION_PORTAL_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DONATION_PORTAL_MISSING_KEY", "fallback"))
}
