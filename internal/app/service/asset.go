package service

import (
	"errors"
	"strings"

	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ErrInvalidAccount is returned for account arguments that are not EVM addresses.
var ErrInvalidAccount = errors.New("invalid account address")

// resolveAsset finds the registry metadata of a native or token asset on def.
func resolveAsset(def entity.NetworkDefinition, tokenAddress string) (entity.AssetMeta, bool) {
	if entity.IsNativeAddress(tokenAddress) {
		meta := def.NativeCurrency
		return meta, meta.PriceFeedID != ""
	}
	if !common.IsHexAddress(tokenAddress) {
		return entity.AssetMeta{}, false
	}
	meta, ok := def.Token(tokenAddress)
	return meta, ok && meta.PriceFeedID != ""
}

// ParseAmount parses a positive whole-unit amount. Anything else is an InvalidAmountError.
func ParseAmount(amountHuman string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(amountHuman))
	if err != nil {
		return decimal.Zero, entity.NewInvalidAmountError("%q is not a number", amountHuman)
	}
	if !amount.IsPositive() {
		return decimal.Zero, entity.NewInvalidAmountError("amount must be greater than zero")
	}
	return amount, nil
}

// USDValue converts a token amount into USD given rate in tokens-per-USD: usd = amount / rate.
func USDValue(amount decimal.Decimal, rate float64) decimal.Decimal {
	if rate <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromFloat(rate))
}

func validAccount(account string) bool {
	return common.IsHexAddress(account) && strings.HasPrefix(strings.ToLower(account), "0x")
}

func equalAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func hasDonationContract(def entity.NetworkDefinition) bool {
	return common.IsHexAddress(def.DonationContract) && common.HexToAddress(def.DonationContract) != (common.Address{})
}
