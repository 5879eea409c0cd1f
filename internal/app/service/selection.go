package service

import "donation_portal/internal/domain/entity"

// Selection is what the donor has picked in the donation form.
type Selection struct {
	ChainID      uint64
	TokenAddress string
	AmountHuman  string
}

func (s Selection) complete() bool {
	return s.ChainID != 0
}

func (s Selection) sameAsset(o Selection) bool {
	if s.ChainID != o.ChainID {
		return false
	}
	if entity.IsNativeAddress(s.TokenAddress) || entity.IsNativeAddress(o.TokenAddress) {
		return entity.IsNativeAddress(s.TokenAddress) && entity.IsNativeAddress(o.TokenAddress)
	}
	return equalAddress(s.TokenAddress, o.TokenAddress)
}

// Effect is the work a selection change calls for.
type Effect int

const (
	EffectNone Effect = iota
	// EffectClearRate drops the cached rate, nothing is selected.
	EffectClearRate
	// EffectFetchRate refetches the exchange rate for the new chain or token.
	EffectFetchRate
	// EffectRecomputeUSD reuses the cached rate for a new amount.
	EffectRecomputeUSD
)

func (e Effect) String() string {
	switch e {
	case EffectClearRate:
		return "clear_rate"
	case EffectFetchRate:
		return "fetch_rate"
	case EffectRecomputeUSD:
		return "recompute_usd"
	default:
		return "none"
	}
}

// OnSelectionChange decides what to do when the form moves from prev to next.
// Only chain or token changes cost a price lookup; amount edits reuse the rate.
func OnSelectionChange(prev, next Selection) Effect {
	switch {
	case !next.complete():
		if prev.complete() {
			return EffectClearRate
		}
		return EffectNone
	case !prev.complete() || !prev.sameAsset(next):
		return EffectFetchRate
	case prev.AmountHuman != next.AmountHuman:
		return EffectRecomputeUSD
	default:
		return EffectNone
	}
}
