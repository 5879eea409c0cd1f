package entity

import "math/big"

// WalletToken is a fungible balance held by an account on one chain.
// It is rebuilt on every enumeration and never persisted.
type WalletToken struct {
	// Address is empty for the native currency.
	Address          string   `json:"address,omitempty"`
	Symbol           string   `json:"symbol"`
	Decimals         uint8    `json:"decimals"`
	Balance          *big.Int `json:"balance"`
	FormattedBalance string   `json:"formattedBalance"`
	IsNative         bool     `json:"isNative"`
}

// Asset returns the tagged asset reference for this balance.
func (t WalletToken) Asset() AssetRef {
	if t.IsNative {
		return NativeAsset(t.Decimals)
	}
	return TokenAsset(t.Address, t.Decimals)
}
