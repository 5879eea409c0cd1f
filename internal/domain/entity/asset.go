package entity

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AssetKind mirrors the on-chain asset type of a donation.
type AssetKind uint8

const (
	AssetKindNative AssetKind = iota
	AssetKindToken
)

func (k AssetKind) String() string {
	switch k {
	case AssetKindNative:
		return "NATIVE"
	case AssetKindToken:
		return "TOKEN"
	default:
		return "UNKNOWN"
	}
}

func (k AssetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// NativeTokenKey is accepted by the API in place of a token address to select the native currency.
const NativeTokenKey = "native"

// AssetRef is either the chain's native currency or a token contract.
// Build it with NativeAsset or TokenAsset.
type AssetRef struct {
	kind     AssetKind
	address  string
	decimals uint8
}

func NativeAsset(decimals uint8) AssetRef {
	return AssetRef{kind: AssetKindNative, decimals: decimals}
}

func TokenAsset(address string, decimals uint8) AssetRef {
	return AssetRef{kind: AssetKindToken, address: address, decimals: decimals}
}

func (a AssetRef) Kind() AssetKind { return a.kind }
func (a AssetRef) IsNative() bool { return a.kind == AssetKindNative }
func (a AssetRef) Address() string { return a.address }
func (a AssetRef) Decimals() uint8 { return a.decimals }

// IsNativeAddress reports whether a user-supplied token reference means the native currency.
func IsNativeAddress(address string) bool {
	switch strings.ToLower(strings.TrimSpace(address)) {
	case "", NativeTokenKey, ZeroAddress:
		return true
	}
	return false
}

// ChainCall is a contract write, independent of how it gets signed.
type ChainCall struct {
	Method string
	Args   []any
	// Value is the native amount attached to the call, nil for none.
	Value *big.Int
}

const (
	MethodDonate      = "donate"
	MethodDonateToken = "donateToken"
	MethodClaimNFT    = "claimNFT"
)

// ResolveTransfer maps a donation of amount (smallest units) in asset to the contract call that performs it.
// Token donations do not include an approval step.
func ResolveTransfer(asset AssetRef, amount *big.Int, message string) ChainCall {
	if asset.IsNative() {
		return ChainCall{
			Method: MethodDonate,
			Args:   []any{message},
			Value:  new(big.Int).Set(amount),
		}
	}
	return ChainCall{
		Method: MethodDonateToken,
		Args:   []any{common.HexToAddress(asset.Address()), new(big.Int).Set(amount), message},
	}
}

// ResolveClaim builds the claimNFT call for a donation index.
func ResolveClaim(donationIndex uint64) ChainCall {
	return ChainCall{
		Method: MethodClaimNFT,
		Args:   []any{new(big.Int).SetUint64(donationIndex)},
	}
}
