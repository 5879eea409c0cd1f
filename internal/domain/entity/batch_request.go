package entity

import "math/big"

// BalanceRequestType defines the type of a read in a batch request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests balanceOf(wallet) on a token contract.
	TokenBalanceRequest
	// TokenDecimalsRequest requests decimals() on a token contract.
	TokenDecimalsRequest
	// TokenSymbolRequest requests symbol() on a token contract.
	TokenSymbolRequest
)

// ZeroAddress represents the Ethereum zero address. The donation contract records native donations with it.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem represents a single item in a batch request.
type BalanceRequestItem struct {
	ID            string
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
}

// BalanceResultItem represents the result of a single request from a batch.
// Only the field matching Type is populated.
type BalanceResultItem struct {
	RequestID    string
	Type         BalanceRequestType
	TokenAddress string
	Balance      *big.Int
	Decimals     uint8
	Symbol       string
	Error        error
}
