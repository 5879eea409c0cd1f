package entity

import (
	"math/big"
	"time"
)

// DonationRequest is the user input for one donation attempt.
type DonationRequest struct {
	ChainID uint64
	Donor   string
	// AmountHuman is a decimal string in whole token units, e.g. "0.05".
	AmountHuman string
	Token       WalletToken
	Message     string
}

// DonationRecord is a donation as stored by the donation contract. Read-only.
type DonationRecord struct {
	Index        uint64    `json:"index"`
	Donor        string    `json:"donor"`
	Amount       *big.Int  `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message"`
	TokenAddress string    `json:"tokenAddress"`
	AssetKind    AssetKind `json:"assetKind"`
}

// IsNative reports whether the record was a native-currency donation.
func (r DonationRecord) IsNative() bool {
	return r.AssetKind == AssetKindNative || IsNativeAddress(r.TokenAddress)
}

// DonationConfirmed is emitted once a donation transaction is mined successfully.
type DonationConfirmed struct {
	ChainID       uint64
	Donor         string
	TxHash        string
	Amount        string
	Symbol        string
	TokenAddress  string
	USDEquivalent string
	Message       string
}

// Handoff converts the event into the record shown by the confirmation view.
func (e DonationConfirmed) Handoff() SessionHandoff {
	return SessionHandoff{
		USDAmount:       e.USDEquivalent,
		TokenAmount:     e.Amount,
		TokenSymbol:     e.Symbol,
		TokenAddress:    e.TokenAddress,
		TransactionHash: e.TxHash,
		Message:         e.Message,
	}
}
