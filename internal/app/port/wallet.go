package port

import (
	"context"

	"donation_portal/internal/domain/entity"
)

// WalletProvider defines the interface for fetching wallet addresses.
type WalletProvider interface {
	GetWallets() ([]string, error)
}

// WalletTokenEnumerator lists the fungible balances an account holds on a chain.
type WalletTokenEnumerator interface {
	EnumerateWalletTokens(ctx context.Context, account string, chainID uint64) ([]entity.WalletToken, error)
}
