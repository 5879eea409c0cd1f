package port

import (
	"context"

	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptFetcher returns the receipt of a mined transaction.
// Implementations return ethereum.NotFound while the transaction is pending.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// ChainClient defines the interface for interacting with one EVM network.
type ChainClient interface {
	ReceiptFetcher

	// GetBalances executes native balance and ERC20 balanceOf/decimals/symbol reads in batches.
	// Per-item failures are reported in BalanceResultItem.Error; the returned error means the whole call failed.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkRegistry maps chain ids to network configuration.
type NetworkRegistry interface {
	// GetNetworkConfig returns the definition for chainID, false when the chain is unsupported.
	GetNetworkConfig(chainID uint64) (entity.NetworkDefinition, bool)

	// GetAllNetworkDefinitions returns all registered networks ordered by chain id.
	GetAllNetworkDefinitions() []entity.NetworkDefinition
}

// ChainClientProvider defines the interface for providing blockchain clients.
type ChainClientProvider interface {
	GetClient(def entity.NetworkDefinition) (ChainClient, error)
}
