package port

import (
	"context"

	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// TxHandle tracks one submitted transaction until it is mined.
type TxHandle interface {
	Kind() entity.TxKind
	ChainID() uint64
	Hash() string
	State() entity.TxState
	// Err is the failure cause once the state is Failed.
	Err() error
	// Done is closed when the lifecycle reaches a terminal state.
	Done() <-chan struct{}
	// Await blocks until a terminal state or ctx is done.
	Await(ctx context.Context) (entity.TxSnapshot, error)
	Snapshot() entity.TxSnapshot
}

// TxLookup finds lifecycles by transaction hash.
type TxLookup interface {
	Lookup(hash string) (TxHandle, bool)
}

// TransactionSender signs and broadcasts a call to the chain's donation contract.
type TransactionSender interface {
	Send(ctx context.Context, chainID uint64, from string, call entity.ChainCall) (common.Hash, error)
}
