package tracker

import (
	"context"
	"errors"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const defaultPollInterval = 4 * time.Second

// Watcher polls transaction receipts until a submitted lifecycle settles.
type Watcher struct {
	interval time.Duration
	logger   port.Logger
}

func NewWatcher(interval time.Duration, logger port.Logger) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{interval: interval, logger: logger}
}

// Watch blocks until the receipt of l's transaction is found or ctx is done.
// A pending transaction (ethereum.NotFound) and transient RPC errors keep it polling.
// A receipt with a failed status fails the lifecycle.
func (w *Watcher) Watch(ctx context.Context, fetcher port.ReceiptFetcher, l *Lifecycle) {
	hash := common.HexToHash(l.Hash())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := fetcher.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			w.settle(l, receipt)
			return
		case err == nil, errors.Is(err, ethereum.NotFound):
			w.logger.Debug("Transaction pending", "tx_hash", hash.Hex(), "kind", l.Kind())
		case ctx.Err() != nil:
			return
		default:
			w.logger.Warn("Cannot get receipt", "tx_hash", hash.Hex(), "chain_id", l.ChainID(), "error", err)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Stopped watching transaction", "tx_hash", hash.Hex(), "reason", ctx.Err())
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) settle(l *Lifecycle, receipt *types.Receipt) {
	var err error
	if receipt.Status == types.ReceiptStatusSuccessful {
		err = l.Confirm()
		w.logger.Info("Transaction confirmed", "tx_hash", l.Hash(), "kind", l.Kind(), "block", receipt.BlockNumber)
	} else {
		cause := entity.NewTransactionFailedError(nil, "transaction %s reverted in block %v", l.Hash(), receipt.BlockNumber)
		err = l.Fail(cause)
		w.logger.Warn("Transaction reverted", "tx_hash", l.Hash(), "kind", l.Kind(), "block", receipt.BlockNumber)
	}
	if err != nil {
		w.logger.Error("Lifecycle transition rejected", "tx_hash", l.Hash(), "error", err)
	}
}
