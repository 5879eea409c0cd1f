package tracker

import (
	"context"
	"sync"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// Config controls receipt polling and how long finished lifecycles stay queryable.
type Config struct {
	PollInterval time.Duration
	Retention    time.Duration
}

// Tracker starts a receipt watcher for every submitted transaction.
// Watchers live as long as the root context passed to New, not the request that submitted them.
type Tracker struct {
	ctx      context.Context
	watcher  *Watcher
	registry *Registry
	logger   port.Logger
	wg       sync.WaitGroup
}

func New(ctx context.Context, cfg Config, logger port.Logger) *Tracker {
	return &Tracker{
		ctx:      ctx,
		watcher:  NewWatcher(cfg.PollInterval, logger),
		registry: NewRegistry(cfg.Retention),
		logger:   logger,
	}
}

// Track creates a lifecycle, moves it to Submitted with hash and starts watching it.
// onSettled callbacks are registered before the watcher starts.
func (t *Tracker) Track(kind entity.TxKind, chainID uint64, hash common.Hash, fetcher port.ReceiptFetcher, onSettled ...func(*Lifecycle)) (*Lifecycle, error) {
	l := NewLifecycle(kind, chainID)
	if err := l.Submit(hash.Hex()); err != nil {
		return nil, err
	}
	for _, cb := range onSettled {
		l.OnSettled(cb)
	}
	t.registry.Add(l)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.watcher.Watch(t.ctx, fetcher, l)
	}()

	t.logger.Info("Tracking transaction", "kind", kind, "chain_id", chainID, "tx_hash", hash.Hex())
	return l, nil
}

func (t *Tracker) Lookup(hash string) (port.TxHandle, bool) {
	return t.registry.Lookup(hash)
}

// Wait blocks until every watcher has returned. Cancel the root context first.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
