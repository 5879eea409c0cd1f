package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/metrics"
)

// ErrIllegalTransition is returned when a transition is not allowed from the current state.
var ErrIllegalTransition = errors.New("illegal lifecycle transition")

// Lifecycle is the state machine of one donation or claim transaction:
// Idle -> Submitted(hash) -> Confirmed | Failed(err).
// It is safe for concurrent use.
type Lifecycle struct {
	kind    entity.TxKind
	chainID uint64

	mu        sync.RWMutex
	state     entity.TxState
	hash      string
	err       error
	done      chan struct{}
	onSettled []func(*Lifecycle)
}

// NewLifecycle creates a lifecycle in the Idle state.
func NewLifecycle(kind entity.TxKind, chainID uint64) *Lifecycle {
	return &Lifecycle{
		kind:    kind,
		chainID: chainID,
		state:   entity.TxStateIdle,
		done:    make(chan struct{}),
	}
}

func (l *Lifecycle) Kind() entity.TxKind { return l.kind }
func (l *Lifecycle) ChainID() uint64 { return l.chainID }
func (l *Lifecycle) Done() <-chan struct{} { return l.done }

func (l *Lifecycle) Hash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hash
}

func (l *Lifecycle) State() entity.TxState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Lifecycle) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Submit records the transaction hash. Only valid from Idle.
func (l *Lifecycle) Submit(hash string) error {
	if hash == "" {
		return fmt.Errorf("%w: empty transaction hash", ErrIllegalTransition)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != entity.TxStateIdle {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, l.state, entity.TxStateSubmitted)
	}
	l.state = entity.TxStateSubmitted
	l.hash = hash
	metrics.LifecycleTransitions.WithLabelValues(string(l.kind), l.state.String()).Inc()
	return nil
}

// Confirm moves a submitted lifecycle to Confirmed.
func (l *Lifecycle) Confirm() error {
	return l.settle(entity.TxStateConfirmed, nil)
}

// Fail moves a submitted lifecycle to Failed with cause.
func (l *Lifecycle) Fail(cause error) error {
	if cause == nil {
		cause = entity.ErrTransactionFailed
	}
	return l.settle(entity.TxStateFailed, cause)
}

func (l *Lifecycle) settle(to entity.TxState, cause error) error {
	l.mu.Lock()
	if l.state != entity.TxStateSubmitted {
		from := l.state
		l.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	l.state = to
	l.err = cause
	callbacks := l.onSettled
	l.onSettled = nil
	close(l.done)
	l.mu.Unlock()

	metrics.LifecycleTransitions.WithLabelValues(string(l.kind), to.String()).Inc()
	for _, cb := range callbacks {
		cb(l)
	}
	return nil
}

// OnSettled registers cb to run once the lifecycle is terminal.
// If it already is, cb runs immediately on the calling goroutine.
func (l *Lifecycle) OnSettled(cb func(*Lifecycle)) {
	l.mu.Lock()
	if !l.state.Terminal() {
		l.onSettled = append(l.onSettled, cb)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	cb(l)
}

// Await blocks until the lifecycle is terminal or ctx is done.
// Returning on ctx does not affect the lifecycle.
func (l *Lifecycle) Await(ctx context.Context) (entity.TxSnapshot, error) {
	select {
	case <-l.done:
		return l.Snapshot(), l.Err()
	case <-ctx.Done():
		return l.Snapshot(), ctx.Err()
	}
}

func (l *Lifecycle) Snapshot() entity.TxSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := entity.TxSnapshot{
		Kind:    l.kind,
		ChainID: l.chainID,
		Hash:    l.hash,
		State:   l.state,
		Status:  l.state.String(),
	}
	if l.err != nil {
		snap.Error = l.err.Error()
		var de *entity.DonationError
		if errors.As(l.err, &de) {
			snap.UserMessage = de.UserMessage()
		} else {
			snap.UserMessage = (&entity.DonationError{Kind: entity.KindTransactionFailed, Err: l.err}).UserMessage()
		}
	}
	return snap
}
