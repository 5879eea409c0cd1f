package tracker

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	receipt func(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

func (f *fakeFetcher) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return f.receipt(ctx, hash)
}

var testHash = common.HexToHash("0x5e1d3a76fbf824220eafc8c79ad578ad2b67d01b0c2425eb1f1347e8f50882ab")

func TestLifecycle_Transitions(t *testing.T) {
	l := NewLifecycle(entity.TxKindDonation, 11155111)
	assert.Equal(t, entity.TxStateIdle, l.State())

	require.ErrorIs(t, l.Confirm(), ErrIllegalTransition)
	require.ErrorIs(t, l.Fail(errors.New("boom")), ErrIllegalTransition)
	require.ErrorIs(t, l.Submit(""), ErrIllegalTransition)

	require.NoError(t, l.Submit(testHash.Hex()))
	assert.Equal(t, entity.TxStateSubmitted, l.State())
	require.ErrorIs(t, l.Submit(testHash.Hex()), ErrIllegalTransition)

	require.NoError(t, l.Confirm())
	assert.Equal(t, entity.TxStateConfirmed, l.State())
	require.ErrorIs(t, l.Fail(errors.New("late")), ErrIllegalTransition)
	assert.NoError(t, l.Err())

	select {
	case <-l.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestLifecycle_FailureSnapshot(t *testing.T) {
	l := NewLifecycle(entity.TxKindClaim, 80002)
	require.NoError(t, l.Submit(testHash.Hex()))
	require.NoError(t, l.Fail(entity.NewWalletRejectedError(errors.New("user denied"))))

	snap := l.Snapshot()
	assert.Equal(t, "failed", snap.Status)
	assert.Contains(t, snap.Error, "user denied")
	assert.Equal(t, entity.ErrWalletRejected.UserMessage(), snap.UserMessage)
	assert.ErrorIs(t, l.Err(), entity.ErrWalletRejected)
}

func TestLifecycle_AwaitRespectsContext(t *testing.T) {
	l := NewLifecycle(entity.TxKindDonation, 1)
	require.NoError(t, l.Submit(testHash.Hex()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := l.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, entity.TxStateSubmitted, snap.State)

	// abandoning Await leaves the lifecycle usable
	require.NoError(t, l.Confirm())
	snap, err = l.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateConfirmed, snap.State)
}

func TestLifecycle_OnSettledRunsOnce(t *testing.T) {
	l := NewLifecycle(entity.TxKindDonation, 1)
	require.NoError(t, l.Submit(testHash.Hex()))

	var calls int32
	l.OnSettled(func(*Lifecycle) { atomic.AddInt32(&calls, 1) })
	require.NoError(t, l.Confirm())
	l.OnSettled(func(*Lifecycle) { atomic.AddInt32(&calls, 1) })

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTracker_ConfirmsAfterPending(t *testing.T) {
	var polls int32
	fetcher := &fakeFetcher{receipt: func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		assert.Equal(t, testHash, hash)
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			return nil, ethereum.NotFound
		case 2:
			return nil, errors.New("connection reset")
		default:
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10)}, nil
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := New(ctx, Config{PollInterval: 5 * time.Millisecond}, logger.NewNop())

	var settled sync.WaitGroup
	settled.Add(1)
	l, err := tr.Track(entity.TxKindDonation, 11155111, testHash, fetcher, func(*Lifecycle) { settled.Done() })
	require.NoError(t, err)

	snap, err := l.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateConfirmed, snap.State)
	settled.Wait()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))

	h, ok := tr.Lookup(testHash.Hex())
	require.True(t, ok)
	assert.Equal(t, entity.TxStateConfirmed, h.State())
}

func TestTracker_RevertedReceiptFails(t *testing.T) {
	fetcher := &fakeFetcher{receipt: func(context.Context, common.Hash) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(7)}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := New(ctx, Config{PollInterval: time.Millisecond}, logger.NewNop())

	l, err := tr.Track(entity.TxKindClaim, 80002, testHash, fetcher)
	require.NoError(t, err)
	_, err = l.Await(context.Background())
	require.ErrorIs(t, err, entity.ErrTransactionFailed)
	assert.Equal(t, entity.TxStateFailed, l.State())
}

func TestTracker_ShutdownStopsWatchers(t *testing.T) {
	fetcher := &fakeFetcher{receipt: func(context.Context, common.Hash) (*types.Receipt, error) {
		return nil, ethereum.NotFound
	}}
	ctx, cancel := context.WithCancel(context.Background())
	tr := New(ctx, Config{PollInterval: time.Millisecond}, logger.NewNop())

	l, err := tr.Track(entity.TxKindDonation, 1, testHash, fetcher)
	require.NoError(t, err)

	cancel()
	tr.Wait()
	assert.Equal(t, entity.TxStateSubmitted, l.State())
}

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(time.Minute)
	l := NewLifecycle(entity.TxKindDonation, 1)
	require.NoError(t, l.Submit(testHash.Hex()))
	r.Add(l)

	_, ok := r.Lookup(testHash.Hex())
	assert.True(t, ok)
	_, ok = r.Lookup("0x5E1D3A76FBF824220EAFC8C79AD578AD2B67D01B0C2425EB1F1347E8F50882AB")
	assert.True(t, ok)
	_, ok = r.Lookup("0xdead")
	assert.False(t, ok)
}
