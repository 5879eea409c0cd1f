package service

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/tracker"
	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

const (
	sepoliaID = uint64(11155111)
	donor     = "0x000000000000000000000000000000000000dEaD"
	usdcAddr  = "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238"
	linkAddr  = "0x779877a7b0d9e8603169ddbd7836e478b4624789"
	contract  = "0x00000000000000000000000000000000000000aa"
)

var txHash = common.HexToHash("0x5e1d3a76fbf824220eafc8c79ad578ad2b67d01b0c2425eb1f1347e8f50882ab")

func sepoliaDef() entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:          sepoliaID,
		Name:             "Sepolia",
		Identifier:       "sepolia",
		DonationContract: contract,
		NativeCurrency:   entity.AssetMeta{PriceFeedID: "ethereum", Symbol: "ETH", Decimals: 18},
		SupportedTokens: map[string]entity.AssetMeta{
			usdcAddr: {PriceFeedID: "usd-coin", Symbol: "USDC", Decimals: 6},
			linkAddr: {PriceFeedID: "chainlink", Symbol: "LINK", Decimals: 18},
		},
	}
}

type fakeRegistry struct {
	defs map[uint64]entity.NetworkDefinition
}

func newFakeRegistry(defs ...entity.NetworkDefinition) *fakeRegistry {
	r := &fakeRegistry{defs: make(map[uint64]entity.NetworkDefinition)}
	for _, d := range defs {
		r.defs[d.ChainID] = d
	}
	return r
}

func (r *fakeRegistry) GetNetworkConfig(chainID uint64) (entity.NetworkDefinition, bool) {
	d, ok := r.defs[chainID]
	return d.Clone(), ok
}

func (r *fakeRegistry) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

type fakeFeed struct {
	mu     sync.Mutex
	calls  int
	prices func(ids []string) (map[string]float64, error)
}

func (f *fakeFeed) GetUSDPrices(_ context.Context, ids []string) (map[string]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.prices(ids)
}

func (f *fakeFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRates struct {
	calls int
	rate  func(chainID uint64, token string) (float64, error)
}

func (f *fakeRates) FetchExchangeRate(_ context.Context, chainID uint64, token string) (float64, error) {
	f.calls++
	return f.rate(chainID, token)
}

func fixedRate(r float64) *fakeRates {
	return &fakeRates{rate: func(uint64, string) (float64, error) { return r, nil }}
}

type fakeChainClient struct {
	def      entity.NetworkDefinition
	balances func(reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)
	receipt  func(hash common.Hash) (*types.Receipt, error)
}

func (c *fakeChainClient) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	return c.balances(reqs)
}

func (c *fakeChainClient) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.receipt == nil {
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}, nil
	}
	return c.receipt(hash)
}

func (c *fakeChainClient) Definition() entity.NetworkDefinition { return c.def }

type fakeClientProvider struct {
	calls  int
	client port.ChainClient
	err    error
}

func (p *fakeClientProvider) GetClient(entity.NetworkDefinition) (port.ChainClient, error) {
	p.calls++
	return p.client, p.err
}

// chainState answers balance batches from fixed per-token values.
type chainState struct {
	native    *big.Int
	nativeErr error
	balances  map[string]*big.Int
	failing   map[string]bool
	decimals  map[string]uint8
	symbols   map[string]string
}

func (s chainState) answer(reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	out := make([]entity.BalanceResultItem, len(reqs))
	for i, r := range reqs {
		item := entity.BalanceResultItem{RequestID: r.ID, Type: r.Type, TokenAddress: r.TokenAddress}
		addr := strings.ToLower(r.TokenAddress)
		switch {
		case r.Type == entity.NativeBalanceRequest:
			item.Balance, item.Error = s.native, s.nativeErr
		case s.failing[addr]:
			item.Error = errTokenRead
		case r.Type == entity.TokenBalanceRequest:
			item.Balance = s.balances[addr]
			if item.Balance == nil {
				item.Balance = big.NewInt(0)
			}
		case r.Type == entity.TokenDecimalsRequest:
			item.Decimals = s.decimals[addr]
		case r.Type == entity.TokenSymbolRequest:
			item.Symbol = s.symbols[addr]
		}
		out[i] = item
	}
	return out, nil
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, chainID uint64, from string, call entity.ChainCall) (common.Hash, error) {
	args := m.Called(ctx, chainID, from, call)
	return args.Get(0).(common.Hash), args.Error(1)
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) GetAllDonations(ctx context.Context, chainID uint64) ([]entity.DonationRecord, error) {
	args := m.Called(ctx, chainID)
	records, _ := args.Get(0).([]entity.DonationRecord)
	return records, args.Error(1)
}

func (m *mockReader) GetDonationIndices(ctx context.Context, chainID uint64, donor string) ([]uint64, error) {
	args := m.Called(ctx, chainID, donor)
	indices, _ := args.Get(0).([]uint64)
	return indices, args.Error(1)
}

func (m *mockReader) IsDonationClaimed(ctx context.Context, chainID uint64, idx uint64) (bool, error) {
	args := m.Called(ctx, chainID, idx)
	return args.Bool(0), args.Error(1)
}

func (m *mockReader) HasReceivedNFT(ctx context.Context, chainID uint64, account string) (bool, error) {
	args := m.Called(ctx, chainID, account)
	return args.Bool(0), args.Error(1)
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore { return &mapStore{data: make(map[string][]byte)} }

func (s *mapStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	delete(s.data, key)
	return v, ok, nil
}

func newTestTracker(t *testing.T) *tracker.Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	tr := tracker.New(ctx, tracker.Config{PollInterval: 5 * time.Millisecond, Retention: time.Minute}, logger.NewNop())
	t.Cleanup(func() {
		cancel()
		tr.Wait()
	})
	return tr
}

func eth(wei string) *big.Int {
	v, _ := new(big.Int).SetString(wei, 10)
	return v
}
