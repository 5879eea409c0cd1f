package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnumerator(state chainState) (*WalletTokenServiceImpl, *fakeClientProvider) {
	client := &fakeChainClient{def: sepoliaDef(), balances: state.answer}
	cp := &fakeClientProvider{client: client}
	return NewWalletTokenService(newFakeRegistry(sepoliaDef()), cp, logger.NewNop()), cp
}

func defaultState() chainState {
	return chainState{
		native:   big.NewInt(0),
		balances: map[string]*big.Int{},
		failing:  map[string]bool{},
		decimals: map[string]uint8{usdcAddr: 6, linkAddr: 18},
		symbols:  map[string]string{usdcAddr: "USDC", linkAddr: "LINK"},
	}
}

func TestEnumerateWalletTokens_ZeroBalancesYieldNativeOnly(t *testing.T) {
	svc, _ := newEnumerator(defaultState())

	tokens, err := svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].IsNative)
	assert.Equal(t, "ETH", tokens[0].Symbol)
	assert.Equal(t, "0.0000", tokens[0].FormattedBalance)
}

func TestEnumerateWalletTokens_OneEthNoUSDC(t *testing.T) {
	state := defaultState()
	state.native = eth("1000000000000000000")
	svc, _ := newEnumerator(state)

	tokens, err := svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, entity.WalletToken{
		Symbol:           "ETH",
		Decimals:         18,
		Balance:          eth("1000000000000000000"),
		FormattedBalance: "1.0000",
		IsNative:         true,
	}, tokens[0])
}

func TestEnumerateWalletTokens_IncludesPositiveTokensInOrder(t *testing.T) {
	state := defaultState()
	state.native = eth("1234567890000000000")
	state.balances[usdcAddr] = big.NewInt(25_500000)
	state.balances[linkAddr] = eth("99999")
	svc, _ := newEnumerator(state)

	tokens, err := svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, "1.2345", tokens[0].FormattedBalance)
	assert.Equal(t, usdcAddr, tokens[1].Address)
	assert.Equal(t, "25.5000", tokens[1].FormattedBalance)
	assert.Equal(t, linkAddr, tokens[2].Address)
	assert.Equal(t, "0.0000", tokens[2].FormattedBalance)
}

func TestEnumerateWalletTokens_FailingTokenIsOmitted(t *testing.T) {
	state := defaultState()
	state.balances[usdcAddr] = big.NewInt(5_000000)
	state.balances[linkAddr] = eth("1000000000000000000")

	withFailure := state
	withFailure.failing = map[string]bool{linkAddr: true}
	svc, _ := newEnumerator(withFailure)
	got, err := svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)

	unsupported := sepoliaDef()
	delete(unsupported.SupportedTokens, linkAddr)
	client := &fakeChainClient{def: unsupported, balances: state.answer}
	ref := NewWalletTokenService(newFakeRegistry(unsupported), &fakeClientProvider{client: client}, logger.NewNop())
	want, err := ref.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestEnumerateWalletTokens_NativeFailureOmitsNative(t *testing.T) {
	state := defaultState()
	state.nativeErr = errors.New("header not found")
	state.balances[usdcAddr] = big.NewInt(1_000000)
	svc, _ := newEnumerator(state)

	tokens, err := svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDC", tokens[0].Symbol)
}

func TestEnumerateWalletTokens_EmptyInputsAndUnsupportedChain(t *testing.T) {
	svc, cp := newEnumerator(defaultState())

	for _, tc := range []struct {
		account string
		chainID uint64
	}{
		{"", sepoliaID},
		{donor, 0},
		{donor, 1},
	} {
		tokens, err := svc.EnumerateWalletTokens(context.Background(), tc.account, tc.chainID)
		require.NoError(t, err)
		assert.Empty(t, tokens)
		assert.NotNil(t, tokens)
	}
	assert.Zero(t, cp.calls)
}

func TestEnumerateWalletTokens_Errors(t *testing.T) {
	svc, _ := newEnumerator(defaultState())
	_, err := svc.EnumerateWalletTokens(context.Background(), "vitalik.eth", sepoliaID)
	require.ErrorIs(t, err, ErrInvalidAccount)

	client := &fakeChainClient{def: sepoliaDef(), balances: func([]entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	svc = NewWalletTokenService(newFakeRegistry(sepoliaDef()), &fakeClientProvider{client: client}, logger.NewNop())
	_, err = svc.EnumerateWalletTokens(context.Background(), donor, sepoliaID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFindWalletToken(t *testing.T) {
	tokens := []entity.WalletToken{
		{Symbol: "ETH", IsNative: true},
		{Address: usdcAddr, Symbol: "USDC"},
	}
	got, ok := FindWalletToken(tokens, "native")
	require.True(t, ok)
	assert.Equal(t, "ETH", got.Symbol)

	got, ok = FindWalletToken(tokens, "0x1C7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	require.True(t, ok)
	assert.Equal(t, "USDC", got.Symbol)

	_, ok = FindWalletToken(tokens, linkAddr)
	assert.False(t, ok)
}
