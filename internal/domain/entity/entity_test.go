package entity

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTransfer_Native(t *testing.T) {
	amount := big.NewInt(5e16)
	call := ResolveTransfer(NativeAsset(18), amount, "thanks")

	require.Equal(t, MethodDonate, call.Method)
	require.Equal(t, []any{"thanks"}, call.Args)
	require.Equal(t, 0, call.Value.Cmp(amount))

	// the call must not alias the caller's big.Int
	amount.SetInt64(1)
	require.Equal(t, "50000000000000000", call.Value.String())
}

func TestResolveTransfer_Token(t *testing.T) {
	addr := "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"
	call := ResolveTransfer(TokenAsset(addr, 6), big.NewInt(2_500_000), "gm")

	require.Equal(t, MethodDonateToken, call.Method)
	require.Nil(t, call.Value)
	require.Len(t, call.Args, 3)
	assert.Equal(t, common.HexToAddress(addr), call.Args[0])
	assert.Equal(t, "2500000", call.Args[1].(*big.Int).String())
	assert.Equal(t, "gm", call.Args[2])
}

func TestResolveClaim(t *testing.T) {
	call := ResolveClaim(7)
	require.Equal(t, MethodClaimNFT, call.Method)
	require.Equal(t, "7", call.Args[0].(*big.Int).String())
	require.Nil(t, call.Value)
}

func TestWalletToken_Asset(t *testing.T) {
	native := WalletToken{Symbol: "ETH", Decimals: 18, IsNative: true}
	require.True(t, native.Asset().IsNative())
	require.Equal(t, AssetKindNative, native.Asset().Kind())

	token := WalletToken{Address: "0xabc", Symbol: "USDC", Decimals: 6}
	require.False(t, token.Asset().IsNative())
	require.Equal(t, "0xabc", token.Asset().Address())
	require.Equal(t, uint8(6), token.Asset().Decimals())
}

func TestIsNativeAddress(t *testing.T) {
	for _, in := range []string{"", "native", "NATIVE", ZeroAddress, " native "} {
		assert.True(t, IsNativeAddress(in), in)
	}
	assert.False(t, IsNativeAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"))
}

func TestNetworkDefinition_TokenLookupIsCaseInsensitive(t *testing.T) {
	def := NetworkDefinition{
		SupportedTokens: map[string]AssetMeta{
			"0xbbb": {Symbol: "B"},
			"0xaaa": {Symbol: "A"},
		},
	}
	meta, ok := def.Token("0xAAA")
	require.True(t, ok)
	require.Equal(t, "A", meta.Symbol)
	require.Equal(t, []string{"0xaaa", "0xbbb"}, def.TokenAddresses())

	clone := def.Clone()
	clone.SupportedTokens["0xccc"] = AssetMeta{}
	_, ok = def.Token("0xccc")
	require.False(t, ok)
}

func TestDonationError_IsAndKind(t *testing.T) {
	err := NewBelowMinimumError("$%.2f", 0.1)
	wrapped := fmt.Errorf("submit: %w", err)

	require.True(t, errors.Is(wrapped, ErrBelowMinimum))
	require.False(t, errors.Is(wrapped, ErrInvalidAmount))
	require.Equal(t, KindBelowMinimum, KindOf(wrapped))
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Contains(t, err.UserMessage(), "$0.10")
}

func TestDonationError_UserMessagesAreDistinct(t *testing.T) {
	seen := map[string]ErrorKind{}
	for _, e := range []*DonationError{
		ErrUnsupportedAsset, ErrPriceFeed, ErrInvalidAmount, ErrBelowMinimum,
		ErrInsufficientBalance, ErrWalletRejected, ErrTransactionFailed,
	} {
		msg := e.UserMessage()
		prev, dup := seen[msg]
		require.False(t, dup, "kind %s reuses message of %s", e.Kind, prev)
		seen[msg] = e.Kind
		require.NotEqual(t, (&DonationError{}).UserMessage(), msg)
	}
}

func TestDonationError_Retryable(t *testing.T) {
	require.True(t, NewPriceFeedError(errors.New("502"), "lookup failed").Retryable())
	require.False(t, NewWalletRejectedError(nil).Retryable())
	require.False(t, NewInvalidAmountError("x").Retryable())
}

func TestDonationConfirmed_Handoff(t *testing.T) {
	ev := DonationConfirmed{TxHash: "0x1", Amount: "0.05", Symbol: "ETH", USDEquivalent: "100.00", Message: "hi"}
	h := ev.Handoff()
	require.True(t, h.Valid())
	require.Equal(t, "100.00", h.USDAmount)
	require.False(t, SessionHandoff{TokenSymbol: "ETH"}.Valid())
}

func TestTxState(t *testing.T) {
	require.False(t, TxStateSubmitted.Terminal())
	require.True(t, TxStateConfirmed.Terminal())
	require.True(t, TxStateFailed.Terminal())
	require.Equal(t, "submitted", TxStateSubmitted.String())
}
