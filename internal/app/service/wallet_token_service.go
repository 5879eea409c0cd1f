package service

import (
	"context"
	"fmt"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/utils"
)

// WalletTokenServiceImpl implements port.WalletTokenEnumerator.
type WalletTokenServiceImpl struct {
	registry       port.NetworkRegistry
	clientProvider port.ChainClientProvider
	logger         port.Logger
}

func NewWalletTokenService(registry port.NetworkRegistry, cp port.ChainClientProvider, logger port.Logger) *WalletTokenServiceImpl {
	return &WalletTokenServiceImpl{registry: registry, clientProvider: cp, logger: logger}
}

type tokenReads struct {
	address  string
	balance  entity.BalanceResultItem
	decimals entity.BalanceResultItem
	symbol   entity.BalanceResultItem
}

func (r tokenReads) failed() error {
	for _, item := range []entity.BalanceResultItem{r.balance, r.decimals, r.symbol} {
		if item.Error != nil {
			return item.Error
		}
	}
	return nil
}

// EnumerateWalletTokens lists the native balance (always, even at zero) followed by every supported
// token with a strictly positive balance, in registry address order.
// A token whose balance, decimals or symbol read fails is left out. The call returns once every read has settled.
func (s *WalletTokenServiceImpl) EnumerateWalletTokens(ctx context.Context, account string, chainID uint64) ([]entity.WalletToken, error) {
	if account == "" || chainID == 0 {
		return []entity.WalletToken{}, nil
	}
	if !validAccount(account) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}
	def, ok := s.registry.GetNetworkConfig(chainID)
	if !ok {
		s.logger.Debug("Chain not supported, no wallet tokens", "chain_id", chainID)
		return []entity.WalletToken{}, nil
	}

	client, err := s.clientProvider.GetClient(def)
	if err != nil {
		return nil, fmt.Errorf("chain client for %s: %w", def.Name, err)
	}

	addresses := def.TokenAddresses()
	requests := make([]entity.BalanceRequestItem, 0, 1+3*len(addresses))
	requests = append(requests, entity.BalanceRequestItem{ID: entity.NativeTokenKey, Type: entity.NativeBalanceRequest, WalletAddress: account})
	for _, addr := range addresses {
		requests = append(requests,
			entity.BalanceRequestItem{ID: addr + ":balance", Type: entity.TokenBalanceRequest, WalletAddress: account, TokenAddress: addr},
			entity.BalanceRequestItem{ID: addr + ":decimals", Type: entity.TokenDecimalsRequest, TokenAddress: addr},
			entity.BalanceRequestItem{ID: addr + ":symbol", Type: entity.TokenSymbolRequest, TokenAddress: addr},
		)
	}

	results, err := client.GetBalances(ctx, requests)
	if err != nil {
		s.logger.Error("Balance batch failed", "chain_id", chainID, "account", account, "error", err)
		return nil, fmt.Errorf("failed to read balances on %s: %w", def.Name, err)
	}
	if len(results) != len(requests) {
		return nil, fmt.Errorf("balance batch returned %d results for %d requests", len(results), len(requests))
	}

	tokens := make([]entity.WalletToken, 0, 1+len(addresses))
	native := results[0]
	if native.Error != nil || native.Balance == nil {
		s.logger.Warn("Native balance read failed, omitting native token", "chain_id", chainID, "account", account, "error", native.Error)
	} else {
		tokens = append(tokens, entity.WalletToken{
			Symbol:           def.NativeCurrency.Symbol,
			Decimals:         def.NativeCurrency.Decimals,
			Balance:          native.Balance,
			FormattedBalance: utils.FormatFixed(native.Balance, def.NativeCurrency.Decimals, utils.DisplayPlaces),
			IsNative:         true,
		})
	}

	for i, addr := range addresses {
		base := 1 + 3*i
		reads := tokenReads{address: addr, balance: results[base], decimals: results[base+1], symbol: results[base+2]}
		if err := reads.failed(); err != nil {
			s.logger.Debug("Token read failed, skipping token", "chain_id", chainID, "token", addr, "error", err)
			continue
		}
		if reads.balance.Balance == nil || reads.balance.Balance.Sign() <= 0 {
			continue
		}
		tokens = append(tokens, entity.WalletToken{
			Address:          addr,
			Symbol:           reads.symbol.Symbol,
			Decimals:         reads.decimals.Decimals,
			Balance:          reads.balance.Balance,
			FormattedBalance: utils.FormatFixed(reads.balance.Balance, reads.decimals.Decimals, utils.DisplayPlaces),
		})
	}

	s.logger.Debug("Wallet tokens enumerated", "chain_id", chainID, "account", account, "count", len(tokens))
	return tokens, nil
}

// FindWalletToken returns the enumerated token matching tokenAddress.
// Native aliases select the native entry.
func FindWalletToken(tokens []entity.WalletToken, tokenAddress string) (entity.WalletToken, bool) {
	native := entity.IsNativeAddress(tokenAddress)
	for _, t := range tokens {
		if native && t.IsNative {
			return t, true
		}
		if !native && !t.IsNative && equalAddress(t.Address, tokenAddress) {
			return t, true
		}
	}
	return entity.WalletToken{}, false
}
