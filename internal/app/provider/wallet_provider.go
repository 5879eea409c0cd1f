package provider

import (
	"donation_portal/internal/app/port"
	"donation_portal/internal/pkg/utils"
)

type walletProviderImpl struct {
	source port.WalletProvider
	logger port.Logger
}

// NewWalletProvider wraps a wallet source, dropping duplicate addresses.
func NewWalletProvider(source port.WalletProvider, logger port.Logger) port.WalletProvider {
	return &walletProviderImpl{source: source, logger: logger}
}

// GetWallets loads wallet addresses from the underlying source.
func (p *walletProviderImpl) GetWallets() ([]string, error) {
	wallets, err := p.source.GetWallets()
	if err != nil {
		p.logger.Error("Failed to load wallets", "error", err)
		return nil, err
	}
	unique := utils.UniqueStrings(wallets)
	p.logger.Info("Wallets loaded successfully", "count", len(unique), "duplicates", len(wallets)-len(unique))
	return unique, nil
}
