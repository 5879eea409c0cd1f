package provider

import (
	"sync"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"
)

type tokenProviderImpl struct {
	source port.TokenProvider
	logger port.Logger

	mu          sync.Mutex
	tokensCache map[string][]entity.TokenInfo
}

// NewTokenProvider creates a TokenProvider that caches the first successful load of source.
func NewTokenProvider(source port.TokenProvider, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{source: source, logger: logger}
}

// GetTokensByNetwork loads token definitions once and serves the cached result afterwards.
func (p *tokenProviderImpl) GetTokensByNetwork(defs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokensCache != nil {
		p.logger.Debug("Returning cached tokens by network")
		return p.tokensCache, nil
	}

	tokens, err := p.source.GetTokensByNetwork(defs)
	if err != nil {
		p.logger.Error("Failed to load tokens", "error", err)
		return nil, err
	}

	p.tokensCache = tokens
	p.logger.Info("Tokens loaded and cached successfully", "total_networks_with_tokens", len(tokens))
	return tokens, nil
}
