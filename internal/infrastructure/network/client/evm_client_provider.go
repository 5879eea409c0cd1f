package client

import (
	"context"
	"fmt"
	"sync"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"golang.org/x/sync/errgroup"
)

// EVMClientProvider implements port.ChainClientProvider and caches one EVMClient per chain.
type EVMClientProvider struct {
	mu      sync.Mutex
	clients map[uint64]*EVMClient
	opts    ClientOptions
	logger  port.Logger
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(opts ClientOptions, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients: make(map[uint64]*EVMClient),
		opts:    opts,
		logger:  logger,
	}
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *EVMClientProvider) GetClient(netDef entity.NetworkDefinition) (port.ChainClient, error) {
	return p.GetEVMClient(netDef)
}

// GetEVMClient is GetClient returning the concrete type.
func (p *EVMClientProvider) GetEVMClient(netDef entity.NetworkDefinition) (*EVMClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "chain_id", netDef.ChainID)
	newClient, err := NewEVMClient(netDef, p.opts)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// GetCaller returns a contract caller for read-only bindings.
func (p *EVMClientProvider) GetCaller(netDef entity.NetworkDefinition) (bind.ContractCaller, error) {
	c, err := p.GetEVMClient(netDef)
	if err != nil {
		return nil, err
	}
	return c.Backend(), nil
}

// GetBackend returns a full contract backend for transacting bindings.
func (p *EVMClientProvider) GetBackend(netDef entity.NetworkDefinition) (bind.ContractBackend, error) {
	c, err := p.GetEVMClient(netDef)
	if err != nil {
		return nil, err
	}
	return c.Backend(), nil
}

// WarmUp dials every network concurrently. Failures are logged, not returned.
func (p *EVMClientProvider) WarmUp(ctx context.Context, defs []entity.NetworkDefinition, limit int) {
	g, _ := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, def := range defs {
		def := def
		g.Go(func() error {
			if _, err := p.GetEVMClient(def); err != nil {
				p.logger.Warn("Chain client warm-up failed", "network", def.Name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
