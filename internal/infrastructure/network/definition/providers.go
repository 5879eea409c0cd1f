package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"
)

// NetworkRegistry is the immutable chain id -> network configuration table.
// It is built once at startup from the built-in definitions, config overrides and token files.
type NetworkRegistry struct {
	logger port.Logger
	byID   map[uint64]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia",
		Identifier:       "sepolia",
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org", "https://1rpc.io/sepolia"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		NativeCurrency:   entity.AssetMeta{PriceFeedID: "ethereum", Symbol: "ETH", Decimals: 18},
		SupportedTokens: map[string]entity.AssetMeta{
			"0x1c7d4b196cb0c7b01d743fbc6116a902379c7238": {PriceFeedID: "usd-coin", Symbol: "USDC", Decimals: 6},
			"0x779877a7b0d9e8603169ddbd7836e478b4624789": {PriceFeedID: "chainlink", Symbol: "LINK", Decimals: 18},
		},
	}
	PolygonAmoy = entity.NetworkDefinition{
		ChainID:          80002,
		Name:             "Polygon Amoy",
		Identifier:       "polygon-amoy",
		PrimaryRPCURL:    "https://rpc-amoy.polygon.technology",
		FallbackRPCURLs:  []string{"https://polygon-amoy-bor-rpc.publicnode.com"},
		BlockExplorerURL: "https://amoy.polygonscan.com",
		NativeCurrency:   entity.AssetMeta{PriceFeedID: "matic-network", Symbol: "POL", Decimals: 18},
		SupportedTokens: map[string]entity.AssetMeta{
			"0x41e94eb019c0762f9bfcf9fb1e58725bfb0e7582": {PriceFeedID: "usd-coin", Symbol: "USDC", Decimals: 6},
		},
	}
)

// BuiltinDefinitions returns copies of the hard-coded test networks.
func BuiltinDefinitions() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{Sepolia.Clone(), PolygonAmoy.Clone()}
}

// NewNetworkRegistry merges base definitions with overrides (matched by chain id) and
// token lists from tokens. Later sources win field by field.
func NewNetworkRegistry(log port.Logger, base []entity.NetworkDefinition, overrides []entity.NetworkDefinition, tokens port.TokenProvider) (*NetworkRegistry, error) {
	r := &NetworkRegistry{
		logger: log,
		byID:   make(map[uint64]entity.NetworkDefinition, len(base)+len(overrides)),
	}

	for _, def := range base {
		r.byID[def.ChainID] = normalize(def)
	}
	for _, o := range overrides {
		if o.ChainID == 0 {
			return nil, fmt.Errorf("network override %q has no chain id", o.Name)
		}
		existing, ok := r.byID[o.ChainID]
		if !ok {
			r.byID[o.ChainID] = normalize(o)
			r.logger.Info("Network added from config", "chain_id", o.ChainID, "name", o.Name)
			continue
		}
		r.byID[o.ChainID] = merge(existing, o)
		r.logger.Debug("Network overridden from config", "chain_id", o.ChainID, "name", existing.Name)
	}

	if tokens != nil {
		if err := r.mergeTokenFiles(tokens); err != nil {
			return nil, err
		}
	}

	for _, def := range r.byID {
		if def.DonationContract == "" {
			r.logger.Warn("Network has no donation contract, donations will be rejected", "chain_id", def.ChainID, "name", def.Name)
		}
	}
	r.logger.Info("NetworkRegistry initialized", "networks", len(r.byID))
	return r, nil
}

func (r *NetworkRegistry) mergeTokenFiles(tokens port.TokenProvider) error {
	defs := make([]entity.NetworkDefinition, 0, len(r.byID))
	for _, d := range r.byID {
		defs = append(defs, d)
	}
	byIdentifier, err := tokens.GetTokensByNetwork(defs)
	if err != nil {
		return fmt.Errorf("failed to load token lists: %w", err)
	}

	for _, def := range defs {
		list, ok := byIdentifier[def.Identifier]
		if !ok {
			continue
		}
		for _, t := range list {
			def.SupportedTokens[strings.ToLower(t.Address)] = t.Meta()
		}
		r.byID[def.ChainID] = def
		r.logger.Debug("Token list merged", "network", def.Identifier, "tokens", len(list))
	}
	return nil
}

// GetNetworkConfig returns a copy of the definition for chainID.
func (r *NetworkRegistry) GetNetworkConfig(chainID uint64) (entity.NetworkDefinition, bool) {
	if r == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := r.byID[chainID]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	return def.Clone(), true
}

// GetAllNetworkDefinitions returns all networks ordered by chain id.
func (r *NetworkRegistry) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if r == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(r.byID))
	for _, d := range r.byID {
		defs = append(defs, d.Clone())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

func normalize(def entity.NetworkDefinition) entity.NetworkDefinition {
	out := def.Clone()
	out.Identifier = strings.ToLower(out.Identifier)
	out.SupportedTokens = make(map[string]entity.AssetMeta, len(def.SupportedTokens))
	for addr, meta := range def.SupportedTokens {
		out.SupportedTokens[strings.ToLower(addr)] = meta
	}
	return out
}

func merge(base, o entity.NetworkDefinition) entity.NetworkDefinition {
	out := base.Clone()
	if o.Name != "" {
		out.Name = o.Name
	}
	if o.Identifier != "" {
		out.Identifier = strings.ToLower(o.Identifier)
	}
	if o.PrimaryRPCURL != "" {
		out.PrimaryRPCURL = o.PrimaryRPCURL
	}
	if len(o.FallbackRPCURLs) > 0 {
		out.FallbackRPCURLs = append([]string(nil), o.FallbackRPCURLs...)
	}
	if o.BlockExplorerURL != "" {
		out.BlockExplorerURL = o.BlockExplorerURL
	}
	if o.DonationContract != "" {
		out.DonationContract = o.DonationContract
	}
	if o.NativeCurrency.Symbol != "" {
		out.NativeCurrency = o.NativeCurrency
	}
	for addr, meta := range o.SupportedTokens {
		out.SupportedTokens[strings.ToLower(addr)] = meta
	}
	return out
}
