package entity

import (
	"sort"
	"strings"
)

// AssetMeta describes a fungible asset known to the registry: the id used by the
// price feed, its ticker and its decimal precision.
type AssetMeta struct {
	PriceFeedID string `json:"priceFeedId" yaml:"priceFeedId"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	Decimals    uint8  `json:"decimals" yaml:"decimals"`
}

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"` // e.g. "sepolia", used for token file names
	PrimaryRPCURL    string   `json:"-" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"-" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`

	// DonationContract is the address of the donation/NFT contract on this chain.
	DonationContract string `json:"donationContract" yaml:"donationContract"`

	NativeCurrency AssetMeta `json:"nativeCurrency" yaml:"nativeCurrency"`
	// SupportedTokens is keyed by lower-cased token contract address.
	SupportedTokens map[string]AssetMeta `json:"supportedTokens" yaml:"supportedTokens"`
}

// Token returns the metadata of a supported token. Address matching is case-insensitive.
func (d NetworkDefinition) Token(address string) (AssetMeta, bool) {
	meta, ok := d.SupportedTokens[strings.ToLower(address)]
	return meta, ok
}

// TokenAddresses returns supported token addresses in a stable order.
func (d NetworkDefinition) TokenAddresses() []string {
	addrs := make([]string, 0, len(d.SupportedTokens))
	for addr := range d.SupportedTokens {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Clone returns a deep copy so registry consumers can't mutate shared state.
func (d NetworkDefinition) Clone() NetworkDefinition {
	out := d
	out.FallbackRPCURLs = append([]string(nil), d.FallbackRPCURLs...)
	out.SupportedTokens = make(map[string]AssetMeta, len(d.SupportedTokens))
	for k, v := range d.SupportedTokens {
		out.SupportedTokens[k] = v
	}
	return out
}
