package entity

// TokenInfo holds the details of a specific token as stored in per-network token files.
type TokenInfo struct {
	ChainID     uint64 `json:"chainId"`
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	PriceFeedID string `json:"priceFeedId"`
}

// Meta converts the file entry into registry metadata.
func (t TokenInfo) Meta() AssetMeta {
	return AssetMeta{PriceFeedID: t.PriceFeedID, Symbol: t.Symbol, Decimals: t.Decimals}
}
