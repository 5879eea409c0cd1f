package entity

// SessionHandoff carries a confirmed donation to the confirmation view.
// It is written once and read once.
type SessionHandoff struct {
	USDAmount       string `json:"usdAmount"`
	TokenAmount     string `json:"tokenAmount"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenAddress    string `json:"tokenAddress"`
	TransactionHash string `json:"transactionHash"`
	Message         string `json:"message"`
}

// Valid rejects records that would render as partial data.
func (h SessionHandoff) Valid() bool {
	return h.TransactionHash != "" && h.TokenSymbol != "" && h.TokenAmount != ""
}
