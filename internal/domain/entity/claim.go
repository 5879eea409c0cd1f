package entity

// ClaimEligibility answers whether account may call claimNFT(DonationIndex).
// Claimed and HasNFT mirror contract state and are monotonic: once true they stay true.
type ClaimEligibility struct {
	Account         string `json:"account"`
	DonationIndex   uint64 `json:"donationIndex"`
	BelongsToCaller bool   `json:"belongsToCaller"`
	Claimed         bool   `json:"claimed"`
	HasNFT          bool   `json:"hasNFT"`
}

func (e ClaimEligibility) Eligible() bool {
	return e.BelongsToCaller && !e.Claimed && !e.HasNFT
}
