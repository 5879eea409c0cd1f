package port

import (
	"context"

	"donation_portal/internal/domain/entity"
)

// DonationReader exposes the read-only view of the donation contract.
type DonationReader interface {
	GetAllDonations(ctx context.Context, chainID uint64) ([]entity.DonationRecord, error)
	GetDonationIndices(ctx context.Context, chainID uint64, donor string) ([]uint64, error)
	IsDonationClaimed(ctx context.Context, chainID uint64, donationIndex uint64) (bool, error)
	HasReceivedNFT(ctx context.Context, chainID uint64, account string) (bool, error)
}

// DonationListener receives the confirmation event of a donation.
type DonationListener func(entity.DonationConfirmed)

// DonationService validates and dispatches donations.
type DonationService interface {
	// SubmitDonation returns a handle once the transaction hash is known.
	// Listeners run once, after the donation is confirmed on chain.
	SubmitDonation(ctx context.Context, req entity.DonationRequest, listeners ...DonationListener) (TxHandle, error)
}

// ClaimService dispatches NFT claims and answers eligibility questions.
type ClaimService interface {
	ClaimNFT(ctx context.Context, chainID uint64, account string, donationIndex uint64) (TxHandle, error)
	CheckEligibility(ctx context.Context, chainID uint64, account string, donationIndex uint64) (entity.ClaimEligibility, error)
	DonationHistory(ctx context.Context, chainID uint64, donor string) ([]DonationView, error)
}

// DonationView is a donation record together with its claim state.
type DonationView struct {
	entity.DonationRecord
	Claimed bool `json:"claimed"`
}
