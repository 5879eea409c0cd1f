package service

import (
	"context"
	"fmt"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/tracker"
	"donation_portal/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

const historyClaimLookups = 8

// ClaimServiceImpl implements port.ClaimService.
type ClaimServiceImpl struct {
	registry       port.NetworkRegistry
	reader         port.DonationReader
	sender         port.TransactionSender
	clientProvider port.ChainClientProvider
	tracker        *tracker.Tracker
	logger         port.Logger
}

func NewClaimService(
	registry port.NetworkRegistry,
	reader port.DonationReader,
	sender port.TransactionSender,
	cp port.ChainClientProvider,
	tr *tracker.Tracker,
	logger port.Logger,
) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		registry:       registry,
		reader:         reader,
		sender:         sender,
		clientProvider: cp,
		tracker:        tr,
		logger:         logger,
	}
}

// ClaimNFT dispatches claimNFT(donationIndex) and tracks it. Eligibility is the caller's concern.
func (s *ClaimServiceImpl) ClaimNFT(ctx context.Context, chainID uint64, account string, donationIndex uint64) (port.TxHandle, error) {
	def, ok := s.registry.GetNetworkConfig(chainID)
	if !ok || !hasDonationContract(def) {
		return nil, entity.NewUnsupportedAssetError("claims are not supported on chain %d", chainID)
	}
	client, err := s.clientProvider.GetClient(def)
	if err != nil {
		return nil, entity.NewTransactionFailedError(err, "chain client unavailable")
	}

	hash, err := s.sender.Send(ctx, chainID, account, entity.ResolveClaim(donationIndex))
	if err != nil {
		s.logger.Warn("Claim dispatch failed", "chain_id", chainID, "account", account, "donation_index", donationIndex, "error", err)
		return nil, err
	}

	l, err := s.tracker.Track(entity.TxKindClaim, chainID, hash, client)
	if err != nil {
		return nil, fmt.Errorf("track claim %s: %w", hash.Hex(), err)
	}
	s.logger.Info("Claim submitted", "chain_id", chainID, "account", account, "donation_index", donationIndex, "tx_hash", hash.Hex())
	return l, nil
}

// CheckEligibility runs the three read-only eligibility queries concurrently.
func (s *ClaimServiceImpl) CheckEligibility(ctx context.Context, chainID uint64, account string, donationIndex uint64) (entity.ClaimEligibility, error) {
	result := entity.ClaimEligibility{Account: account, DonationIndex: donationIndex}
	if !validAccount(account) {
		return result, fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		indices, err := s.reader.GetDonationIndices(gctx, chainID, account)
		if err != nil {
			return err
		}
		for _, idx := range indices {
			if idx == donationIndex {
				result.BelongsToCaller = true
				break
			}
		}
		return nil
	})
	g.Go(func() error {
		claimed, err := s.reader.IsDonationClaimed(gctx, chainID, donationIndex)
		result.Claimed = claimed
		return err
	})
	g.Go(func() error {
		has, err := s.reader.HasReceivedNFT(gctx, chainID, account)
		result.HasNFT = has
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.ClaimEligibility{Account: account, DonationIndex: donationIndex}, err
	}
	return result, nil
}

// DonationHistory returns donor's donations in index order with their claim flags.
func (s *ClaimServiceImpl) DonationHistory(ctx context.Context, chainID uint64, donor string) ([]port.DonationView, error) {
	if !validAccount(donor) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccount, donor)
	}
	indices, err := s.reader.GetDonationIndices(ctx, chainID, donor)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return []port.DonationView{}, nil
	}
	all, err := s.reader.GetAllDonations(ctx, chainID)
	if err != nil {
		return nil, err
	}

	views := make([]port.DonationView, 0, len(indices))
	for _, idx := range indices {
		if idx >= uint64(len(all)) {
			s.logger.Warn("Donation index out of range", "chain_id", chainID, "donor", donor, "index", idx, "total", len(all))
			continue
		}
		views = append(views, port.DonationView{DonationRecord: all[idx]})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyClaimLookups)
	for i := range views {
		v := &views[i]
		g.Go(func() error {
			claimed, err := s.reader.IsDonationClaimed(gctx, chainID, v.Index)
			if err != nil {
				return err
			}
			v.Claimed = claimed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}
