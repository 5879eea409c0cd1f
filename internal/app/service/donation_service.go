package service

import (
	"context"
	"fmt"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/tracker"
	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/metrics"
	"donation_portal/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// DonationServiceImpl implements port.DonationService.
type DonationServiceImpl struct {
	registry       port.NetworkRegistry
	rates          port.ExchangeRateService
	sender         port.TransactionSender
	clientProvider port.ChainClientProvider
	tracker        *tracker.Tracker
	minUSD         decimal.Decimal
	logger         port.Logger
}

func NewDonationService(
	registry port.NetworkRegistry,
	rates port.ExchangeRateService,
	sender port.TransactionSender,
	cp port.ChainClientProvider,
	tr *tracker.Tracker,
	minUSD decimal.Decimal,
	logger port.Logger,
) *DonationServiceImpl {
	return &DonationServiceImpl{
		registry:       registry,
		rates:          rates,
		sender:         sender,
		clientProvider: cp,
		tracker:        tr,
		minUSD:         minUSD,
		logger:         logger,
	}
}

// SubmitDonation validates req, dispatches the matching contract call and returns the tracked lifecycle.
// Validation order: amount, minimum USD value, balance. The first failure wins and nothing is sent.
func (s *DonationServiceImpl) SubmitDonation(ctx context.Context, req entity.DonationRequest, listeners ...port.DonationListener) (port.TxHandle, error) {
	def, ok := s.registry.GetNetworkConfig(req.ChainID)
	if !ok {
		return nil, s.reject(entity.NewUnsupportedAssetError("chain %d is not supported", req.ChainID))
	}
	if !hasDonationContract(def) {
		return nil, s.reject(entity.NewUnsupportedAssetError("no donation contract configured on %s", def.Name))
	}
	asset := req.Token.Asset()
	if !asset.IsNative() {
		if _, ok := def.Token(asset.Address()); !ok {
			return nil, s.reject(entity.NewUnsupportedAssetError("token %s is not supported on %s", asset.Address(), def.Name))
		}
	}

	amount, err := ParseAmount(req.AmountHuman)
	if err != nil {
		return nil, s.reject(err)
	}
	units, err := utils.ParseUnits(amount, asset.Decimals())
	if err != nil {
		return nil, s.reject(entity.NewInvalidAmountError("%s has more than %d decimal places", req.AmountHuman, asset.Decimals()))
	}

	rate, err := s.rates.FetchExchangeRate(ctx, req.ChainID, asset.Address())
	if err != nil {
		return nil, err
	}
	usd := USDValue(amount, rate)
	if usd.LessThan(s.minUSD) {
		return nil, s.reject(entity.NewBelowMinimumError("$%s is less than $%s", usd.StringFixed(2), s.minUSD.StringFixed(2)))
	}

	available, err := decimal.NewFromString(req.Token.FormattedBalance)
	if err != nil || amount.GreaterThan(available) {
		return nil, s.reject(entity.NewInsufficientBalanceError("%s %s requested, %s available", amount.String(), req.Token.Symbol, req.Token.FormattedBalance))
	}

	client, err := s.clientProvider.GetClient(def)
	if err != nil {
		return nil, entity.NewTransactionFailedError(err, "chain client unavailable")
	}

	call := entity.ResolveTransfer(asset, units, req.Message)
	hash, err := s.sender.Send(ctx, req.ChainID, req.Donor, call)
	if err != nil {
		s.logger.Warn("Donation dispatch failed", "chain_id", req.ChainID, "donor", req.Donor, "method", call.Method, "error", err)
		return nil, err
	}
	metrics.DonationsSubmitted.WithLabelValues(metrics.ChainLabel(req.ChainID), asset.Kind().String()).Inc()

	event := entity.DonationConfirmed{
		ChainID:       req.ChainID,
		Donor:         req.Donor,
		TxHash:        hash.Hex(),
		Amount:        amount.String(),
		Symbol:        req.Token.Symbol,
		TokenAddress:  asset.Address(),
		USDEquivalent: usd.StringFixed(2),
		Message:       req.Message,
	}
	onSettled := func(l *tracker.Lifecycle) {
		if l.State() != entity.TxStateConfirmed {
			return
		}
		for _, listener := range listeners {
			listener(event)
		}
	}

	l, err := s.tracker.Track(entity.TxKindDonation, req.ChainID, hash, client, onSettled)
	if err != nil {
		return nil, fmt.Errorf("track donation %s: %w", hash.Hex(), err)
	}
	s.logger.Info("Donation submitted", "chain_id", req.ChainID, "donor", req.Donor, "tx_hash", hash.Hex(),
		"amount", event.Amount, "symbol", event.Symbol, "usd", event.USDEquivalent)
	return l, nil
}

func (s *DonationServiceImpl) reject(err error) error {
	kind := entity.KindOf(err).String()
	metrics.ValidationFailures.WithLabelValues(kind).Inc()
	s.logger.Debug("Donation rejected", "kind", kind, "reason", err.Error())
	return err
}
