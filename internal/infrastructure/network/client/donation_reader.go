package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// CallerProvider hands out read-only contract backends per network.
type CallerProvider interface {
	GetCaller(def entity.NetworkDefinition) (bind.ContractCaller, error)
}

// onChainDonation mirrors the donation struct returned by getAllDonations.
type onChainDonation struct {
	Donor        common.Address
	Amount       *big.Int
	Timestamp    *big.Int
	Message      string
	TokenAddress common.Address
	AssetType    uint8
}

// DonationContractReader implements port.DonationReader over the donation contract.
type DonationContractReader struct {
	registry    port.NetworkRegistry
	callers     CallerProvider
	callTimeout time.Duration
}

func NewDonationContractReader(registry port.NetworkRegistry, callers CallerProvider, callTimeout time.Duration) *DonationContractReader {
	initParsedABIs()
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &DonationContractReader{registry: registry, callers: callers, callTimeout: callTimeout}
}

func (r *DonationContractReader) contract(chainID uint64) (*bind.BoundContract, error) {
	def, ok := r.registry.GetNetworkConfig(chainID)
	if !ok {
		return nil, entity.NewUnsupportedAssetError("chain %d is not supported", chainID)
	}
	if !common.IsHexAddress(def.DonationContract) {
		return nil, entity.NewUnsupportedAssetError("chain %d has no donation contract", chainID)
	}
	caller, err := r.callers.GetCaller(def)
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(common.HexToAddress(def.DonationContract), parsedDonationABI, caller, nil, nil), nil
}

func (r *DonationContractReader) call(ctx context.Context, chainID uint64, method string, params ...interface{}) ([]interface{}, error) {
	c, err := r.contract(chainID)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	var out []interface{}
	if err := c.Call(&bind.CallOpts{Context: callCtx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s on chain %d: %w", method, chainID, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s on chain %d: empty result", method, chainID)
	}
	return out, nil
}

// GetAllDonations returns every recorded donation with its positional index.
func (r *DonationContractReader) GetAllDonations(ctx context.Context, chainID uint64) ([]entity.DonationRecord, error) {
	out, err := r.call(ctx, chainID, "getAllDonations")
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]onChainDonation)).(*[]onChainDonation)

	records := make([]entity.DonationRecord, 0, len(raw))
	for i, d := range raw {
		records = append(records, toRecord(uint64(i), d))
	}
	return records, nil
}

func (r *DonationContractReader) GetDonationIndices(ctx context.Context, chainID uint64, donor string) ([]uint64, error) {
	out, err := r.call(ctx, chainID, "getDonationIndices", common.HexToAddress(donor))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)

	indices := make([]uint64, 0, len(raw))
	for _, v := range raw {
		if !v.IsUint64() {
			return nil, fmt.Errorf("donation index %s overflows uint64", v)
		}
		indices = append(indices, v.Uint64())
	}
	return indices, nil
}

func (r *DonationContractReader) IsDonationClaimed(ctx context.Context, chainID uint64, donationIndex uint64) (bool, error) {
	out, err := r.call(ctx, chainID, "isDonationClaimed", new(big.Int).SetUint64(donationIndex))
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (r *DonationContractReader) HasReceivedNFT(ctx context.Context, chainID uint64, account string) (bool, error) {
	out, err := r.call(ctx, chainID, "hasReceivedNFT", common.HexToAddress(account))
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func toRecord(index uint64, d onChainDonation) entity.DonationRecord {
	kind := entity.AssetKind(d.AssetType)
	token := d.TokenAddress.Hex()
	if kind == entity.AssetKindNative || d.TokenAddress == (common.Address{}) {
		kind = entity.AssetKindNative
		token = entity.ZeroAddress
	}

	var ts time.Time
	if d.Timestamp != nil && d.Timestamp.IsInt64() {
		ts = time.Unix(d.Timestamp.Int64(), 0).UTC()
	}
	amount := d.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return entity.DonationRecord{
		Index:        index,
		Donor:        d.Donor.Hex(),
		Amount:       amount,
		Timestamp:    ts,
		Message:      d.Message,
		TokenAddress: strings.ToLower(token),
		AssetKind:    kind,
	}
}
