package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// userRejectedCode is the EIP-1193 "user rejected request" error code.
const userRejectedCode = 4001

// BackendProvider hands out transacting contract backends per network.
type BackendProvider interface {
	GetBackend(def entity.NetworkDefinition) (bind.ContractBackend, error)
}

func donationContract(registry port.NetworkRegistry, chainID uint64) (entity.NetworkDefinition, common.Address, error) {
	def, ok := registry.GetNetworkConfig(chainID)
	if !ok {
		return def, common.Address{}, entity.NewUnsupportedAssetError("chain %d is not supported", chainID)
	}
	if !common.IsHexAddress(def.DonationContract) {
		return def, common.Address{}, entity.NewUnsupportedAssetError("chain %d has no donation contract", chainID)
	}
	return def, common.HexToAddress(def.DonationContract), nil
}

// IsUserRejection reports whether err is a signer refusing to sign.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "denied") || strings.Contains(msg, "rejected")
}

// classifySendError maps signer and broadcast failures to domain errors.
func classifySendError(err error, method string) error {
	if IsUserRejection(err) {
		return entity.NewWalletRejectedError(err)
	}
	return entity.NewTransactionFailedError(err, "failed to send %s", method)
}

// KeyedSender signs with a local private key. Meant for development and test networks.
type KeyedSender struct {
	registry port.NetworkRegistry
	backends BackendProvider
	key      *ecdsa.PrivateKey
	from     common.Address
}

// NewKeyedSender parses a hex private key (with or without 0x).
func NewKeyedSender(registry port.NetworkRegistry, backends BackendProvider, hexKey string) (*KeyedSender, error) {
	initParsedABIs()
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer private key: %w", err)
	}
	return &KeyedSender{
		registry: registry,
		backends: backends,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address is the account the sender signs for.
func (s *KeyedSender) Address() common.Address { return s.from }

func (s *KeyedSender) Send(ctx context.Context, chainID uint64, from string, call entity.ChainCall) (common.Hash, error) {
	if from != "" && !strings.EqualFold(common.HexToAddress(from).Hex(), s.from.Hex()) {
		return common.Hash{}, entity.NewWalletRejectedError(fmt.Errorf("signer %s cannot sign for %s", s.from.Hex(), from))
	}
	def, contractAddr, err := donationContract(s.registry, chainID)
	if err != nil {
		return common.Hash{}, err
	}
	backend, err := s.backends.GetBackend(def)
	if err != nil {
		return common.Hash{}, fmt.Errorf("backend for chain %d: %w", chainID, err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	if call.Value != nil {
		opts.Value = new(big.Int).Set(call.Value)
	}

	contract := bind.NewBoundContract(contractAddr, parsedDonationABI, backend, backend, backend)
	tx, err := contract.Transact(opts, call.Method, call.Args...)
	if err != nil {
		return common.Hash{}, classifySendError(err, call.Method)
	}
	return tx.Hash(), nil
}

// RPCSender asks an external signer (a node with unlocked accounts or Clef) to sign and
// broadcast via eth_sendTransaction. The donor approves or rejects on the signer side.
type RPCSender struct {
	registry    port.NetworkRegistry
	endpoint    string
	dialTimeout time.Duration

	mu      sync.Mutex
	clients map[string]*rpc.Client
}

// NewRPCSender uses endpoint for every chain, or each network's primary RPC when endpoint is empty.
func NewRPCSender(registry port.NetworkRegistry, endpoint string, dialTimeout time.Duration) *RPCSender {
	initParsedABIs()
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return &RPCSender{
		registry:    registry,
		endpoint:    endpoint,
		dialTimeout: dialTimeout,
		clients:     make(map[string]*rpc.Client),
	}
}

func (s *RPCSender) client(def entity.NetworkDefinition) (*rpc.Client, error) {
	url := s.endpoint
	if url == "" {
		url = def.PrimaryRPCURL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[url]; ok {
		return c, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.dialTimeout)
	defer cancel()
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial signer %s: %w", url, err)
	}
	s.clients[url] = c
	return c, nil
}

type sendTxArgs struct {
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	Data    hexutil.Bytes  `json:"data"`
	Value   *hexutil.Big   `json:"value,omitempty"`
	ChainID *hexutil.Big   `json:"chainId"`
}

func (s *RPCSender) Send(ctx context.Context, chainID uint64, from string, call entity.ChainCall) (common.Hash, error) {
	if !common.IsHexAddress(from) {
		return common.Hash{}, fmt.Errorf("invalid sender address %q", from)
	}
	def, contractAddr, err := donationContract(s.registry, chainID)
	if err != nil {
		return common.Hash{}, err
	}
	data, err := parsedDonationABI.Pack(call.Method, call.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack %s: %w", call.Method, err)
	}
	c, err := s.client(def)
	if err != nil {
		return common.Hash{}, err
	}

	args := sendTxArgs{
		From:    common.HexToAddress(from),
		To:      contractAddr,
		Data:    data,
		ChainID: (*hexutil.Big)(new(big.Int).SetUint64(chainID)),
	}
	if call.Value != nil && call.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(new(big.Int).Set(call.Value))
	}

	var hash common.Hash
	if err := c.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, classifySendError(err, call.Method)
	}
	return hash, nil
}

// Close closes the signer connections.
func (s *RPCSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for url, c := range s.clients {
		c.Close()
		delete(s.clients, url)
	}
}
