package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"donation_portal/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// EVMClient implements the port.ChainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	maxBatchSize   int
	limiter        *rate.Limiter
}

// ClientOptions tunes dialing, batching and rate limiting of an EVMClient.
type ClientOptions struct {
	ConnectionTimeout time.Duration
	RPCCallTimeout    time.Duration
	MaxBatchSize      int
	RatePerSecond     float64
	Burst             int
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.ConnectionTimeout <= 0 {
		o.ConnectionTimeout = 10 * time.Second
	}
	if o.RPCCallTimeout <= 0 {
		o.RPCCallTimeout = 10 * time.Second
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = 100
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// NewEVMClient creates a new EVM client for the given network definition.
// The primary RPC URL is tried first, then the fallbacks.
func NewEVMClient(netDef entity.NetworkDefinition, opts ClientOptions) (*EVMClient, error) {
	initParsedABIs()
	opts = opts.withDefaults()

	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error
	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			limit := rate.Inf
			if opts.RatePerSecond > 0 {
				limit = rate.Limit(opts.RatePerSecond)
			}
			return &EVMClient{
				ethClient:      client,
				netDef:         netDef,
				rpcCallTimeout: opts.RPCCallTimeout,
				maxBatchSize:   opts.MaxBatchSize,
				limiter:        rate.NewLimiter(limit, opts.Burst),
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URL configured")
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// GetBalances fetches native balances and ERC20 balanceOf/decimals/symbol values using JSON-RPC batch requests.
// Results keep the order of requests. A failed element only sets that item's Error.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	results := make([]entity.BalanceResultItem, len(requests))
	for start := 0; start < len(requests); start += c.maxBatchSize {
		end := start + c.maxBatchSize
		if end > len(requests) {
			end = len(requests)
		}
		if err := c.batch(ctx, requests[start:end], results[start:end]); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (c *EVMClient) batch(ctx context.Context, requests []entity.BalanceRequestItem, results []entity.BalanceResultItem) error {
	batchElems := make([]rpc.BatchElem, 0, len(requests))
	elemIndex := make([]int, 0, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:    reqItem.ID,
			Type:         reqItem.Type,
			TokenAddress: reqItem.TokenAddress,
		}

		elem, err := buildElem(reqItem)
		if err != nil {
			results[i].Error = err
			continue
		}
		batchElems = append(batchElems, elem)
		elemIndex = append(elemIndex, i)
	}
	if len(batchElems) == 0 {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()
	if err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return fmt.Errorf("RPC batch call failed: %w", err)
	}

	for j, elem := range batchElems {
		i := elemIndex[j]
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("request %s (%s): %w", requests[i].ID, requests[i].TokenAddress, elem.Error)
			continue
		}
		decodeElem(requests[i], elem, &results[i])
	}
	return nil
}

func buildElem(req entity.BalanceRequestItem) (rpc.BatchElem, error) {
	var data []byte
	var err error

	switch req.Type {
	case entity.NativeBalanceRequest:
		return rpc.BatchElem{
			Method: "eth_getBalance",
			Args:   []interface{}{common.HexToAddress(req.WalletAddress), "latest"},
			Result: new(hexutil.Big),
		}, nil
	case entity.TokenBalanceRequest:
		data, err = parsedERC20ABI.Pack("balanceOf", common.HexToAddress(req.WalletAddress))
	case entity.TokenDecimalsRequest:
		data, err = parsedERC20ABI.Pack("decimals")
	case entity.TokenSymbolRequest:
		data, err = parsedERC20ABI.Pack("symbol")
	default:
		return rpc.BatchElem{}, fmt.Errorf("unknown balance request type: %v", req.Type)
	}
	if err != nil {
		return rpc.BatchElem{}, err
	}

	callArgs := map[string]interface{}{
		"to":   common.HexToAddress(req.TokenAddress),
		"data": hexutil.Bytes(data),
	}
	return rpc.BatchElem{
		Method: "eth_call",
		Args:   []interface{}{callArgs, "latest"},
		Result: new(hexutil.Bytes),
	}, nil
}

func decodeElem(req entity.BalanceRequestItem, elem rpc.BatchElem, out *entity.BalanceResultItem) {
	if req.Type == entity.NativeBalanceRequest {
		result, ok := elem.Result.(*hexutil.Big)
		if !ok || result == nil {
			out.Error = fmt.Errorf("failed to decode native balance: unexpected result %T", elem.Result)
			return
		}
		out.Balance = new(big.Int).Set((*big.Int)(result))
		return
	}

	raw, ok := elem.Result.(*hexutil.Bytes)
	if !ok || raw == nil || len(*raw) == 0 {
		// empty return data means no contract or a non-ERC20 at that address
		out.Error = fmt.Errorf("empty eth_call result for %s", req.TokenAddress)
		return
	}

	var method string
	switch req.Type {
	case entity.TokenBalanceRequest:
		method = "balanceOf"
	case entity.TokenDecimalsRequest:
		method = "decimals"
	case entity.TokenSymbolRequest:
		method = "symbol"
	}
	unpacked, err := parsedERC20ABI.Unpack(method, *raw)
	if err != nil || len(unpacked) == 0 {
		out.Error = fmt.Errorf("failed to unpack %s result for %s: %v. Raw: %s", method, req.TokenAddress, err, hexutil.Encode(*raw))
		return
	}

	switch v := unpacked[0].(type) {
	case *big.Int:
		out.Balance = v
	case uint8:
		out.Decimals = v
	case string:
		out.Symbol = v
	default:
		out.Error = fmt.Errorf("unexpected %s result type %T for %s", method, unpacked[0], req.TokenAddress)
	}
}

// TransactionReceipt returns the receipt of a mined transaction, ethereum.NotFound while pending.
func (c *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()
	return c.ethClient.TransactionReceipt(callCtx, hash)
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Backend exposes the underlying client for contract bindings.
func (c *EVMClient) Backend() *ethclient.Client {
	return c.ethClient
}

// Close releases the RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
