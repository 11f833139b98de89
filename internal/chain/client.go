package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"go.uber.org/zap"
)

// Reader is the read-only chain access the services need. *RPCClient is the
// live implementation; tests substitute fakes.
type Reader interface {
	CodeAt(ctx context.Context, chainID int64, account common.Address) ([]byte, error)
	CallContract(ctx context.Context, chainID int64, to common.Address, data []byte) ([]byte, error)
	Allowance(ctx context.Context, chainID int64, token, owner, spender common.Address) (*big.Int, error)
}

// RPCClient multiplexes ethclient connections across configured networks,
// dialing lazily from the networks table.
type RPCClient struct {
	queries db.Querier

	mu      sync.Mutex
	clients map[int64]*ethclient.Client
}

// NewRPCClient creates an RPC client resolving endpoints via the network registry.
func NewRPCClient(queries db.Querier) *RPCClient {
	return &RPCClient{
		queries: queries,
		clients: make(map[int64]*ethclient.Client),
	}
}

func (c *RPCClient) clientFor(ctx context.Context, chainID int64) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[chainID]; ok {
		return client, nil
	}

	network, err := c.queries.GetNetworkByChainID(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("unsupported chain %d: %w", chainID, err)
	}

	client, err := ethclient.DialContext(ctx, network.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC for chain %d: %w", chainID, err)
	}

	logger.Debug("Dialed chain RPC",
		zap.Int64("chain_id", chainID),
		zap.String("network", network.Name),
	)

	c.clients[chainID] = client
	return client, nil
}

// CodeAt returns the deployed bytecode at an address, empty for EOAs and
// counterfactual accounts.
func (c *RPCClient) CodeAt(ctx context.Context, chainID int64, account common.Address) ([]byte, error) {
	client, err := c.clientFor(ctx, chainID)
	if err != nil {
		return nil, err
	}
	code, err := client.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch code at %s: %w", account.Hex(), err)
	}
	return code, nil
}

// CallContract performs a read-only eth_call against the latest block.
func (c *RPCClient) CallContract(ctx context.Context, chainID int64, to common.Address, data []byte) ([]byte, error) {
	client, err := c.clientFor(ctx, chainID)
	if err != nil {
		return nil, err
	}
	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call to %s failed: %w", to.Hex(), err)
	}
	return result, nil
}

// Allowance reads the current ERC-20 allowance from owner to spender.
func (c *RPCClient) Allowance(ctx context.Context, chainID int64, token, owner, spender common.Address) (*big.Int, error) {
	data, err := PackAllowance(owner, spender)
	if err != nil {
		return nil, err
	}
	result, err := c.CallContract(ctx, chainID, token, data)
	if err != nil {
		return nil, err
	}
	return UnpackAllowance(result)
}

// Close releases all dialed connections.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[int64]*ethclient.Client)
}
