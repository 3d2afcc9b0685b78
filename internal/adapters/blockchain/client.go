package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"sync"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the subset of an RPC client the deployer needs. Both *ethclient.Client and the
// simulated backend's client satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Client sends creation transactions signed with a single private key
type Client struct {
	rpcURL string
	key    *ecdsa.PrivateKey
	sender common.Address
	log    *slog.Logger

	mu      sync.Mutex
	backend Backend
	chainID uint64
}

// NewClient creates a client for the configured RPC endpoint. The connection is opened on
// first use so commands that never touch the chain don't need an endpoint.
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	c := &Client{
		rpcURL: cfg.RPCURL,
		log:    log.With("component", "ChainClient"),
	}
	c.setKey(cfg.PrivateKey)
	return c
}

// NewClientWithBackend creates a client on top of an existing backend
func NewClientWithBackend(backend Backend, key *ecdsa.PrivateKey, log *slog.Logger) *Client {
	c := &Client{
		backend: backend,
		log:     log.With("component", "ChainClient"),
	}
	c.setKey(key)
	return c
}

func (c *Client) setKey(key *ecdsa.PrivateKey) {
	c.key = key
	if key != nil {
		c.sender = crypto.PubkeyToAddress(key.PublicKey)
	}
}

func (c *Client) conn(ctx context.Context) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return c.backend, nil
	}
	if c.rpcURL == "" {
		return nil, fmt.Errorf("%w: RPC_URL", domain.ErrConfigMissing)
	}

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RPC: %w", domain.ErrChainQueryFailed, err)
	}
	c.log.Debug("connected", "rpc", c.rpcURL)
	c.backend = client
	return client, nil
}

// Sender returns the deployer address
func (c *Client) Sender() common.Address {
	return c.sender
}

// ChainID returns the chain id reported by the endpoint
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	backend, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	cached := c.chainID
	c.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	id, err := backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get chain ID: %w", domain.ErrChainQueryFailed, err)
	}

	c.mu.Lock()
	c.chainID = id.Uint64()
	c.mu.Unlock()
	return id.Uint64(), nil
}

// TransactionCount returns the pending nonce of addr, which is the nonce the next
// transaction sent by addr gets
func (c *Client) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	backend, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	nonce, err := backend.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get nonce of %s: %w", domain.ErrChainQueryFailed, addr.Hex(), err)
	}
	return nonce, nil
}

// Deploy signs and sends a creation transaction for bytecode followed by constructorArgs
func (c *Client) Deploy(ctx context.Context, bytecode []byte, constructorArgs []byte) (usecase.PendingDeployment, error) {
	if c.key == nil {
		return nil, fmt.Errorf("%w: PRIVATE_KEY", domain.ErrConfigMissing)
	}
	backend, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, fmt.Errorf("%w: transactor: %w", domain.ErrTransactionFailed, err)
	}
	opts.Context = ctx

	// Arguments arrive encoded, so the empty ABI packs nothing extra
	code := append(slices.Clone(bytecode), constructorArgs...)
	_, tx, _, err := bind.DeployContract(opts, abi.ABI{}, code, backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}

	c.log.Debug("creation transaction sent", "tx", tx.Hash().Hex(), "nonce", tx.Nonce(), "gas", tx.Gas())
	return &pendingDeployment{tx: tx, backend: backend}, nil
}

type pendingDeployment struct {
	tx      *types.Transaction
	backend Backend
}

func (p *pendingDeployment) TxHash() common.Hash {
	return p.tx.Hash()
}

// Wait blocks until the transaction is mined and checks that it succeeded
func (p *pendingDeployment) Wait(ctx context.Context) (common.Address, error) {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: waiting for %s: %w", domain.ErrTransactionFailed, p.tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("%w: %s reverted in block %s", domain.ErrTransactionFailed, p.tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt.ContractAddress, nil
}
