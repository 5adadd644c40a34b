package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrReverted is returned when a mined transaction has a failed status.
var ErrReverted = errors.New("transaction reverted")

const (
	defaultReceiptPoll    = 2 * time.Second
	defaultConfirmTimeout = 3 * time.Minute
)

// Client is a node connection for one RPC endpoint.
type Client struct {
	url            string
	eth            *ethclient.Client
	receiptPoll    time.Duration
	confirmTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithReceiptPolling sets how often WaitForReceipt re-queries the node.
func WithReceiptPolling(d time.Duration) Option {
	return func(c *Client) { c.receiptPoll = d }
}

// WithConfirmTimeout bounds WaitMined.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = d }
}

// Dial connects to an EVM JSON-RPC endpoint (http, https, ws or ipc).
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	c := &Client{
		url:            url,
		eth:            eth,
		receiptPoll:    defaultReceiptPoll,
		confirmTimeout: defaultConfirmTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// URL returns the endpoint this client was dialed with.
func (c *Client) URL() string { return c.url }

// Backend exposes the underlying ethclient for contract bindings.
func (c *Client) Backend() *ethclient.Client { return c.eth }

// Ping measures round-trip latency with an eth_blockNumber request.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.eth.BlockNumber(ctx)
	latency = time.Since(start)
	return latency, blockNum, err
}

// ChainID returns the chain ID reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	return id, nil
}

// WaitForReceipt polls until the transaction is mined, ctx is done or timeout
// expires. A mined receipt with failed status is returned together with
// ErrReverted.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.receiptPoll)
	defer ticker.Stop()

	notMined := func() error {
		return fmt.Errorf("transaction %s not mined within %s: %w", hash.Hex(), timeout, ctx.Err())
	}

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case ctx.Err() != nil:
			return nil, notMined()
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, notMined()
		case <-ticker.C:
		}
	}
}

// WaitMined blocks until tx is mined successfully.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) error {
	_, err := c.WaitForReceipt(ctx, tx.Hash(), c.confirmTimeout)
	return err
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.eth.Close()
}
