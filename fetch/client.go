package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// JSON-RPC codes returned for slots that will never hold a block.
const (
	codeLongTermStorageSlotSkipped = -32009
	codeSlotSkipped                = -32007
)

// ErrSlotSkipped is returned for slots the leader skipped. It is never retried.
var ErrSlotSkipped = errors.New("slot was skipped")

// RPC is the subset of *rpc.Client the fetcher needs.
type RPC interface {
	GetBlockWithOpts(ctx context.Context, slot uint64, opts *rpc.GetBlockOpts) (*rpc.GetBlockResult, error)
	GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	GetTransaction(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

// Client fetches blocks and transactions with rate limiting and retries.
type Client struct {
	rpc          RPC
	limiter      *rate.Limiter
	commitment   rpc.CommitmentType
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the fetch client
type ClientConfig struct {
	// RPC overrides the connection built from Endpoint.
	RPC        RPC
	Endpoint   string
	Commitment rpc.CommitmentType
	// RequestsPerSecond of zero disables rate limiting.
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryBackoff      time.Duration
	Logger            *logrus.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.RPC == nil {
		cfg.RPC = rpc.New(cfg.Endpoint)
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		rpc:          cfg.RPC,
		limiter:      rate.NewLimiter(limit, cfg.Burst),
		commitment:   cfg.Commitment,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// GetBlock fetches a full block with binary-encoded transactions.
func (c *Client) GetBlock(ctx context.Context, slot uint64) (*rpc.GetBlockResult, error) {
	opts := &rpc.GetBlockOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		TransactionDetails:             rpc.TransactionDetailsFull,
		Rewards:                        pointer.ToBool(false),
		MaxSupportedTransactionVersion: pointer.ToUint64(0),
	}

	var block *rpc.GetBlockResult
	err := c.call(ctx, "getBlock", func(ctx context.Context) error {
		var err error
		block, err = c.rpc.GetBlockWithOpts(ctx, slot, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getBlock(%d): %w", slot, err)
	}
	if block == nil {
		return nil, fmt.Errorf("getBlock(%d): %w", slot, ErrSlotSkipped)
	}
	return block, nil
}

// LatestSlot returns the most recent slot at the client's commitment.
func (c *Client) LatestSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := c.call(ctx, "getSlot", func(ctx context.Context) error {
		var err error
		slot, err = c.rpc.GetSlot(ctx, c.commitment)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("getSlot: %w", err)
	}
	return slot, nil
}

func (c *Client) GetTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: pointer.ToUint64(0),
	}

	var tx *rpc.GetTransactionResult
	err := c.call(ctx, "getTransaction", func(ctx context.Context) error {
		var err error
		tx, err = c.rpc.GetTransaction(ctx, sig, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getTransaction(%s): %w", sig, err)
	}
	return tx, nil
}

// call runs fn under the rate limiter, retrying with exponential backoff.
func (c *Client) call(ctx context.Context, method string, fn func(context.Context) error) error {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if isSkipped(err) {
			return fmt.Errorf("%w: %v", ErrSlotSkipped, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isSkipped(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == codeSlotSkipped || rpcErr.Code == codeLongTermStorageSlotSkipped
}
