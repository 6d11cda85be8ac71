package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	blockErrs []error
	calls     int
	lastOpts  *rpc.GetBlockOpts
	slot      uint64
	tx        *rpc.GetTransactionResult
}

func (f *fakeRPC) GetBlockWithOpts(_ context.Context, slot uint64, opts *rpc.GetBlockOpts) (*rpc.GetBlockResult, error) {
	f.calls++
	f.lastOpts = opts
	if len(f.blockErrs) > 0 {
		err := f.blockErrs[0]
		f.blockErrs = f.blockErrs[1:]
		return nil, err
	}
	bt := solana.UnixTimeSeconds(1700000000)
	return &rpc.GetBlockResult{ParentSlot: slot - 1, BlockTime: &bt}, nil
}

func (f *fakeRPC) GetSlot(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	f.calls++
	return f.slot, nil
}

func (f *fakeRPC) GetTransaction(_ context.Context, _ solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	f.calls++
	return f.tx, nil
}

func newTestClient(fake *fakeRPC, retries int) *Client {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewClient(ClientConfig{
		RPC:          fake,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
		Logger:       log,
	})
}

func TestGetBlockOptions(t *testing.T) {
	fake := &fakeRPC{}
	block, err := newTestClient(fake, 0).GetBlock(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), block.ParentSlot)

	require.NotNil(t, fake.lastOpts)
	assert.Equal(t, rpc.TransactionDetailsFull, fake.lastOpts.TransactionDetails)
	assert.Equal(t, rpc.CommitmentConfirmed, fake.lastOpts.Commitment)
	assert.Equal(t, solana.EncodingBase64, fake.lastOpts.Encoding)
	require.NotNil(t, fake.lastOpts.MaxSupportedTransactionVersion)
	assert.Equal(t, uint64(0), *fake.lastOpts.MaxSupportedTransactionVersion)
	require.NotNil(t, fake.lastOpts.Rewards)
	assert.False(t, *fake.lastOpts.Rewards)
}

func TestGetBlockRetriesTransientErrors(t *testing.T) {
	fake := &fakeRPC{blockErrs: []error{
		errors.New("rate limited (429)"),
		&jsonrpc.RPCError{Code: -32004, Message: "Block not available for slot 100"},
	}}

	_, err := newTestClient(fake, 3).GetBlock(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 3, fake.calls)
}

func TestGetBlockGivesUp(t *testing.T) {
	boom := errors.New("connection reset")
	fake := &fakeRPC{blockErrs: []error{boom, boom, boom}}

	_, err := newTestClient(fake, 2).GetBlock(context.Background(), 100)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, fake.calls)
}

func TestGetBlockSkippedSlot(t *testing.T) {
	for _, code := range []int{-32007, -32009} {
		fake := &fakeRPC{blockErrs: []error{&jsonrpc.RPCError{Code: code, Message: "Slot 100 was skipped"}}}

		_, err := newTestClient(fake, 5).GetBlock(context.Background(), 100)
		assert.ErrorIs(t, err, ErrSlotSkipped, "code %d", code)
		assert.Equal(t, 1, fake.calls, "skipped slots are not retried")
	}
}

func TestGetBlockCancelled(t *testing.T) {
	fake := &fakeRPC{blockErrs: []error{errors.New("timeout"), errors.New("timeout")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(fake, 5).GetBlock(ctx, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLatestSlotAndTransaction(t *testing.T) {
	fake := &fakeRPC{slot: 42, tx: &rpc.GetTransactionResult{Slot: 41}}
	client := newTestClient(fake, 0)

	slot, err := client.LatestSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), slot)

	tx, err := client.GetTransaction(context.Background(), solana.Signature{})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), tx.Slot)
}
