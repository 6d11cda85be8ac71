package trades

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

var ErrMissingBlockTime = errors.New("block has no block time")

// Persister receives the trades of a block. Implementations must tolerate
// concurrent calls for different slots.
type Persister interface {
	Write(ctx context.Context, batch Batch) error
}

// BlockProcessor runs the transaction processor over whole blocks.
type BlockProcessor struct {
	processor *Processor
	persister Persister
	log       *logrus.Logger
}

// NewBlockProcessor returns a BlockProcessor. persister may be nil, in which
// case batches are only returned.
func NewBlockProcessor(processor *Processor, persister Persister) *BlockProcessor {
	return &BlockProcessor{
		processor: processor,
		persister: persister,
		log:       processor.logger(),
	}
}

// DecodeEnvelope decodes one transaction of a getBlock result. Only binary
// encodings are accepted.
func DecodeEnvelope(twm *rpc.TransactionWithMeta) (*solana.Transaction, error) {
	if twm == nil || twm.Transaction == nil || twm.Meta == nil {
		return nil, ErrMalformedEnvelope
	}
	if len(twm.Transaction.GetBinary()) == 0 {
		return nil, fmt.Errorf("%w: transaction is not binary encoded", ErrMalformedEnvelope)
	}
	tx, err := twm.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return tx, nil
}

// ProcessBlock decodes every transaction of block, in block order, and hands
// the result to the persister. A block without trades is not persisted and
// is not an error.
func (b *BlockProcessor) ProcessBlock(ctx context.Context, slot uint64, block *rpc.GetBlockResult) (Batch, error) {
	if block == nil {
		return Batch{}, fmt.Errorf("slot %d: nil block", slot)
	}
	if block.BlockTime == nil {
		return Batch{}, fmt.Errorf("slot %d: %w", slot, ErrMissingBlockTime)
	}

	start := time.Now()
	blockTime := int64(*block.BlockTime)
	batch := Batch{
		Slot:      slot,
		Date:      BlockDate(blockTime),
		BlockTime: blockTime,
	}

	for i := range block.Transactions {
		twm := &block.Transactions[i]
		tx, err := DecodeEnvelope(twm)
		if err != nil {
			b.processor.observer().TransactionSkipped(SkipMalformed)
			b.log.WithFields(logrus.Fields{"slot": slot, "tx_index": i}).Debugf("skipping transaction: %v", err)
			continue
		}
		trades, err := b.processor.ProcessTransaction(tx, twm.Meta, slot, blockTime)
		if err != nil {
			continue
		}
		batch.Trades = append(batch.Trades, trades...)
	}

	fields := logrus.Fields{
		"slot":         slot,
		"block_time":   block.BlockTime.Time().UTC().Format("2006-01-02 15:04:05"),
		"transactions": len(block.Transactions),
		"trades":       len(batch.Trades),
		"elapsed":      time.Since(start),
	}
	for program, trades := range batch.ByProgram() {
		b.log.WithFields(logrus.Fields{"slot": slot, "program": program}).Debugf("%d trades", len(trades))
	}
	b.log.WithFields(fields).Info("block decoded")

	if len(batch.Trades) == 0 || b.persister == nil {
		return batch, nil
	}
	if err := b.persister.Write(ctx, batch); err != nil {
		return batch, fmt.Errorf("persist slot %d: %w", slot, err)
	}
	return batch, nil
}
