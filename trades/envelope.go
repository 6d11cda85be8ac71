package trades

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// ProcessResult decodes the trades of a single getTransaction result.
func (p *Processor) ProcessResult(res *rpc.GetTransactionResult) ([]TradeData, error) {
	if res == nil || res.Transaction == nil || res.Meta == nil {
		p.observer().TransactionSkipped(SkipMalformed)
		return nil, ErrMalformedEnvelope
	}
	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		p.observer().TransactionSkipped(SkipMalformed)
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var blockTime int64
	if res.BlockTime != nil {
		blockTime = int64(*res.BlockTime)
	}
	return p.ProcessTransaction(tx, res.Meta, res.Slot, blockTime)
}
