package trades

import (
	"time"
)

const blockDateLayout = "2006-01-02"

// TradeData is one decoded swap leg.
type TradeData struct {
	BlockDate             string  `json:"block_date"`
	BlockTime             int64   `json:"block_time"`
	BlockSlot             uint64  `json:"block_slot"`
	Signature             string  `json:"signature"`
	TxID                  string  `json:"tx_id"`
	Signer                string  `json:"signer"`
	PoolAddress           string  `json:"pool_address"`
	BaseMint              string  `json:"base_mint"`
	QuoteMint             string  `json:"quote_mint"`
	BaseVault             string  `json:"base_vault"`
	QuoteVault            string  `json:"quote_vault"`
	BaseAmount            float64 `json:"base_amount"`
	QuoteAmount           float64 `json:"quote_amount"`
	IsInnerInstruction    bool    `json:"is_inner_instruction"`
	InstructionIndex      uint32  `json:"instruction_index"`
	InstructionType       string  `json:"instruction_type"`
	InnerInstructionIndex uint32  `json:"inner_instruction_index"`
	OuterProgram          string  `json:"outer_program"`
	InnerProgram          string  `json:"inner_program"`
	TxnFeeLamports        uint64  `json:"txn_fee_lamports"`
	SignerLamportsChange  int64   `json:"signer_lamports_change"`
}

// Batch is every trade of one block.
type Batch struct {
	Slot      uint64      `json:"slot"`
	Date      string      `json:"date"`
	BlockTime int64       `json:"-"`
	Trades    []TradeData `json:"data"`
}

// ByProgram groups the batch's trades by the program that executed the swap.
func (b Batch) ByProgram() map[string][]TradeData {
	out := make(map[string][]TradeData)
	for _, t := range b.Trades {
		out[t.Program()] = append(out[t.Program()], t)
	}
	return out
}

// Program returns the exchange program of the trade.
func (t TradeData) Program() string {
	if t.IsInnerInstruction {
		return t.InnerProgram
	}
	return t.OuterProgram
}

// BlockDate formats a block timestamp as a UTC calendar date.
func BlockDate(blockTime int64) string {
	return time.Unix(blockTime, 0).UTC().Format(blockDateLayout)
}
