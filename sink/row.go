package sink

import "github.com/franco-bianco/solanatrades-go/trades"

// Row is the stored form of a trade. Unsigned counters are narrowed to the
// signed types Avro, Parquet and ClickHouse columns use.
type Row struct {
	BlockDate             string  `avro:"block_date" parquet:"block_date" ch:"block_date"`
	BlockTime             int64   `avro:"block_time" parquet:"block_time" ch:"block_time"`
	BlockSlot             int64   `avro:"block_slot" parquet:"block_slot" ch:"block_slot"`
	Signature             string  `avro:"signature" parquet:"signature" ch:"signature"`
	TxID                  string  `avro:"tx_id" parquet:"tx_id" ch:"tx_id"`
	Signer                string  `avro:"signer" parquet:"signer" ch:"signer"`
	PoolAddress           string  `avro:"pool_address" parquet:"pool_address" ch:"pool_address"`
	BaseMint              string  `avro:"base_mint" parquet:"base_mint" ch:"base_mint"`
	QuoteMint             string  `avro:"quote_mint" parquet:"quote_mint" ch:"quote_mint"`
	BaseVault             string  `avro:"base_vault" parquet:"base_vault" ch:"base_vault"`
	QuoteVault            string  `avro:"quote_vault" parquet:"quote_vault" ch:"quote_vault"`
	BaseAmount            float64 `avro:"base_amount" parquet:"base_amount" ch:"base_amount"`
	QuoteAmount           float64 `avro:"quote_amount" parquet:"quote_amount" ch:"quote_amount"`
	IsInnerInstruction    bool    `avro:"is_inner_instruction" parquet:"is_inner_instruction" ch:"is_inner_instruction"`
	InstructionIndex      int32   `avro:"instruction_index" parquet:"instruction_index" ch:"instruction_index"`
	InstructionType       string  `avro:"instruction_type" parquet:"instruction_type" ch:"instruction_type"`
	InnerInstructionIndex int32   `avro:"inner_instruction_index" parquet:"inner_instruction_index" ch:"inner_instruction_index"`
	OuterProgram          string  `avro:"outer_program" parquet:"outer_program" ch:"outer_program"`
	InnerProgram          string  `avro:"inner_program" parquet:"inner_program" ch:"inner_program"`
	TxnFeeLamports        int64   `avro:"txn_fee_lamports" parquet:"txn_fee_lamports" ch:"txn_fee_lamports"`
	SignerLamportsChange  int64   `avro:"signer_lamports_change" parquet:"signer_lamports_change" ch:"signer_lamports_change"`
}

// Columns lists the stored column names in schema order.
var Columns = []string{
	"block_date", "block_time", "block_slot", "signature", "tx_id", "signer",
	"pool_address", "base_mint", "quote_mint", "base_vault", "quote_vault",
	"base_amount", "quote_amount", "is_inner_instruction", "instruction_index",
	"instruction_type", "inner_instruction_index", "outer_program",
	"inner_program", "txn_fee_lamports", "signer_lamports_change",
}

func NewRow(t trades.TradeData) Row {
	return Row{
		BlockDate:             t.BlockDate,
		BlockTime:             t.BlockTime,
		BlockSlot:             int64(t.BlockSlot),
		Signature:             t.Signature,
		TxID:                  t.TxID,
		Signer:                t.Signer,
		PoolAddress:           t.PoolAddress,
		BaseMint:              t.BaseMint,
		QuoteMint:             t.QuoteMint,
		BaseVault:             t.BaseVault,
		QuoteVault:            t.QuoteVault,
		BaseAmount:            t.BaseAmount,
		QuoteAmount:           t.QuoteAmount,
		IsInnerInstruction:    t.IsInnerInstruction,
		InstructionIndex:      int32(t.InstructionIndex),
		InstructionType:       t.InstructionType,
		InnerInstructionIndex: int32(t.InnerInstructionIndex),
		OuterProgram:          t.OuterProgram,
		InnerProgram:          t.InnerProgram,
		TxnFeeLamports:        int64(t.TxnFeeLamports),
		SignerLamportsChange:  t.SignerLamportsChange,
	}
}

func newRows(batch trades.Batch) []Row {
	rows := make([]Row, 0, len(batch.Trades))
	for _, t := range batch.Trades {
		rows = append(rows, NewRow(t))
	}
	return rows
}
