package trades

import "github.com/franco-bianco/solanatrades-go/parse"

// Drop reasons reported for recognized instructions that yield no trade.
const (
	DropAccountIndex   = "account_index"
	DropLayout         = "layout"
	DropUnknownVariant = "unknown_variant"
	DropMintNotFound   = "mint_not_found"
	DropPanic          = "panic"
)

// Skip reasons reported for transactions that yield no trades at all.
const (
	SkipFailed          = "failed"
	SkipMalformed       = "malformed"
	SkipMissingBalances = "missing_balances"
)

// Observer is notified of decoding outcomes. Recognized instructions that
// produce nothing are otherwise silent, so this is where they surface.
type Observer interface {
	TransactionSkipped(reason string)
	InstructionDropped(program parse.SwapType, reason string)
	TradeEmitted(program parse.SwapType)
}

type nopObserver struct{}

func (nopObserver) TransactionSkipped(string) {}
func (nopObserver) InstructionDropped(parse.SwapType, string) {}
func (nopObserver) TradeEmitted(parse.SwapType) {}
