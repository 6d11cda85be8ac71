package trades

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/parse"
)

var (
	ErrTxFailed             = errors.New("transaction failed")
	ErrMalformedEnvelope    = errors.New("malformed transaction envelope")
	ErrMissingTokenBalances = errors.New("missing pre/post token balances")
)

// Processor turns transactions into trades. It holds no per-transaction
// state and is safe for concurrent use.
type Processor struct {
	Registry *parse.Registry
	Observer Observer
	Log      *logrus.Logger
}

func NewProcessor(log *logrus.Logger) *Processor {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}
	return &Processor{
		Registry: parse.DefaultRegistry(),
		Observer: nopObserver{},
		Log:      log,
	}
}

// Parser holds the resolved state of a single transaction.
type Parser struct {
	txMeta         *rpc.TransactionMeta
	txInfo         *solana.Transaction
	allAccountKeys Accounts
	reconciler     *Reconciler
	slot           uint64
	blockTime      int64
	signature      string

	registry *parse.Registry
	observer Observer
	log      *logrus.Entry
}

// position locates an instruction within a transaction.
type position struct {
	outer  int
	inner  int
	nested bool
}

// ProcessTransaction decodes every swap of a transaction. Failed,
// malformed or balance-less transactions yield no trades and the reason as
// error; problems with a single instruction only drop that instruction.
func (p *Processor) ProcessTransaction(tx *solana.Transaction, meta *rpc.TransactionMeta, slot uint64, blockTime int64) ([]TradeData, error) {
	parser, err := p.newParser(tx, meta, slot, blockTime)
	if err != nil {
		p.observer().TransactionSkipped(skipReason(err))
		return nil, err
	}
	return parser.ParseTransaction(), nil
}

func (p *Processor) newParser(tx *solana.Transaction, meta *rpc.TransactionMeta, slot uint64, blockTime int64) (*Parser, error) {
	if tx == nil || meta == nil || len(tx.Signatures) == 0 {
		return nil, ErrMalformedEnvelope
	}
	if meta.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTxFailed, meta.Err)
	}
	if meta.PreTokenBalances == nil || meta.PostTokenBalances == nil {
		return nil, ErrMissingTokenBalances
	}

	registry := p.Registry
	if registry == nil {
		registry = parse.DefaultRegistry()
	}
	accounts, pre, post := Resolve(tx, meta)
	signature := tx.Signatures[0].String()

	return &Parser{
		txMeta:         meta,
		txInfo:         tx,
		allAccountKeys: accounts,
		reconciler:     NewReconciler(accounts, meta, pre, post, registry),
		slot:           slot,
		blockTime:      blockTime,
		signature:      signature,
		registry:       registry,
		observer:       p.observer(),
		log:            p.logger().WithFields(logrus.Fields{"slot": slot, "signature": signature}),
	}, nil
}

func (p *Processor) observer() Observer {
	if p.Observer == nil {
		return nopObserver{}
	}
	return p.Observer
}

func (p *Processor) logger() *logrus.Logger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrTxFailed):
		return SkipFailed
	case errors.Is(err, ErrMissingTokenBalances):
		return SkipMissingBalances
	default:
		return SkipMalformed
	}
}

// ParseTransaction runs the top-level instructions first, then every nested
// instruction. Swaps reached through an aggregator only appear in the nested
// pass, so no swap is decoded twice.
func (p *Parser) ParseTransaction() []TradeData {
	var trades []TradeData

	for i, instr := range p.txInfo.Message.Instructions {
		trades = append(trades, p.processInstruction(instr, position{outer: i})...)
	}

	for _, group := range p.txMeta.InnerInstructions {
		for j, instr := range group.Instructions {
			trades = append(trades, p.processInstruction(instr, position{outer: int(group.Index), inner: j, nested: true})...)
		}
	}

	return trades
}

func (p *Parser) processInstruction(instr solana.CompiledInstruction, pos position) (trades []TradeData) {
	progID, ok := p.allAccountKeys.Get(instr.ProgramIDIndex)
	if !ok {
		p.log.WithField("instruction", pos.outer).Debug("program index out of range")
		return nil
	}
	program, ok := p.registry.Lookup(progID)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{"program": program.Type, "instruction": pos.outer, "inner": pos.inner}).
				Errorf("panic decoding instruction: %v", r)
			p.observer.InstructionDropped(program.Type, DropPanic)
			trades = nil
		}
	}()

	inputs, err := p.allAccountKeys.Inputs(instr.Accounts)
	if err != nil {
		p.drop(program.Type, DropAccountIndex, pos, err)
		return nil
	}

	ti, err := p.registry.Decode(progID, instr.Data, inputs, pos.nested)
	if err != nil {
		reason := DropLayout
		if errors.Is(err, parse.ErrAccountIndex) {
			reason = DropAccountIndex
		}
		p.drop(program.Type, reason, pos, err)
		return nil
	}
	if ti == nil {
		p.observer.InstructionDropped(program.Type, DropUnknownVariant)
		return nil
	}

	anchor := 0
	if pos.nested {
		anchor = pos.inner
	}
	for _, hop := range ti.Hops() {
		trade, err := p.buildTradeData(ti, hop, pos, anchor)
		if err != nil {
			p.drop(program.Type, DropMintNotFound, pos, err)
			continue
		}
		p.observer.TradeEmitted(program.Type)
		trades = append(trades, trade)
	}
	return trades
}

func (p *Parser) drop(program parse.SwapType, reason string, pos position, err error) {
	p.log.WithFields(logrus.Fields{
		"program":     program,
		"instruction": pos.outer,
		"inner":       pos.inner,
		"nested":      pos.nested,
	}).Warnf("dropping instruction: %v", err)
	p.observer.InstructionDropped(program, reason)
}

func (p *Parser) buildTradeData(ti *parse.TradeInstruction, hop parse.Hop, pos position, anchor int) (TradeData, error) {
	baseMint, _, err := p.reconciler.MintOf(hop.VaultA, ti.Program)
	if err != nil {
		return TradeData{}, fmt.Errorf("base vault %s: %w", hop.VaultA, err)
	}
	quoteMint, _, err := p.reconciler.MintOf(hop.VaultB, ti.Program)
	if err != nil {
		return TradeData{}, fmt.Errorf("quote vault %s: %w", hop.VaultB, err)
	}
	baseAmount, err := p.reconciler.AmountFor(hop.VaultA, anchor, ti.Program)
	if err != nil {
		return TradeData{}, err
	}
	quoteAmount, err := p.reconciler.AmountFor(hop.VaultB, anchor, ti.Program)
	if err != nil {
		return TradeData{}, err
	}

	signer, _ := p.allAccountKeys.Get(0)
	trade := TradeData{
		BlockDate:            BlockDate(p.blockTime),
		BlockTime:            p.blockTime,
		BlockSlot:            p.slot,
		Signature:            p.signature,
		TxID:                 base58.Encode([]byte(p.signature)),
		Signer:               signer.String(),
		PoolAddress:          hop.Amm.String(),
		BaseMint:             baseMint.String(),
		QuoteMint:            quoteMint.String(),
		BaseVault:            hop.VaultA.String(),
		QuoteVault:           hop.VaultB.String(),
		BaseAmount:           baseAmount,
		QuoteAmount:          quoteAmount,
		IsInnerInstruction:   pos.nested,
		InstructionIndex:     uint32(pos.outer),
		InstructionType:      ti.Name,
		OuterProgram:         ti.Program.String(),
		TxnFeeLamports:       p.txMeta.Fee,
		SignerLamportsChange: lamportsChange(p.txMeta.PreBalances, p.txMeta.PostBalances),
	}
	if pos.nested {
		trade.InnerInstructionIndex = uint32(pos.inner)
		trade.InnerProgram = ti.Program.String()
		trade.OuterProgram = p.outerProgram(pos.outer)
	}
	return trade, nil
}

// outerProgram returns the program of the top-level instruction at index.
func (p *Parser) outerProgram(index int) string {
	if index < 0 || index >= len(p.txInfo.Message.Instructions) {
		return ""
	}
	progID, ok := p.allAccountKeys.Get(p.txInfo.Message.Instructions[index].ProgramIDIndex)
	if !ok {
		return ""
	}
	return progID.String()
}
