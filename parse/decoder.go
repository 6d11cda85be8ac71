package parse

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrAccountIndex is returned when an instruction references an account
	// position that is not present.
	ErrAccountIndex = errors.New("account index out of range")
	// ErrLayout is returned when a recognized instruction has an account list
	// that matches none of the known layouts for its variant.
	ErrLayout = errors.New("no account layout matches instruction")
)

// DecodeError reports an instruction of a known program and variant that
// could not be turned into a TradeInstruction.
type DecodeError struct {
	Program SwapType
	Variant string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s: %v", e.Program, e.Variant, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Hop is one pool leg of a swap: the pool address and the two vaults whose
// balances move.
type Hop struct {
	Amm    solana.PublicKey
	VaultA solana.PublicKey
	VaultB solana.PublicKey
}

// TradeInstruction is the normalized result of decoding a swap instruction.
type TradeInstruction struct {
	Program solana.PublicKey
	Name    string
	Hop
	// Hop2 is set for two-hop instructions.
	Hop2 *Hop
}

// Hops returns every leg of the instruction in execution order.
func (t *TradeInstruction) Hops() []Hop {
	if t.Hop2 == nil {
		return []Hop{t.Hop}
	}
	return []Hop{t.Hop, *t.Hop2}
}

// HopLayout holds input-account positions for one leg.
type HopLayout struct {
	Amm    int
	VaultA int
	VaultB int
}

// Layout maps an instruction's input accounts to a TradeInstruction.
type Layout struct {
	// Accounts is the exact number of input accounts this layout applies to.
	// Zero matches any count.
	Accounts int
	HopLayout
	Hop2 *HopLayout
}

// Variant is one instruction of a program, identified by its discriminator.
type Variant struct {
	Name          string
	Discriminator []byte
	Layouts       []Layout
	// Anchor, when non-zero, is an account that directly follows the two vaults
	// in top-level calls. It takes precedence over Layouts for those calls.
	Anchor solana.PublicKey
}

// Program is the decoding table of one exchange program.
type Program struct {
	ID   solana.PublicKey
	Type SwapType
	// NativeWrapping programs keep one side of the pool as raw lamports
	// instead of a wrapped-SOL token account.
	NativeWrapping bool
	Variants       []Variant
}

func (p *Program) variant(data []byte) *Variant {
	for i := range p.Variants {
		if bytes.HasPrefix(data, p.Variants[i].Discriminator) {
			return &p.Variants[i]
		}
	}
	return nil
}

// Registry dispatches instructions to program tables by program address.
type Registry struct {
	programs map[solana.PublicKey]*Program
}

func NewRegistry(programs ...*Program) *Registry {
	r := &Registry{programs: make(map[solana.PublicKey]*Program, len(programs))}
	for _, p := range programs {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the table for p.ID.
func (r *Registry) Register(p *Program) {
	r.programs[p.ID] = p
}

func (r *Registry) Lookup(program solana.PublicKey) (*Program, bool) {
	p, ok := r.programs[program]
	return p, ok
}

func (r *Registry) IsExchange(program solana.PublicKey) bool {
	_, ok := r.programs[program]
	return ok
}

func (r *Registry) IsNativeWrapping(program solana.PublicKey) bool {
	p, ok := r.programs[program]
	return ok && p.NativeWrapping
}

// Decode maps an instruction to a TradeInstruction. Unknown programs and
// unknown discriminators return (nil, nil). nested reports whether the
// instruction was invoked from another program, which disables anchor lookup.
func (r *Registry) Decode(program solana.PublicKey, data []byte, inputs solana.PublicKeySlice, nested bool) (*TradeInstruction, error) {
	p, ok := r.programs[program]
	if !ok {
		return nil, nil
	}
	v := p.variant(data)
	if v == nil {
		return nil, nil
	}

	if !nested && !v.Anchor.IsZero() {
		if ti, ok := decodeAnchored(p, v, inputs); ok {
			return ti, nil
		}
	}

	for _, l := range v.Layouts {
		if l.Accounts != 0 && l.Accounts != len(inputs) {
			continue
		}
		ti, err := l.apply(p, v, inputs)
		if err != nil {
			return nil, &DecodeError{Program: p.Type, Variant: v.Name, Err: err}
		}
		return ti, nil
	}
	return nil, &DecodeError{
		Program: p.Type,
		Variant: v.Name,
		Err:     fmt.Errorf("%w: %d accounts", ErrLayout, len(inputs)),
	}
}

func (l Layout) apply(p *Program, v *Variant, inputs solana.PublicKeySlice) (*TradeInstruction, error) {
	hop, err := l.HopLayout.resolve(inputs)
	if err != nil {
		return nil, err
	}
	ti := &TradeInstruction{Program: p.ID, Name: v.Name, Hop: hop}
	if l.Hop2 != nil {
		hop2, err := l.Hop2.resolve(inputs)
		if err != nil {
			return nil, err
		}
		ti.Hop2 = &hop2
	}
	return ti, nil
}

func (h HopLayout) resolve(inputs solana.PublicKeySlice) (Hop, error) {
	for _, i := range []int{h.Amm, h.VaultA, h.VaultB} {
		if i < 0 || i >= len(inputs) {
			return Hop{}, fmt.Errorf("%w: position %d of %d", ErrAccountIndex, i, len(inputs))
		}
	}
	return Hop{Amm: inputs[h.Amm], VaultA: inputs[h.VaultA], VaultB: inputs[h.VaultB]}, nil
}

// decodeAnchored locates the vaults as the two accounts preceding the anchor.
// The pool address comes from the first layout of the variant.
func decodeAnchored(p *Program, v *Variant, inputs solana.PublicKeySlice) (*TradeInstruction, bool) {
	if len(v.Layouts) == 0 {
		return nil, false
	}
	amm := v.Layouts[0].Amm
	for pos, key := range inputs {
		if !key.Equals(v.Anchor) {
			continue
		}
		if pos < 2 || amm >= len(inputs) {
			return nil, false
		}
		return &TradeInstruction{
			Program: p.ID,
			Name:    v.Name,
			Hop:     Hop{Amm: inputs[amm], VaultA: inputs[pos-2], VaultB: inputs[pos-1]},
		}, true
	}
	return nil, false
}

var defaultRegistry = NewRegistry(
	raydiumV4Program,
	raydiumCPMMProgram,
	raydiumCLMMProgram,
	meteoraPoolsProgram,
	meteoraDLMMProgram,
	orcaWhirlpoolProgram,
	pumpFunProgram,
	moonshotProgram,
)

// DefaultRegistry returns the registry of every supported exchange program.
// The returned value is shared and must not be modified.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
