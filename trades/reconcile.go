package trades

import (
	"errors"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/solanatrades-go/parse"
)

const lamportsPerSol = 1e9

// ErrMintNotFound is returned when a vault has no post-transaction token
// balance and is not a native vault.
var ErrMintNotFound = errors.New("vault mint not found in post token balances")

// Reconciler computes how much moved through a vault within one transaction.
type Reconciler struct {
	accounts     Accounts
	inner        []rpc.InnerInstruction
	pre          Balances
	post         Balances
	preLamports  []uint64
	postLamports []uint64
	registry     *parse.Registry
}

func NewReconciler(accounts Accounts, meta *rpc.TransactionMeta, pre, post Balances, registry *parse.Registry) *Reconciler {
	return &Reconciler{
		accounts:     accounts,
		inner:        meta.InnerInstructions,
		pre:          pre,
		post:         post,
		preLamports:  meta.PreBalances,
		postLamports: meta.PostBalances,
		registry:     registry,
	}
}

// MintOf returns the mint held by vault. Vaults of native-wrapping programs
// without a token balance are native accounts and report the wrapped SOL
// mint with native set.
func (r *Reconciler) MintOf(vault, program solana.PublicKey) (mint solana.PublicKey, native bool, err error) {
	if tb, ok := r.post.Find(vault); ok {
		return tb.Mint, false, nil
	}
	if r.registry.IsNativeWrapping(program) {
		return solana.SolMint, true, nil
	}
	return solana.PublicKey{}, false, ErrMintNotFound
}

// AmountFor returns the amount for vault as seen by the trader: positive
// when the vault paid out, negative when it received. It is the negation of
// VaultFlow.
func (r *Reconciler) AmountFor(vault solana.PublicKey, anchor int, program solana.PublicKey) (float64, error) {
	flow, err := r.VaultFlow(vault, anchor, program)
	if err != nil || flow == 0 {
		return 0, err
	}
	return -flow, nil
}

// VaultFlow returns the signed, decimal-scaled amount that moved through
// vault: negative for outflow, positive for inflow. anchor is the position of
// the swap among nested instructions; when positive only later nested
// instructions are considered. Zero means no movement could be attributed.
func (r *Reconciler) VaultFlow(vault solana.PublicKey, anchor int, program solana.PublicKey) (float64, error) {
	mint, native, err := r.MintOf(vault, program)
	if err != nil {
		return 0, err
	}

	// Only lamport vaults of native-wrapping programs skip the token scan;
	// their SPL vaults (the Pump.fun associated bonding curve) still use it.
	if native {
		return r.nativeFlow(vault, anchor), nil
	}

	// Wrapped SOL is read from the signer's lamport ledger.
	if mint.Equals(solana.SolMint) && !r.registry.IsNativeWrapping(program) {
		return -float64(r.signerLamportsChange()) / lamportsPerSol, nil
	}

	raw, ok := r.scanTransfers(solana.TokenProgramID, vault, anchor)
	if !ok {
		raw, ok = r.scanTransfers(solana.Token2022ProgramID, vault, anchor)
	}
	if !ok {
		return 0, nil
	}

	tb, _ := r.post.Find(vault)
	return raw / math.Pow10(int(tb.Decimals)), nil
}

// scanTransfers walks every nested instruction of every group and returns the
// first transfer of tokenProgram that touches vault.
func (r *Reconciler) scanTransfers(tokenProgram, vault solana.PublicKey, anchor int) (float64, bool) {
	return r.scan(tokenProgram, vault, anchor, r.accounts.tokenTransfer)
}

func (r *Reconciler) scan(program, vault solana.PublicKey, anchor int, decode func(solana.CompiledInstruction) (transfer, bool)) (float64, bool) {
	for _, group := range r.inner {
		for pos, instr := range group.Instructions {
			if anchor > 0 && pos <= anchor {
				continue
			}
			progID, ok := r.accounts.Get(instr.ProgramIDIndex)
			if !ok || !progID.Equals(program) {
				continue
			}
			t, ok := decode(instr)
			if !ok {
				continue
			}
			if flow, ok := t.flowFor(vault); ok {
				return flow, true
			}
		}
	}
	return 0, false
}

// nativeFlow covers lamport vaults of native-wrapping programs: a system
// transfer if there is one, otherwise the vault's lamport delta.
func (r *Reconciler) nativeFlow(vault solana.PublicKey, anchor int) float64 {
	if lamports, ok := r.scan(solana.SystemProgramID, vault, anchor, r.accounts.systemTransfer); ok {
		return lamports / lamportsPerSol
	}
	idx := r.accounts.Index(vault)
	if idx < 0 || idx >= len(r.preLamports) || idx >= len(r.postLamports) {
		return 0
	}
	return (float64(r.postLamports[idx]) - float64(r.preLamports[idx])) / lamportsPerSol
}

func (r *Reconciler) signerLamportsChange() int64 {
	return lamportsChange(r.preLamports, r.postLamports)
}

func lamportsChange(pre, post []uint64) int64 {
	if len(pre) == 0 || len(post) == 0 {
		return 0
	}
	return int64(post[0]) - int64(pre[0])
}
