package trades

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/solanatrades-go/parse"
)

// Accounts is the transaction-wide account list: static keys, then loaded
// writable addresses, then loaded readonly addresses. Instruction account
// indices resolve against this order.
type Accounts solana.PublicKeySlice

// Get returns the account at index i.
func (a Accounts) Get(i uint16) (solana.PublicKey, bool) {
	if int(i) >= len(a) {
		return solana.PublicKey{}, false
	}
	return a[i], true
}

// Inputs resolves an instruction's account indices to addresses.
func (a Accounts) Inputs(indices []uint16) (solana.PublicKeySlice, error) {
	inputs := make(solana.PublicKeySlice, len(indices))
	for pos, idx := range indices {
		key, ok := a.Get(idx)
		if !ok {
			return nil, fmt.Errorf("%w: input %d references account %d of %d", parse.ErrAccountIndex, pos, idx, len(a))
		}
		inputs[pos] = key
	}
	return inputs, nil
}

// Index returns the position of key, or -1.
func (a Accounts) Index(key solana.PublicKey) int {
	for i := range a {
		if a[i].Equals(key) {
			return i
		}
	}
	return -1
}

// TokenBalance is a token balance snapshot entry keyed by account address.
type TokenBalance struct {
	AccountIndex uint16
	// Address is zero when AccountIndex does not resolve.
	Address  solana.PublicKey
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Decimals uint8
	Amount   string
	UIAmount float64
}

type Balances []TokenBalance

// Find returns the entry for address. Unresolved entries never match.
func (b Balances) Find(address solana.PublicKey) (TokenBalance, bool) {
	if address.IsZero() {
		return TokenBalance{}, false
	}
	for _, tb := range b {
		if tb.Address.Equals(address) {
			return tb, true
		}
	}
	return TokenBalance{}, false
}

// Resolve builds the account list and the pre/post token balance snapshots
// of a transaction.
func Resolve(tx *solana.Transaction, meta *rpc.TransactionMeta) (Accounts, Balances, Balances) {
	accounts := make(Accounts, 0, len(tx.Message.AccountKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	accounts = append(accounts, tx.Message.AccountKeys...)
	accounts = append(accounts, meta.LoadedAddresses.Writable...)
	accounts = append(accounts, meta.LoadedAddresses.ReadOnly...)

	return accounts, resolveBalances(accounts, meta.PreTokenBalances), resolveBalances(accounts, meta.PostTokenBalances)
}

func resolveBalances(accounts Accounts, raw []rpc.TokenBalance) Balances {
	out := make(Balances, 0, len(raw))
	for _, balance := range raw {
		tb := TokenBalance{
			AccountIndex: balance.AccountIndex,
			Mint:         balance.Mint,
		}
		if address, ok := accounts.Get(balance.AccountIndex); ok {
			tb.Address = address
		}
		if balance.Owner != nil {
			tb.Owner = *balance.Owner
		}
		if ui := balance.UiTokenAmount; ui != nil {
			tb.Decimals = ui.Decimals
			tb.Amount = ui.Amount
			if ui.UiAmount != nil {
				tb.UIAmount = *ui.UiAmount
			}
		}
		out = append(out, tb)
	}
	return out
}
