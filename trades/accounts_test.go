package trades

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/solanatrades-go/parse"
)

func TestResolveAccountOrder(t *testing.T) {
	static := solana.PublicKeySlice{testKey(0), testKey(1), testKey(2)}
	writable := solana.PublicKeySlice{testKey(10), testKey(11)}
	readonly := solana.PublicKeySlice{testKey(20)}

	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature(1)},
		Message:    solana.Message{AccountKeys: static},
	}
	meta := &rpc.TransactionMeta{
		LoadedAddresses: rpc.LoadedAddresses{Writable: writable, ReadOnly: readonly},
	}

	accounts, _, _ := Resolve(tx, meta)
	require.Len(t, accounts, 6)
	assert.Equal(t, Accounts{testKey(0), testKey(1), testKey(2), testKey(10), testKey(11), testKey(20)}, accounts)

	// Resolving must not alias the message's key slice.
	accounts[0] = testKey(99)
	assert.Equal(t, testKey(0), tx.Message.AccountKeys[0])

	_, ok := accounts.Get(6)
	assert.False(t, ok)
	assert.Equal(t, 4, accounts.Index(testKey(11)))
	assert.Equal(t, -1, accounts.Index(testKey(50)))
}

func TestResolveBalances(t *testing.T) {
	keys := solana.PublicKeySlice{testKey(0), testKey(1), testKey(2)}
	owner := testKey(0)
	tx := &solana.Transaction{
		Signatures: []solana.Signature{testSignature(1)},
		Message:    solana.Message{AccountKeys: keys},
	}
	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			mockTokenBalance(1, testBaseMint, owner, "100", 6),
		},
		PostTokenBalances: []rpc.TokenBalance{
			mockTokenBalance(1, testBaseMint, owner, "250", 6),
			mockTokenBalance(40, testQuoteMint, owner, "1", 9), // index beyond the account list
			{AccountIndex: 2, Mint: testQuoteMint},             // no owner, no amount
		},
	}

	_, pre, post := Resolve(tx, meta)
	require.Len(t, pre, 1)
	require.Len(t, post, 3)

	tb, ok := post.Find(testKey(1))
	require.True(t, ok)
	assert.Equal(t, testBaseMint, tb.Mint)
	assert.Equal(t, owner, tb.Owner)
	assert.Equal(t, uint8(6), tb.Decimals)
	assert.Equal(t, "250", tb.Amount)

	assert.True(t, post[1].Address.IsZero(), "unresolvable index keeps an empty address")
	_, ok = post.Find(solana.PublicKey{})
	assert.False(t, ok, "empty addresses never match")

	tb, ok = post.Find(testKey(2))
	require.True(t, ok)
	assert.True(t, tb.Owner.IsZero())
	assert.Equal(t, uint8(0), tb.Decimals)
}

func TestAccountsInputs(t *testing.T) {
	accounts := Accounts{testKey(0), testKey(1), testKey(2)}

	inputs, err := accounts.Inputs([]uint16{2, 0})
	require.NoError(t, err)
	assert.Equal(t, solana.PublicKeySlice{testKey(2), testKey(0)}, inputs)

	_, err = accounts.Inputs([]uint16{1, 3})
	assert.ErrorIs(t, err, parse.ErrAccountIndex)
}
