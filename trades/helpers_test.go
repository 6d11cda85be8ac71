package trades

import (
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/parse"
)

// testKey returns a deterministic address that collides with no program id.
func testKey(i int) solana.PublicKey {
	var b [32]byte
	b[0] = byte(i + 1)
	b[1] = byte((i + 1) >> 8)
	b[31] = 0xCD
	return solana.PublicKeyFromBytes(b[:])
}

func testSignature(seed byte) solana.Signature {
	var sig solana.Signature
	for i := range sig {
		sig[i] = seed + byte(i)
	}
	return sig
}

// mockTokenBalance creates a rpc.TokenBalance for testing.
func mockTokenBalance(accountIndex uint16, mint, owner solana.PublicKey, amount string, decimals uint8) rpc.TokenBalance {
	ui := 0.0
	return rpc.TokenBalance{
		AccountIndex: accountIndex,
		Mint:         mint,
		Owner:        &owner,
		UiTokenAmount: &rpc.UiTokenAmount{
			Amount:         amount,
			Decimals:       decimals,
			UiAmount:       &ui,
			UiAmountString: amount,
		},
	}
}

func splTransferInstruction(tokenProgram, source, destination uint16, amount uint64) solana.CompiledInstruction {
	data := make([]byte, 9)
	data[0] = TOKEN_TRANSFER
	ag_binary.LE.PutUint64(data[1:], amount)
	return solana.CompiledInstruction{
		ProgramIDIndex: tokenProgram,
		Accounts:       []uint16{source, destination, 0},
		Data:           data,
	}
}

func splTransferCheckedInstruction(tokenProgram, source, mint, destination uint16, amount uint64, decimals uint8) solana.CompiledInstruction {
	data := make([]byte, 10)
	data[0] = TOKEN_TRANSFER_CHECKED
	ag_binary.LE.PutUint64(data[1:9], amount)
	data[9] = decimals
	return solana.CompiledInstruction{
		ProgramIDIndex: tokenProgram,
		Accounts:       []uint16{source, mint, destination, 0},
		Data:           data,
	}
}

func systemTransferInstruction(systemProgram, from, to uint16, lamports uint64) solana.CompiledInstruction {
	data := make([]byte, 12)
	ag_binary.LE.PutUint32(data[0:4], SYSTEM_TRANSFER)
	ag_binary.LE.PutUint64(data[4:], lamports)
	return solana.CompiledInstruction{
		ProgramIDIndex: systemProgram,
		Accounts:       []uint16{from, to},
		Data:           data,
	}
}

// swapData is a discriminator followed by two u64 arguments.
func swapData(disc []byte) []byte {
	return append(append([]byte{}, disc...), make([]byte, 16)...)
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel) // Keep test output clean unless debugging
	return log
}

// Account indices of the raydium fixture.
const (
	idxSigner       = 0
	idxTokenProgram = 1
	idxRaydium      = 2
	idxJupiter      = 3
	idxSystem       = 4
	idxUserSource   = 5
	idxUserDest     = 6
	idxSwapInputs   = 7 // 18 raydium inputs follow
	idxAmm          = idxSwapInputs + 1
	idxVaultA       = idxSwapInputs + 5
	idxVaultB       = idxSwapInputs + 6
	idxCount        = idxSwapInputs + 18
)

var (
	testBaseMint  = testKey(200)
	testQuoteMint = testKey(201)
)

// raydiumFixture is a transaction holding the account set of an 18-account
// Raydium v4 swap. Tests add the instructions they need.
type raydiumFixture struct {
	keys   solana.PublicKeySlice
	instrs []solana.CompiledInstruction
	meta   *rpc.TransactionMeta
}

func newRaydiumFixture() *raydiumFixture {
	keys := make(solana.PublicKeySlice, idxCount)
	for i := range keys {
		keys[i] = testKey(i)
	}
	keys[idxTokenProgram] = solana.TokenProgramID
	keys[idxRaydium] = parse.RAYDIUM_V4_PROGRAM_ID
	keys[idxJupiter] = parse.JUPITER_PROGRAM_ID
	keys[idxSystem] = solana.SystemProgramID

	preLamports := make([]uint64, idxCount)
	postLamports := make([]uint64, idxCount)
	preLamports[idxSigner] = 10_000_000_000
	postLamports[idxSigner] = 9_999_995_000

	owner := keys[idxSigner]
	return &raydiumFixture{
		keys: keys,
		meta: &rpc.TransactionMeta{
			Fee:          5000,
			PreBalances:  preLamports,
			PostBalances: postLamports,
			PreTokenBalances: []rpc.TokenBalance{
				mockTokenBalance(idxVaultA, testBaseMint, keys[idxAmm], "5000000000", 6),
				mockTokenBalance(idxVaultB, testQuoteMint, keys[idxAmm], "9000000000000", 9),
			},
			PostTokenBalances: []rpc.TokenBalance{
				mockTokenBalance(idxVaultA, testBaseMint, keys[idxAmm], "5001000000", 6),
				mockTokenBalance(idxVaultB, testQuoteMint, keys[idxAmm], "8998000000000", 9),
				mockTokenBalance(idxUserSource, testBaseMint, owner, "0", 6),
				mockTokenBalance(idxUserDest, testQuoteMint, owner, "2000000000", 9),
			},
			LoadedAddresses: rpc.LoadedAddresses{},
			LogMessages:     []string{},
		},
	}
}

func (f *raydiumFixture) swapInstruction() solana.CompiledInstruction {
	accounts := make([]uint16, 18)
	for i := range accounts {
		accounts[i] = uint16(idxSwapInputs + i)
	}
	return solana.CompiledInstruction{
		ProgramIDIndex: idxRaydium,
		Accounts:       accounts,
		Data:           swapData([]byte{parse.RAYDIUM_V4_SWAP_BASE_IN}),
	}
}

// swapTransfers moves 1.0 base token into vault A and 2.0 quote tokens out
// of vault B.
func (f *raydiumFixture) swapTransfers() []solana.CompiledInstruction {
	return []solana.CompiledInstruction{
		splTransferInstruction(idxTokenProgram, idxUserSource, idxVaultA, 1_000_000),
		splTransferInstruction(idxTokenProgram, idxVaultB, idxUserDest, 2_000_000_000),
	}
}

func (f *raydiumFixture) tx() *solana.Transaction {
	return &solana.Transaction{
		Signatures: []solana.Signature{testSignature(1)},
		Message: solana.Message{
			Header:       solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys:  f.keys,
			Instructions: f.instrs,
		},
	}
}

func (f *raydiumFixture) reconciler() *Reconciler {
	accounts, pre, post := Resolve(f.tx(), f.meta)
	return NewReconciler(accounts, f.meta, pre, post, parse.DefaultRegistry())
}

// countingObserver records observer notifications.
type countingObserver struct {
	skipped map[string]int
	dropped map[string]int
	emitted map[parse.SwapType]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		skipped: make(map[string]int),
		dropped: make(map[string]int),
		emitted: make(map[parse.SwapType]int),
	}
}

func (o *countingObserver) TransactionSkipped(reason string) { o.skipped[reason]++ }

func (o *countingObserver) InstructionDropped(program parse.SwapType, reason string) {
	o.dropped[reason]++
}

func (o *countingObserver) TradeEmitted(program parse.SwapType) { o.emitted[program]++ }
