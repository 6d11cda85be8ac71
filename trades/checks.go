package trades

import (
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// SPL token instruction tags.
const (
	TOKEN_TRANSFER         byte = 3
	TOKEN_TRANSFER_CHECKED byte = 12
)

// SYSTEM_TRANSFER is the system program's transfer instruction index.
const SYSTEM_TRANSFER uint32 = 2

// transfer is a decoded token or lamport movement.
type transfer struct {
	source      solana.PublicKey
	destination solana.PublicKey
	amount      uint64
}

// tokenTransfer decodes an SPL Transfer or TransferChecked instruction.
// Transfer lists (source, destination, authority); TransferChecked lists
// (source, mint, destination, authority). Both carry a u64 amount after the tag.
func (a Accounts) tokenTransfer(instr solana.CompiledInstruction) (transfer, bool) {
	data := []byte(instr.Data)
	if len(data) < 9 {
		return transfer{}, false
	}

	var srcPos, dstPos int
	switch data[0] {
	case TOKEN_TRANSFER:
		srcPos, dstPos = 0, 1
	case TOKEN_TRANSFER_CHECKED:
		srcPos, dstPos = 0, 2
	default:
		return transfer{}, false
	}
	if len(instr.Accounts) <= dstPos {
		return transfer{}, false
	}

	source, ok := a.Get(instr.Accounts[srcPos])
	if !ok {
		return transfer{}, false
	}
	destination, ok := a.Get(instr.Accounts[dstPos])
	if !ok {
		return transfer{}, false
	}
	amount, err := ag_binary.NewBinDecoder(data[1:9]).ReadUint64(ag_binary.LE)
	if err != nil {
		return transfer{}, false
	}
	return transfer{source: source, destination: destination, amount: amount}, true
}

// systemTransfer decodes a system program Transfer: a u32 instruction index
// followed by u64 lamports, with accounts (from, to).
func (a Accounts) systemTransfer(instr solana.CompiledInstruction) (transfer, bool) {
	data := []byte(instr.Data)
	if len(data) < 12 || len(instr.Accounts) < 2 {
		return transfer{}, false
	}

	decoder := ag_binary.NewBinDecoder(data)
	kind, err := decoder.ReadUint32(ag_binary.LE)
	if err != nil || kind != SYSTEM_TRANSFER {
		return transfer{}, false
	}
	lamports, err := decoder.ReadUint64(ag_binary.LE)
	if err != nil {
		return transfer{}, false
	}

	source, ok := a.Get(instr.Accounts[0])
	if !ok {
		return transfer{}, false
	}
	destination, ok := a.Get(instr.Accounts[1])
	if !ok {
		return transfer{}, false
	}
	return transfer{source: source, destination: destination, amount: lamports}, true
}

// flowFor returns the signed movement of t for vault: negative when the
// vault is the source, positive when it is the destination.
func (t transfer) flowFor(vault solana.PublicKey) (float64, bool) {
	switch {
	case t.source.Equals(vault):
		return -float64(t.amount), true
	case t.destination.Equals(vault):
		return float64(t.amount), true
	}
	return 0, false
}
