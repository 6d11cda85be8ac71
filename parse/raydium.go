package parse

import ag_binary "github.com/gagliardetto/binary"

// Raydium v4 uses single-byte instruction tags.
const (
	RAYDIUM_V4_SWAP_BASE_IN  byte = 9
	RAYDIUM_V4_SWAP_BASE_OUT byte = 11
)

var (
	RAYDIUM_CPMM_SWAP_BASE_INPUT  = ag_binary.TypeID([8]byte{143, 190, 90, 218, 196, 30, 51, 222})
	RAYDIUM_CPMM_SWAP_BASE_OUTPUT = ag_binary.TypeID([8]byte{55, 217, 98, 86, 163, 74, 180, 173})
)

// Raydium v4 swap accounts start with: token program, amm, amm authority,
// amm open orders, [amm target orders], pool coin vault, pool pc vault,
// serum program. The bracketed account only exists in the 18-account form
// and shifts every later position by one.
var raydiumV4Layouts = []Layout{
	{Accounts: 17, HopLayout: HopLayout{Amm: 1, VaultA: 4, VaultB: 5}},
	{Accounts: 18, HopLayout: HopLayout{Amm: 1, VaultA: 5, VaultB: 6}},
}

var raydiumV4Program = &Program{
	ID:   RAYDIUM_V4_PROGRAM_ID,
	Type: RAYDIUM_V4,
	Variants: []Variant{
		{
			Name:          "SwapBaseIn",
			Discriminator: []byte{RAYDIUM_V4_SWAP_BASE_IN},
			Layouts:       raydiumV4Layouts,
			Anchor:        SERUM_PROGRAM_ID,
		},
		{
			Name:          "SwapBaseOut",
			Discriminator: []byte{RAYDIUM_V4_SWAP_BASE_OUT},
			Layouts:       raydiumV4Layouts,
			Anchor:        SERUM_PROGRAM_ID,
		},
	},
}

// Raydium CPMM swap accounts: 0 payer, 1 authority, 2 amm config, 3 pool state,
// 4 input token account, 5 output token account, 6 input vault, 7 output vault,
// 8-9 token programs, 10-11 mints, 12 observation state.
var raydiumCPMMLayouts = []Layout{
	{HopLayout: HopLayout{Amm: 3, VaultA: 6, VaultB: 7}},
}

var raydiumCPMMProgram = &Program{
	ID:   RAYDIUM_CPMM_PROGRAM_ID,
	Type: RAYDIUM_CPMM,
	Variants: []Variant{
		{Name: "SwapBaseInput", Discriminator: RAYDIUM_CPMM_SWAP_BASE_INPUT[:], Layouts: raydiumCPMMLayouts},
		{Name: "SwapBaseOutput", Discriminator: RAYDIUM_CPMM_SWAP_BASE_OUTPUT[:], Layouts: raydiumCPMMLayouts},
	},
}

// Raydium CLMM swap and swapV2 share their leading accounts: 0 payer,
// 1 amm config, 2 pool state, 3 input token account, 4 output token account,
// 5 input vault, 6 output vault.
var raydiumCLMMLayouts = []Layout{
	{HopLayout: HopLayout{Amm: 2, VaultA: 5, VaultB: 6}},
}

var raydiumCLMMProgram = &Program{
	ID:   RAYDIUM_CONCENTRATED_LIQUIDITY_PROGRAM_ID,
	Type: RAYDIUM_CLMM,
	Variants: []Variant{
		{Name: "Swap", Discriminator: ANCHOR_SWAP[:], Layouts: raydiumCLMMLayouts},
		{Name: "SwapV2", Discriminator: ANCHOR_SWAP_V2[:], Layouts: raydiumCLMMLayouts},
	},
}
