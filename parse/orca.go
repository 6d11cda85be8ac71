package parse

import ag_binary "github.com/gagliardetto/binary"

// Anchor instruction discriminators shared by several programs.
var (
	ANCHOR_SWAP       = ag_binary.TypeID([8]byte{248, 198, 158, 145, 225, 117, 135, 200})
	ANCHOR_SWAP_V2    = ag_binary.TypeID([8]byte{43, 4, 237, 11, 26, 201, 30, 98})
	ORCA_TWO_HOP_SWAP = ag_binary.TypeID([8]byte{195, 96, 237, 108, 68, 162, 219, 230})
)

var orcaWhirlpoolProgram = &Program{
	ID:   ORCA_PROGRAM_ID,
	Type: ORCA,
	Variants: []Variant{
		{
			// 0 token program, 1 token authority, 2 whirlpool, 3 owner account A,
			// 4 vault A, 5 owner account B, 6 vault B, 7-9 tick arrays, 10 oracle
			Name:          "Swap",
			Discriminator: ANCHOR_SWAP[:],
			Layouts:       []Layout{{HopLayout: HopLayout{Amm: 2, VaultA: 4, VaultB: 6}}},
		},
		{
			// 0-1 token programs A/B, 2 memo program, 3 token authority, 4 whirlpool,
			// 5-6 mints A/B, 7 owner account A, 8 vault A, 9 owner account B, 10 vault B
			Name:          "SwapV2",
			Discriminator: ANCHOR_SWAP_V2[:],
			Layouts:       []Layout{{HopLayout: HopLayout{Amm: 4, VaultA: 8, VaultB: 10}}},
		},
		{
			// 0 token program, 1 token authority, 2 whirlpool one, 3 whirlpool two,
			// 4 owner one A, 5 vault one A, 6 owner one B, 7 vault one B,
			// 8 owner two A, 9 vault two A, 10 owner two B, 11 vault two B
			Name:          "TwoHopSwap",
			Discriminator: ORCA_TWO_HOP_SWAP[:],
			Layouts: []Layout{{
				HopLayout: HopLayout{Amm: 2, VaultA: 5, VaultB: 7},
				Hop2:      &HopLayout{Amm: 3, VaultA: 9, VaultB: 11},
			}},
		},
	},
}
