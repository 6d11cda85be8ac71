package parse

import ag_binary "github.com/gagliardetto/binary"

var (
	METEORA_DLMM_SWAP_2                   = ag_binary.TypeID([8]byte{65, 75, 63, 76, 235, 91, 91, 136})
	METEORA_DLMM_SWAP_EXACT_OUT           = ag_binary.TypeID([8]byte{250, 73, 101, 33, 38, 207, 75, 184})
	METEORA_DLMM_SWAP_EXACT_OUT_2         = ag_binary.TypeID([8]byte{43, 215, 247, 132, 137, 60, 243, 81})
	METEORA_DLMM_SWAP_WITH_PRICE_IMPACT_2 = ag_binary.TypeID([8]byte{74, 98, 192, 214, 177, 51, 75, 51})
)

// Meteora pools swap accounts: 0 pool, 1 user source, 2 user destination,
// 3 a vault, 4 b vault, 5 a token vault, 6 b token vault, ...
// The pool's token vaults are the accounts whose balances move.
var meteoraPoolsProgram = &Program{
	ID:   METEORA_POOLS_PROGRAM_ID,
	Type: METEORA_POOLS,
	Variants: []Variant{
		{
			Name:          "Swap",
			Discriminator: ANCHOR_SWAP[:],
			Layouts:       []Layout{{HopLayout: HopLayout{Amm: 0, VaultA: 5, VaultB: 6}}},
		},
	},
}

// Every DLMM swap variant shares its first eight accounts: 0 lb pair,
// 1 bin array bitmap extension, 2 reserve x, 3 reserve y, 4 user token in,
// 5 user token out, 6 token x mint, 7 token y mint.
var meteoraDLMMLayouts = []Layout{
	{HopLayout: HopLayout{Amm: 0, VaultA: 2, VaultB: 3}},
}

var meteoraDLMMProgram = &Program{
	ID:   METEORA_PROGRAM_ID,
	Type: METEORA_DLMM,
	Variants: []Variant{
		{Name: "Swap", Discriminator: ANCHOR_SWAP[:], Layouts: meteoraDLMMLayouts},
		{Name: "Swap2", Discriminator: METEORA_DLMM_SWAP_2[:], Layouts: meteoraDLMMLayouts},
		{Name: "SwapExactOut", Discriminator: METEORA_DLMM_SWAP_EXACT_OUT[:], Layouts: meteoraDLMMLayouts},
		{Name: "SwapExactOut2", Discriminator: METEORA_DLMM_SWAP_EXACT_OUT_2[:], Layouts: meteoraDLMMLayouts},
		{Name: "SwapWithPriceImpact2", Discriminator: METEORA_DLMM_SWAP_WITH_PRICE_IMPACT_2[:], Layouts: meteoraDLMMLayouts},
	},
}
