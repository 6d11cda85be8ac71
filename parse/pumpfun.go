package parse

import ag_binary "github.com/gagliardetto/binary"

// Bonding-curve programs share Anchor's buy/sell instruction names.
var (
	BONDING_CURVE_BUY_INSTRUCTION  = ag_binary.TypeID([8]byte{102, 6, 61, 18, 1, 218, 235, 234})
	BONDING_CURVE_SELL_INSTRUCTION = ag_binary.TypeID([8]byte{51, 230, 133, 164, 1, 127, 131, 173})
)

// Pump.fun trade accounts: 0 global, 1 fee recipient, 2 mint, 3 bonding curve,
// 4 associated bonding curve, 5 associated user, 6 user.
// The bonding curve holds the SOL side as lamports; the associated bonding
// curve holds the token side.
var pumpFunLayouts = []Layout{
	{HopLayout: HopLayout{Amm: 3, VaultA: 4, VaultB: 3}},
}

var pumpFunProgram = &Program{
	ID:             PUMP_FUN_PROGRAM_ID,
	Type:           PUMP_FUN,
	NativeWrapping: true,
	Variants: []Variant{
		{Name: "Buy", Discriminator: BONDING_CURVE_BUY_INSTRUCTION[:], Layouts: pumpFunLayouts},
		{Name: "Sell", Discriminator: BONDING_CURVE_SELL_INSTRUCTION[:], Layouts: pumpFunLayouts},
	},
}

// Moonshot trade accounts: 0 sender, 1 sender token account, 2 curve account,
// 3 curve token account, 4 dex fee, 5 helio fee, 6 mint, 7 config,
// 8 token program, 9 associated token program, 10 system program.
var moonshotLayouts = []Layout{
	{Accounts: 11, HopLayout: HopLayout{Amm: 2, VaultA: 3, VaultB: 2}},
}

var moonshotProgram = &Program{
	ID:             MOONSHOT_PROGRAM_ID,
	Type:           MOONSHOT,
	NativeWrapping: true,
	Variants: []Variant{
		{Name: "Buy", Discriminator: BONDING_CURVE_BUY_INSTRUCTION[:], Layouts: moonshotLayouts},
		{Name: "Sell", Discriminator: BONDING_CURVE_SELL_INSTRUCTION[:], Layouts: moonshotLayouts},
	},
}
