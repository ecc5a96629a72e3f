package abi

// erc20 is the standard fungible token interface (EIP-20). HTS fungible
// tokens expose it at their long-zero address.
//
// Function selectors:
//
//	name()              → 0x06fdde03
//	symbol()            → 0x95d89b41
//	decimals()          → 0x313ce567
//	totalSupply()       → 0x18160ddd
//	balanceOf(address)  → 0x70a08231
//	allowance(a,a)      → 0xdd62ed3e
//	transfer(a,u256)    → 0xa9059cbb
//	approve(a,u256)     → 0x095ea7b3
//	transferFrom(a,a,u) → 0x23b872dd
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "erc20",
		Name:        "ERC-20 Standard Token",
		Description: "Standard ERC-20 interface (EIP-20).",
		Signatures: []string{
			// ── Read ─────────────────────────────────────────────────────────
			"function name() view returns (string)",
			"function symbol() view returns (string)",
			"function decimals() view returns (uint8)",
			"function totalSupply() view returns (uint256)",
			"function balanceOf(address account) view returns (uint256)",
			"function allowance(address owner, address spender) view returns (uint256)",
			// ── Write ────────────────────────────────────────────────────────
			"function transfer(address to, uint256 value) returns (bool)",
			"function approve(address spender, uint256 value) returns (bool)",
			"function transferFrom(address from, address to, uint256 value) returns (bool)",
			// ── Events ───────────────────────────────────────────────────────
			"event Transfer(address indexed from, address indexed to, uint256 value)",
			"event Approval(address indexed owner, address indexed spender, uint256 value)",
		},
	})
}
