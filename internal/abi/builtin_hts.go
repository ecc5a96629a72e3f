package abi

// HTSAddress is the Hedera Token Service system contract (0.0.359).
const HTSAddress = "0x0000000000000000000000000000000000000167"

// hts covers the token-service precompile calls a wallet needs. Every call
// returns a HAPI response code; 22 is SUCCESS.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "hts",
		Name:        "Hedera Token Service",
		Description: "HTS system contract at 0.0.359 (association, transfers, mint, burn).",
		Address:     HTSAddress,
		Signatures: []string{
			"function associateToken(address account, address token) returns (int64 responseCode)",
			"function associateTokens(address account, address[] tokens) returns (int64 responseCode)",
			"function dissociateToken(address account, address token) returns (int64 responseCode)",
			"function dissociateTokens(address account, address[] tokens) returns (int64 responseCode)",
			"function transferToken(address token, address sender, address recipient, int64 amount) returns (int64 responseCode)",
			"function transferTokens(address token, address[] accountIds, int64[] amounts) returns (int64 responseCode)",
			"function transferNFT(address token, address sender, address recipient, int64 serialNumber) returns (int64 responseCode)",
			"function mintToken(address token, int64 amount, bytes[] metadata) returns (int64 responseCode, int64 newTotalSupply, int64[] serialNumbers)",
			"function burnToken(address token, int64 amount, int64[] serialNumbers) returns (int64 responseCode, int64 newTotalSupply)",
			"function isToken(address token) returns (int64 responseCode, bool isToken)",
			"event CallResponseEvent(bool, bytes)",
		},
	})
}
