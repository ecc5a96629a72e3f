package signingkey

import (
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/accounts"
)

// HashMessage returns the EIP-191 (personal_sign) digest of message:
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func HashMessage(message []byte) []byte {
	return accounts.TextHash(message)
}

// VerifyMessage recovers the uncompressed public key that signed message.
// The returned key, not an address, is the result; Ed25519 is unsupported.
func VerifyMessage(message, sig []byte, curve Curve) ([]byte, error) {
	if curve == Ed25519 {
		return nil, errs.Unsupported("ED25519 keys do not support message verification", "verifyMessage")
	}
	return RecoverPublicKey(HashMessage(message), sig)
}
