package signingkey

import (
	"encoding/hex"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
)

// Signature is a split signature. For Ed25519, R and S are the two halves
// of the 64-byte signature and V is 0.
type Signature struct {
	R             common.Hash
	S             common.Hash
	V             int // 27 or 28 for secp256k1
	RecoveryParam int // 0 or 1
	curve         Curve
}

// Compact returns r ‖ s, the 64-byte form HAPI signature pairs carry.
func (s Signature) Compact() []byte {
	out := make([]byte, 0, 64)
	out = append(out, s.R[:]...)
	return append(out, s.S[:]...)
}

// Bytes returns r ‖ s ‖ v for secp256k1 and r ‖ s for Ed25519.
func (s Signature) Bytes() []byte {
	if s.curve == Ed25519 {
		return s.Compact()
	}
	return append(s.Compact(), byte(s.V))
}

// Hex is Bytes as 0x-prefixed hex.
func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s.Bytes())
}

func (s Signature) recoverable() []byte {
	return append(s.Compact(), byte(s.RecoveryParam))
}

// SplitSignature parses a 65-byte secp256k1 signature (v as 0/1 or 27/28)
// or a 64-byte EIP-2098 compact signature.
func SplitSignature(sig []byte) (Signature, error) {
	var s Signature
	s.curve = Secp256k1
	switch len(sig) {
	case 65:
		copy(s.R[:], sig[:32])
		copy(s.S[:], sig[32:64])
		v := int(sig[64])
		if v < 27 {
			if v > 1 {
				return Signature{}, errs.Argument("signature invalid v byte", "signature", hex.EncodeToString(sig))
			}
			v += 27
		}
		s.V = v
		s.RecoveryParam = 1 - v%2
	case 64:
		copy(s.R[:], sig[:32])
		copy(s.S[:], sig[32:64])
		// the top bit of s carries the y parity
		if s.S[0]&0x80 != 0 {
			s.RecoveryParam = 1
			s.S[0] &= 0x7f
		}
		s.V = 27 + s.RecoveryParam
	default:
		return Signature{}, errs.Argument("invalid signature string", "signature", hex.EncodeToString(sig))
	}
	if s.V != 27 && s.V != 28 {
		return Signature{}, errs.Argument("signature invalid v byte", "signature", hex.EncodeToString(sig))
	}
	return s, nil
}
