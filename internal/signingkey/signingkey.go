// Package signingkey holds private keys on either of the two curves Hedera
// accounts use: secp256k1 ("ECDSA") and Ed25519.
package signingkey

import (
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Curve names a signature scheme.
type Curve string

const (
	Secp256k1 Curve = "secp256k1"
	Ed25519   Curve = "ed25519"
)

// DER prefixes Hedera tooling puts in front of raw private keys.
const (
	ed25519DERPrefix   = "302e020100300506032b657004220420"
	secp256k1DERPrefix = "3030020100300706052b8104000a04220420"
)

// ParseCurve accepts "secp256k1", "ecdsa", "ed25519" in any case. The empty
// string is secp256k1.
func ParseCurve(s string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "secp256k1", "ecdsa":
		return Secp256k1, nil
	case "ed25519":
		return Ed25519, nil
	}
	return "", errs.Argument("unknown curve", "curve", s)
}

func (c Curve) String() string { return string(c) }

// SigningKey is a private key on one curve.
type SigningKey interface {
	Curve() Curve
	PrivateKey() []byte
	// PublicKey is 65 bytes uncompressed for secp256k1, 32 bytes for Ed25519.
	PublicKey() []byte
	// CompressedPublicKey is 33 bytes for secp256k1; Ed25519 keys are
	// already compressed.
	CompressedPublicKey() []byte
	SignDigest(digest []byte) (Signature, error)
	ComputeSharedSecret(otherKey []byte) ([]byte, error)
	SignMessage(message []byte) (Signature, error)
	// AddPoint adds other to this key's public point.
	AddPoint(other []byte) ([]byte, error)
}

// New builds a key from raw private key bytes.
func New(curve Curve, raw []byte) (SigningKey, error) {
	switch curve {
	case Secp256k1, "":
		return newSecp256k1(raw)
	case Ed25519:
		return newEd25519(raw)
	}
	return nil, errs.Argument("unknown curve", "curve", string(curve))
}

// FromHex parses a hex private key, with or without 0x. DER-wrapped keys
// are unwrapped.
func FromHex(s string, curve Curve) (SigningKey, error) {
	h := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X"))
	switch curve {
	case Ed25519:
		h = strings.TrimPrefix(h, ed25519DERPrefix)
	case Secp256k1, "":
		h = strings.TrimPrefix(h, secp256k1DERPrefix)
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, errs.Argument("invalid private key", "privateKey", "[REDACTED]")
	}
	return New(curve, raw)
}

// Generate creates a random key reading entropy from r.
func Generate(curve Curve, r io.Reader) (SigningKey, error) {
	switch curve {
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(r)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeUnsupportedOperation, "reading entropy")
		}
		return &Ed25519Key{priv: priv}, nil
	case Secp256k1, "":
		buf := make([]byte, 32)
		for {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, errs.Wrap(err, errs.CodeUnsupportedOperation, "reading entropy")
			}
			// retry the negligible share of values outside [1, n)
			if k, err := newSecp256k1(buf); err == nil {
				return k, nil
			}
		}
	}
	return nil, errs.Argument("unknown curve", "curve", string(curve))
}

// ComputePublicKey returns the public key for a private or public key.
// For secp256k1, 32 bytes is a private key and 33 or 65 bytes a public key.
// For Ed25519, 32 bytes is a private seed and 64 bytes a full private key.
func ComputePublicKey(key []byte, compressed bool, curve Curve) ([]byte, error) {
	if curve == Ed25519 {
		switch len(key) {
		case ed25519.SeedSize, ed25519.PrivateKeySize:
			k, err := newEd25519(key)
			if err != nil {
				return nil, err
			}
			return k.PublicKey(), nil
		}
		return nil, errs.Argument("invalid public or private key", "key", "[REDACTED]")
	}

	switch len(key) {
	case 32:
		k, err := newSecp256k1(key)
		if err != nil {
			return nil, err
		}
		if compressed {
			return k.CompressedPublicKey(), nil
		}
		return k.PublicKey(), nil
	case 33, 65:
		pub, err := parseSecp256k1Pub(key)
		if err != nil {
			return nil, err
		}
		if compressed {
			return crypto.CompressPubkey(pub), nil
		}
		return crypto.FromECDSAPub(pub), nil
	}
	return nil, errs.Argument("invalid public or private key", "key", "[REDACTED]")
}

// ComputeAddress returns the EVM address of a secp256k1 public or private key.
func ComputeAddress(key []byte) (common.Address, error) {
	pub, err := ComputePublicKey(key, false, Secp256k1)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(crypto.Keccak256(pub[1:])[12:]), nil
}

// RecoverPublicKey returns the uncompressed secp256k1 public key that
// produced sig over digest. sig is r ‖ s ‖ v with v in {0, 1, 27, 28}.
func RecoverPublicKey(digest, sig []byte) ([]byte, error) {
	s, err := SplitSignature(sig)
	if err != nil {
		return nil, err
	}
	pub, err := crypto.Ecrecover(digest, s.recoverable())
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid signature", "signature", hex.EncodeToString(sig))
	}
	return pub, nil
}
