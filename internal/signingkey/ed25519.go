package signingkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"golang.org/x/crypto/curve25519"
)

// Ed25519Key is an Ed25519 key. Only the 32-byte seed is exposed as the
// private key.
type Ed25519Key struct {
	priv ed25519.PrivateKey
}

func newEd25519(raw []byte) (*Ed25519Key, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return &Ed25519Key{priv: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, errs.Argument("invalid private key", "privateKey", "[REDACTED]")
		}
		return &Ed25519Key{priv: priv}, nil
	}
	return nil, errs.Argument("invalid private key", "privateKey", "[REDACTED]")
}

func (k *Ed25519Key) Curve() Curve { return Ed25519 }

func (k *Ed25519Key) PrivateKey() []byte {
	return append([]byte(nil), k.priv.Seed()...)
}

func (k *Ed25519Key) PublicKey() []byte {
	return append([]byte(nil), k.priv.Public().(ed25519.PublicKey)...)
}

func (k *Ed25519Key) CompressedPublicKey() []byte { return k.PublicKey() }

// SignDigest signs digest as an Ed25519 message; any length is accepted.
func (k *Ed25519Key) SignDigest(digest []byte) (Signature, error) {
	sig := ed25519.Sign(k.priv, digest)
	s := Signature{curve: Ed25519}
	copy(s.R[:], sig[:32])
	copy(s.S[:], sig[32:])
	return s, nil
}

// SignMessage is not defined for Ed25519 keys.
func (k *Ed25519Key) SignMessage([]byte) (Signature, error) {
	return Signature{}, errs.Unsupported("ED25519 keys do not support message signing", "signMessage")
}

// ComputeSharedSecret runs X25519 between this key and an Ed25519 public
// key, both mapped to their Montgomery form.
func (k *Ed25519Key) ComputeSharedSecret(otherKey []byte) ([]byte, error) {
	if len(otherKey) != ed25519.PublicKeySize {
		return nil, errs.Argument("invalid public key", "key", otherKey)
	}
	p, err := new(edwards25519.Point).SetBytes(otherKey)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key", "key", otherKey)
	}
	h := sha512.Sum512(k.priv.Seed())
	secret, err := curve25519.X25519(h[:32], p.BytesMontgomery())
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid shared secret")
	}
	return secret, nil
}

// AddPoint returns the encoded Edwards sum of this key's public point and other.
func (k *Ed25519Key) AddPoint(other []byte) ([]byte, error) {
	a, err := new(edwards25519.Point).SetBytes(k.PublicKey())
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key")
	}
	b, err := new(edwards25519.Point).SetBytes(other)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key", "key", other)
	}
	return new(edwards25519.Point).Add(a, b).Bytes(), nil
}

// Verify reports whether sig is a valid signature of message by pub.
func Verify(pub, message []byte, sig Signature) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, message, sig.Compact())
}
