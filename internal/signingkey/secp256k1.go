package signingkey

import (
	"crypto/ecdsa"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
)

// Secp256k1Key is an ECDSA key on secp256k1.
type Secp256k1Key struct {
	priv *ecdsa.PrivateKey
}

func newSecp256k1(raw []byte) (*Secp256k1Key, error) {
	priv, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errs.Argument("invalid private key", "privateKey", "[REDACTED]")
	}
	return &Secp256k1Key{priv: priv}, nil
}

func (k *Secp256k1Key) Curve() Curve { return Secp256k1 }

func (k *Secp256k1Key) PrivateKey() []byte { return crypto.FromECDSA(k.priv) }

func (k *Secp256k1Key) PublicKey() []byte { return crypto.FromECDSAPub(&k.priv.PublicKey) }

func (k *Secp256k1Key) CompressedPublicKey() []byte { return crypto.CompressPubkey(&k.priv.PublicKey) }

// SignDigest signs a 32-byte digest (RFC 6979, low-s).
func (k *Secp256k1Key) SignDigest(digest []byte) (Signature, error) {
	if len(digest) != 32 {
		return Signature{}, errs.Argument("bad digest length", "digest", digest)
	}
	sig, err := crypto.Sign(digest, k.priv)
	if err != nil {
		return Signature{}, errs.Wrap(err, errs.CodeInvalidArgument, "signing digest")
	}
	return SplitSignature(sig)
}

// SignMessage signs the EIP-191 hash of message.
func (k *Secp256k1Key) SignMessage(message []byte) (Signature, error) {
	return k.SignDigest(HashMessage(message))
}

// ComputeSharedSecret returns the ECDH x coordinate shared with otherKey,
// which may be a public key (33 or 65 bytes) or a private key (32 bytes).
func (k *Secp256k1Key) ComputeSharedSecret(otherKey []byte) ([]byte, error) {
	pub, err := btcecPublic(otherKey)
	if err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(k.PrivateKey())
	return btcec.GenerateSharedSecret(priv, pub), nil
}

// AddPoint returns the compressed sum of this key's public point and other.
func (k *Secp256k1Key) AddPoint(other []byte) ([]byte, error) {
	a, err := btcec.ParsePubKey(k.CompressedPublicKey())
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key")
	}
	b, err := btcecPublic(other)
	if err != nil {
		return nil, err
	}
	var pa, pb, sum btcec.JacobianPoint
	a.AsJacobian(&pa)
	b.AsJacobian(&pb)
	btcec.AddNonConst(&pa, &pb, &sum)
	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y).SerializeCompressed(), nil
}

func btcecPublic(key []byte) (*btcec.PublicKey, error) {
	if len(key) == 32 {
		_, pub := btcec.PrivKeyFromBytes(key)
		return pub, nil
	}
	pub, err := btcec.ParsePubKey(key)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key", "key", key)
	}
	return pub, nil
}

func parseSecp256k1Pub(key []byte) (*ecdsa.PublicKey, error) {
	switch len(key) {
	case 33:
		pub, err := crypto.DecompressPubkey(key)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key", "key", key)
		}
		return pub, nil
	case 65:
		pub, err := crypto.UnmarshalPubkey(key)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid public key", "key", key)
		}
		return pub, nil
	}
	return nil, errs.Argument("invalid public key", "key", key)
}
