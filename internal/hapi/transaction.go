package hapi

import (
	"crypto/sha512"

	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/pkg/errors"
)

// SignaturePair binds a signature to the public key that made it.
type SignaturePair struct {
	PubKeyPrefix   []byte
	Ed25519        []byte
	ECDSASecp256k1 []byte
}

// Signature returns whichever signature is set.
func (p SignaturePair) Signature() []byte {
	if len(p.Ed25519) > 0 {
		return p.Ed25519
	}
	return p.ECDSASecp256k1
}

// NewSignaturePair keys a 64-byte signature by the full public key.
func NewSignaturePair(key Key, sig []byte) SignaturePair {
	p := SignaturePair{PubKeyPrefix: append([]byte(nil), key.Bytes()...)}
	if key.Curve() == signingkey.Ed25519 {
		p.Ed25519 = sig
	} else {
		p.ECDSASecp256k1 = sig
	}
	return p
}

// SignedTransaction pairs body bytes with their signature map.
type SignedTransaction struct {
	BodyBytes []byte
	SigMap    []SignaturePair
}

// Marshal encodes the signed transaction.
func (s *SignedTransaction) Marshal() []byte {
	var sigMap []byte
	for _, p := range s.SigMap {
		var msg []byte
		msg = appendBytes(msg, 1, p.PubKeyPrefix)
		msg = appendBytes(msg, 3, p.Ed25519)
		msg = appendBytes(msg, 6, p.ECDSASecp256k1)
		sigMap = appendMessage(sigMap, 1, msg)
	}
	b := appendBytes(nil, 1, s.BodyBytes)
	return appendMessage(b, 2, sigMap)
}

// Body decodes BodyBytes.
func (s *SignedTransaction) Body() (*TransactionBody, error) {
	return UnmarshalTransactionBody(s.BodyBytes)
}

// UnmarshalSignedTransaction decodes a SignedTransaction.
func UnmarshalSignedTransaction(b []byte) (*SignedTransaction, error) {
	s := &SignedTransaction{}
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			s.BodyBytes = append([]byte(nil), f.bytes...)
		case 2:
			return walk(f.bytes, func(f field) error {
				if f.num != 1 {
					return nil
				}
				var p SignaturePair
				err := walk(f.bytes, func(f field) error {
					switch f.num {
					case 1:
						p.PubKeyPrefix = append([]byte(nil), f.bytes...)
					case 3:
						p.Ed25519 = append([]byte(nil), f.bytes...)
					case 6:
						p.ECDSASecp256k1 = append([]byte(nil), f.bytes...)
					}
					return nil
				})
				s.SigMap = append(s.SigMap, p)
				return err
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "hapi: decoding signed transaction")
	}
	return s, nil
}

// Transaction is the envelope submitted to a node.
type Transaction struct {
	SignedTransactionBytes []byte
}

// NewTransaction wraps a signed transaction.
func NewTransaction(s *SignedTransaction) *Transaction {
	return &Transaction{SignedTransactionBytes: s.Marshal()}
}

// Marshal encodes the envelope.
func (t *Transaction) Marshal() []byte {
	return appendBytes(nil, 5, t.SignedTransactionBytes)
}

// Hash is the SHA-384 digest of the signed transaction bytes, the value
// the network reports as the transaction hash.
func (t *Transaction) Hash() []byte {
	sum := sha512.Sum384(t.SignedTransactionBytes)
	return sum[:]
}

// Signed decodes the inner signed transaction.
func (t *Transaction) Signed() (*SignedTransaction, error) {
	return UnmarshalSignedTransaction(t.SignedTransactionBytes)
}

// UnmarshalTransaction decodes a Transaction envelope.
func UnmarshalTransaction(b []byte) (*Transaction, error) {
	t := &Transaction{}
	err := walk(b, func(f field) error {
		if f.num == 5 {
			t.SignedTransactionBytes = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "hapi: decoding transaction")
	}
	if t.SignedTransactionBytes == nil {
		return nil, errors.New("hapi: transaction has no signed bytes")
	}
	return t, nil
}
