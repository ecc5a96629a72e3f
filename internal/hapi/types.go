package hapi

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/protobuf/encoding/protowire"
)

// DER SubjectPublicKeyInfo headers accepted in front of raw public keys.
const (
	Ed25519PublicDERPrefix   = "302a300506032b6570032100"
	Secp256k1PublicDERPrefix = "302d300706052b8104000a032200"
)

// FileID names a file entity.
type FileID struct {
	Shard, Realm, Num uint64
}

func (id FileID) String() string { return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num) }

// ParseFileID parses "shard.realm.num".
func ParseFileID(s string) (FileID, error) {
	a, err := address.ParseAccount(s)
	if err != nil {
		return FileID{}, errs.Argument("invalid file id", "fileId", s)
	}
	return FileID{Shard: a.Shard, Realm: a.Realm, Num: a.Num}, nil
}

// ContractID names a contract either by number or by its EVM address.
type ContractID struct {
	Shard, Realm, Num uint64
	EVMAddress        []byte
}

// ContractIDFromAddress maps a long-zero address onto shard.realm.num and
// keeps any other address as an EVM address on shard 0, realm 0.
func ContractIDFromAddress(a common.Address) ContractID {
	if address.IsLongZero(a) {
		id := address.AccountFromEVM(a)
		return ContractID{Shard: id.Shard, Realm: id.Realm, Num: id.Num}
	}
	return ContractID{EVMAddress: a.Bytes()}
}

// Address returns the contract's EVM address.
func (id ContractID) Address() common.Address {
	if len(id.EVMAddress) > 0 {
		return common.BytesToAddress(id.EVMAddress)
	}
	return address.AccountID{Shard: id.Shard, Realm: id.Realm, Num: id.Num}.Address()
}

func appendAccountID(b []byte, num protowire.Number, id address.AccountID) []byte {
	var msg []byte
	msg = appendVarint(msg, 1, id.Shard)
	msg = appendVarint(msg, 2, id.Realm)
	msg = appendVarint(msg, 3, id.Num)
	return appendMessage(b, num, msg)
}

func parseAccountID(b []byte) (address.AccountID, error) {
	var id address.AccountID
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			id.Shard = f.varint
		case 2:
			id.Realm = f.varint
		case 3:
			id.Num = f.varint
		}
		return nil
	})
	return id, err
}

func appendFileID(b []byte, num protowire.Number, id FileID) []byte {
	return appendAccountID(b, num, address.AccountID(id))
}

func parseFileID(b []byte) (FileID, error) {
	id, err := parseAccountID(b)
	return FileID(id), err
}

func appendContractID(b []byte, num protowire.Number, id ContractID) []byte {
	var msg []byte
	msg = appendVarint(msg, 1, id.Shard)
	msg = appendVarint(msg, 2, id.Realm)
	if len(id.EVMAddress) > 0 {
		msg = appendBytes(msg, 4, id.EVMAddress)
	} else {
		msg = appendVarint(msg, 3, id.Num)
	}
	return appendMessage(b, num, msg)
}

func parseContractID(b []byte) (ContractID, error) {
	var id ContractID
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			id.Shard = f.varint
		case 2:
			id.Realm = f.varint
		case 3:
			id.Num = f.varint
		case 4:
			id.EVMAddress = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return id, err
}

// Key is a single public key; exactly one field is set.
type Key struct {
	Ed25519        []byte
	ECDSASecp256k1 []byte
}

// Curve reports which curve the key is on.
func (k Key) Curve() signingkey.Curve {
	if len(k.Ed25519) > 0 {
		return signingkey.Ed25519
	}
	return signingkey.Secp256k1
}

// Bytes returns the raw public key.
func (k Key) Bytes() []byte {
	if len(k.Ed25519) > 0 {
		return k.Ed25519
	}
	return k.ECDSASecp256k1
}

// KeyFromPublic builds a Key from a raw or DER-encoded public key. 32 bytes
// is Ed25519, 33 bytes a compressed secp256k1 key and 65 bytes an
// uncompressed one.
func KeyFromPublic(pub []byte) (Key, error) {
	pub = stripPublicDER(pub)
	switch len(pub) {
	case 32:
		return Key{Ed25519: append([]byte(nil), pub...)}, nil
	case 33, 65:
		compressed, err := signingkey.ComputePublicKey(pub, true, signingkey.Secp256k1)
		if err != nil {
			return Key{}, err
		}
		return Key{ECDSASecp256k1: compressed}, nil
	}
	return Key{}, errs.Argument("invalid public key", "publicKey", hex.EncodeToString(pub))
}

// ParseKey is KeyFromPublic over hex input with an optional 0x prefix.
func ParseKey(s string) (Key, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Key{}, errs.Argument("invalid public key", "publicKey", s)
	}
	return KeyFromPublic(raw)
}

func stripPublicDER(pub []byte) []byte {
	for _, prefix := range []string{Ed25519PublicDERPrefix, Secp256k1PublicDERPrefix} {
		p, _ := hex.DecodeString(prefix)
		if bytes.HasPrefix(pub, p) {
			return pub[len(p):]
		}
	}
	return pub
}

func appendKey(b []byte, num protowire.Number, k Key) []byte {
	var msg []byte
	if len(k.Ed25519) > 0 {
		msg = appendBytes(msg, 2, k.Ed25519)
	} else {
		msg = appendBytes(msg, 7, k.ECDSASecp256k1)
	}
	return appendMessage(b, num, msg)
}

func parseKey(b []byte) (Key, error) {
	var k Key
	err := walk(b, func(f field) error {
		switch f.num {
		case 2:
			k.Ed25519 = append([]byte(nil), f.bytes...)
		case 7:
			k.ECDSASecp256k1 = append([]byte(nil), f.bytes...)
		}
		return nil
	})
	return k, err
}

func appendKeyList(b []byte, num protowire.Number, keys []Key) []byte {
	var msg []byte
	for _, k := range keys {
		msg = appendKey(msg, 1, k)
	}
	return appendMessage(b, num, msg)
}

func parseKeyList(b []byte) ([]Key, error) {
	var keys []Key
	err := walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		k, err := parseKey(f.bytes)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		return nil
	})
	return keys, err
}

// TransactionID is the paying account plus the valid-start time.
type TransactionID struct {
	Account    address.AccountID
	ValidStart time.Time
}

// NewTransactionID starts validity jitter before now.
func NewTransactionID(account address.AccountID, now time.Time, jitter time.Duration) TransactionID {
	return TransactionID{Account: account, ValidStart: now.Add(-jitter).UTC()}
}

// String renders "shard.realm.num@seconds.nanos".
func (id TransactionID) String() string {
	return fmt.Sprintf("%s@%d.%09d", id.Account, id.ValidStart.Unix(), id.ValidStart.Nanosecond())
}

func appendTransactionID(b []byte, num protowire.Number, id TransactionID) []byte {
	var msg []byte
	msg = appendTimestamp(msg, 1, id.ValidStart)
	msg = appendAccountID(msg, 2, id.Account)
	return appendMessage(b, num, msg)
}

func parseTransactionID(b []byte) (TransactionID, error) {
	var id TransactionID
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			id.ValidStart, err = parseTimestamp(f.bytes)
		case 2:
			id.Account, err = parseAccountID(f.bytes)
		}
		return err
	})
	return id, err
}
