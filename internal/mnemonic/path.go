package mnemonic

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// HardenedOffset marks a hardened child index.
	HardenedOffset uint32 = 0x80000000

	DefaultSecp256k1Path = "m/44'/60'/0'/0/0"
	DefaultEd25519Path   = "m/44'/3030'/0'/0'/0'"
)

// DefaultPath returns the derivation path used when none is given.
func DefaultPath(curve signingkey.Curve) string {
	if curve == signingkey.Ed25519 {
		return DefaultEd25519Path
	}
	return DefaultSecp256k1Path
}

// ParsePath parses "m/44'/60'/0'/0/0" into child indexes. A trailing ', h
// or H hardens a component. The bare "m" path yields no indexes.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || (parts[0] != "m" && parts[0] != "M") {
		return nil, errs.Argument("invalid path", "path", path)
	}
	indexes := make([]uint32, 0, len(parts)-1)
	for _, component := range parts[1:] {
		hardened := strings.HasSuffix(component, "'") || strings.HasSuffix(component, "h") || strings.HasSuffix(component, "H")
		if hardened {
			component = component[:len(component)-1]
		}
		value, err := strconv.ParseUint(component, 10, 32)
		if err != nil || uint32(value) >= HardenedOffset {
			return nil, errs.Argument("invalid path component", "path", path)
		}
		index := uint32(value)
		if hardened {
			index += HardenedOffset
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// FormatPath renders indexes back into "m/..." form.
func FormatPath(indexes []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range indexes {
		b.WriteByte('/')
		if index >= HardenedOffset {
			b.WriteString(strconv.FormatUint(uint64(index-HardenedOffset), 10))
			b.WriteByte('\'')
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(index), 10))
	}
	return b.String()
}

func deriveSecp256k1(seed []byte, indexes []uint32) ([]byte, error) {
	// mainnet params only select the xprv version bytes
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid seed")
	}
	for _, index := range indexes {
		key, err = key.Derive(index)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeInvalidArgument, "derivation failed", "index", index)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "derivation failed")
	}
	return priv.Serialize(), nil
}

// deriveEd25519 implements SLIP-10. Ed25519 has no public derivation, so
// every index is hardened.
func deriveEd25519(seed []byte, indexes []uint32) ([]byte, error) {
	key, chain := slip10Step([]byte("ed25519 seed"), seed)
	for _, index := range indexes {
		data := make([]byte, 0, 37)
		data = append(data, 0)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index|HardenedOffset)
		key, chain = slip10Step(chain, data)
	}
	return key, nil
}

func slip10Step(key, data []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
