// Package mnemonic handles BIP-39 phrases and derives curve-specific keys
// from them: BIP-32 for secp256k1 and SLIP-10 for Ed25519.
package mnemonic

import (
	"fmt"
	"io"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/tyler-smith/go-bip39"
)

// Strength is the entropy size in bits.
type Strength int

const (
	Words12 Strength = 128
	Words15 Strength = 160
	Words18 Strength = 192
	Words21 Strength = 224
	Words24 Strength = 256
)

// DefaultLocale is the only word list bundled with go-bip39 that is enabled.
const DefaultLocale = "en"

// Mnemonic is the phrase a key was derived from, with the path and locale
// used for derivation.
type Mnemonic struct {
	Phrase string `json:"phrase"`
	Path   string `json:"path"`
	Locale string `json:"locale"`
}

// Normalize fills in the default path for curve and the default locale.
func (m Mnemonic) Normalize(curve signingkey.Curve) Mnemonic {
	if m.Path == "" {
		m.Path = DefaultPath(curve)
	}
	if m.Locale == "" {
		m.Locale = DefaultLocale
	}
	m.Phrase = normalizeSpaces(m.Phrase)
	return m
}

// Key derives the signing key this mnemonic describes.
func (m Mnemonic) Key(curve signingkey.Curve) (signingkey.SigningKey, error) {
	m = m.Normalize(curve)
	if err := checkLocale(m.Locale); err != nil {
		return nil, err
	}
	return DeriveKey(m.Phrase, "", m.Path, curve)
}

// Generate draws entropy of the given strength from r and returns its phrase.
func Generate(strength Strength, r io.Reader) (string, error) {
	switch strength {
	case Words12, Words15, Words18, Words21, Words24:
	default:
		return "", errs.Argument("invalid mnemonic strength", "strength", int(strength))
	}
	entropy := make([]byte, int(strength)/8)
	if _, err := io.ReadFull(r, entropy); err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}
	return EntropyToMnemonic(entropy)
}

// EntropyToMnemonic encodes 16 to 32 bytes (a multiple of 4) as a phrase.
func EntropyToMnemonic(entropy []byte) (string, error) {
	if len(entropy) < 16 || len(entropy) > 32 || len(entropy)%4 != 0 {
		return "", errs.Argument("invalid entropy", "entropy", entropy)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errs.Wrap(err, errs.CodeInvalidArgument, "invalid entropy", "entropy", entropy)
	}
	return phrase, nil
}

// MnemonicToEntropy reverses EntropyToMnemonic, verifying the checksum.
func MnemonicToEntropy(phrase string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(normalizeSpaces(phrase))
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid mnemonic", "mnemonic", "[REDACTED]")
	}
	return entropy, nil
}

// IsValid reports whether phrase has a valid word count, known words and a
// matching checksum.
func IsValid(phrase string) bool {
	return bip39.IsMnemonicValid(normalizeSpaces(phrase))
}

// ToSeed runs the BIP-39 PBKDF2 stretch over phrase and password.
func ToSeed(phrase, password string) ([]byte, error) {
	phrase = normalizeSpaces(phrase)
	seed, err := bip39.NewSeedWithErrorChecking(phrase, password)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid mnemonic", "mnemonic", "[REDACTED]")
	}
	return seed, nil
}

// DeriveKey derives the key at path from phrase for curve. An empty path
// selects DefaultPath(curve).
func DeriveKey(phrase, password, path string, curve signingkey.Curve) (signingkey.SigningKey, error) {
	seed, err := ToSeed(phrase, password)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultPath(curve)
	}
	raw, err := DerivePrivateKey(seed, path, curve)
	if err != nil {
		return nil, err
	}
	return signingkey.New(curve, raw)
}

// DerivePrivateKey walks path from the master key of seed.
func DerivePrivateKey(seed []byte, path string, curve signingkey.Curve) ([]byte, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	switch curve {
	case signingkey.Secp256k1:
		return deriveSecp256k1(seed, indexes)
	case signingkey.Ed25519:
		return deriveEd25519(seed, indexes)
	}
	return nil, errs.Argument("unsupported curve", "curve", string(curve))
}

func checkLocale(locale string) error {
	if locale != DefaultLocale {
		return errs.Unsupported("unsupported locale", "mnemonic")
	}
	return nil
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
