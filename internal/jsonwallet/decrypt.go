package jsonwallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/mnemonic"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DecryptResult is delivered by DecryptAsync.
type DecryptResult struct {
	Account KeystoreAccount
	Err     error
}

// Decrypt unlocks keystore JSON with password. It blocks for the duration
// of the key derivation.
func Decrypt(data, password string) (KeystoreAccount, error) {
	return decrypt(data, password, nil)
}

// DecryptAsync runs Decrypt in a goroutine. The channel yields exactly one
// result; if ctx ends first that result carries ctx.Err() and the derivation
// is left to finish in the background.
func DecryptAsync(ctx context.Context, data, password string, progress ProgressFunc) <-chan DecryptResult {
	out := make(chan DecryptResult, 1)
	if err := ctx.Err(); err != nil {
		out <- DecryptResult{Err: err}
		close(out)
		return out
	}
	done := make(chan DecryptResult, 1)
	go func() {
		account, err := decrypt(data, password, progress)
		done <- DecryptResult{Account: account, Err: err}
	}()
	go func() {
		defer close(out)
		select {
		case r := <-done:
			out <- r
		case <-ctx.Done():
			out <- DecryptResult{Err: ctx.Err()}
		}
	}()
	return out
}

func decrypt(data, password string, progress ProgressFunc) (KeystoreAccount, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	var ks keystoreJSON
	if err := json.Unmarshal([]byte(data), &ks); err != nil {
		return KeystoreAccount{}, errs.Wrap(errors.Wrap(err, "parsing keystore"), errs.CodeInvalidArgument, "invalid JSON wallet")
	}
	c := ks.Crypto
	if c.Cipher != cipherName {
		return KeystoreAccount{}, errs.Argument("unsupported cipher", "cipher", c.Cipher)
	}
	kdf := strings.ToLower(c.KDF)
	log.Debug().Str("kdf", kdf).Msg("decrypting keystore")

	salt, err := looseHex(c.KDFParams.Salt)
	if err != nil {
		return KeystoreAccount{}, errs.Argument("invalid salt", "salt", c.KDFParams.Salt)
	}
	progress(0)
	key, err := deriveKey(kdf, c.KDFParams, salt, password)
	if err != nil {
		return KeystoreAccount{}, err
	}
	progress(0.9)

	ciphertext, err := looseHex(c.Ciphertext)
	if err != nil {
		return KeystoreAccount{}, errs.Argument("invalid ciphertext", "ciphertext", c.Ciphertext)
	}
	mac, err := looseHex(c.MAC)
	if err != nil {
		return KeystoreAccount{}, errs.Argument("invalid mac", "mac", c.MAC)
	}
	if !bytes.Equal(crypto.Keccak256(key[16:32], ciphertext), mac) {
		return KeystoreAccount{}, errs.Argument("invalid password", "password", "********")
	}
	iv, err := looseHex(c.CipherParams.IV)
	if err != nil {
		return KeystoreAccount{}, errs.Argument("invalid iv", "iv", c.CipherParams.IV)
	}
	privateKey, err := aesCTR(key[0:16], iv, ciphertext)
	if err != nil {
		return KeystoreAccount{}, err
	}

	account := KeystoreAccount{PrivateKey: privateKey, Curve: signingkey.Secp256k1}
	if ks.Hethers != nil {
		if ks.Hethers.Curve != "" {
			if account.Curve, err = signingkey.ParseCurve(ks.Hethers.Curve); err != nil {
				return KeystoreAccount{}, err
			}
		}
		account.Account = ks.Hethers.Account
		account.Alias = ks.Hethers.Alias
	}
	signer, err := signingkey.New(account.Curve, privateKey)
	if err != nil {
		return KeystoreAccount{}, err
	}
	if account.Address, err = checkAddress(ks.Address, account, signer); err != nil {
		return KeystoreAccount{}, err
	}

	if ks.Ethers != nil && ks.Ethers.Version == mnemonicExtV1 {
		m, err := decryptMnemonic(ks.Ethers, key[32:64], account.Curve)
		if err != nil {
			return KeystoreAccount{}, err
		}
		derived, err := m.Key(account.Curve)
		if err != nil {
			return KeystoreAccount{}, err
		}
		if !bytes.Equal(derived.PrivateKey(), signer.PrivateKey()) {
			return KeystoreAccount{}, errs.Argument("mnemonic mismatch", "mnemonic", "[REDACTED]")
		}
		account.Mnemonic = &m
	}
	progress(1)
	return account, nil
}

// checkAddress compares the recorded address with the one implied by the
// account id, or by the key itself for secp256k1 keys without one.
func checkAddress(recorded string, account KeystoreAccount, key signingkey.SigningKey) (string, error) {
	var expected string
	switch {
	case account.Account != "":
		a, err := address.ParseAccount(account.Account)
		if err != nil {
			return "", err
		}
		expected = a.Address().Hex()
	case key.Curve() == signingkey.Secp256k1:
		addr, err := signingkey.ComputeAddress(key.PublicKey())
		if err != nil {
			return "", err
		}
		expected = addr.Hex()
	}
	if recorded == "" {
		return expected, nil
	}
	got, err := address.GetAddress(recorded)
	if err != nil {
		return "", err
	}
	if expected != "" && got != expected {
		return "", errs.Argument("address mismatch", "address", recorded)
	}
	return got, nil
}

func decryptMnemonic(ext *ethersJSON, key []byte, curve signingkey.Curve) (mnemonic.Mnemonic, error) {
	counter, err := looseHex(ext.MnemonicCounter)
	if err != nil {
		return mnemonic.Mnemonic{}, errs.Argument("invalid mnemonic counter", "mnemonicCounter", ext.MnemonicCounter)
	}
	ciphertext, err := looseHex(ext.MnemonicCiphertext)
	if err != nil {
		return mnemonic.Mnemonic{}, errs.Argument("invalid mnemonic ciphertext", "mnemonicCiphertext", ext.MnemonicCiphertext)
	}
	entropy, err := aesCTR(key, counter, ciphertext)
	if err != nil {
		return mnemonic.Mnemonic{}, err
	}
	phrase, err := mnemonic.EntropyToMnemonic(entropy)
	if err != nil {
		return mnemonic.Mnemonic{}, err
	}
	return mnemonic.Mnemonic{Phrase: phrase, Path: ext.Path, Locale: ext.Locale}.Normalize(curve), nil
}

// IsKeystoreWallet reports whether data is JSON whose version is the number 3.
func IsKeystoreWallet(data string) bool {
	var probe struct {
		Version any `json:"version"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return false
	}
	v, ok := probe.Version.(float64)
	return ok && v == 3
}

// GetJSONWalletAddress returns the checksummed address recorded in a
// keystore, or "" if data is not a keystore or the address is malformed.
func GetJSONWalletAddress(data string) string {
	if !IsKeystoreWallet(data) {
		return ""
	}
	var probe struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return ""
	}
	addr, err := address.GetAddress(probe.Address)
	if err != nil {
		return ""
	}
	return addr
}

func looseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
