// Package jsonwallet reads and writes version 3 keystore JSON, including
// the x-ethers mnemonic extension and the x-hethers account extension.
package jsonwallet

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/mnemonic"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultScryptN = 1 << 17
	DefaultScryptR = 8
	DefaultScryptP = 1

	// LightScryptN and LightScryptP trade strength for speed.
	LightScryptN = keystore.LightScryptN
	LightScryptP = keystore.LightScryptP

	DefaultPBKDF2Iterations = 262144
	DefaultClient           = "hethers"

	cipherName    = "aes-128-ctr"
	mnemonicExtV1 = "0.1"
)

// KeystoreAccount is the key material stored in, or recovered from, a keystore.
type KeystoreAccount struct {
	// Address is the hex address recorded in the file; it may be empty for
	// Ed25519 keys with no account.
	Address    string
	PrivateKey []byte
	Curve      signingkey.Curve
	Account    string
	Alias      string
	Mnemonic   *mnemonic.Mnemonic
}

// ProgressFunc receives a completion fraction in [0, 1].
type ProgressFunc func(percent float64)

// ScryptParams are the cost parameters for the scrypt KDF.
type ScryptParams struct {
	N int
	R int
	P int
}

// EncryptOptions tunes Encrypt. The zero value gives ethers-compatible
// scrypt defaults with fresh randomness.
type EncryptOptions struct {
	KDF        string // "scrypt" (default) or "pbkdf2"
	Scrypt     ScryptParams
	Iterations int
	Salt       []byte
	IV         []byte
	UUID       string
	Client     string
	Rand       io.Reader
	Now        func() time.Time
	Progress   ProgressFunc
}

type cipherParams struct {
	IV string `json:"iv"`
}

type kdfParams struct {
	Salt  string `json:"salt"`
	N     int    `json:"n,omitempty"`
	R     int    `json:"r,omitempty"`
	P     int    `json:"p,omitempty"`
	C     int    `json:"c,omitempty"`
	PRF   string `json:"prf,omitempty"`
	DKLen int    `json:"dklen"`
}

type cryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherParams cipherParams `json:"cipherparams"`
	Ciphertext   string       `json:"ciphertext"`
	KDF          string       `json:"kdf"`
	KDFParams    kdfParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type ethersJSON struct {
	Client             string `json:"client"`
	GethFilename       string `json:"gethFilename"`
	MnemonicCounter    string `json:"mnemonicCounter"`
	MnemonicCiphertext string `json:"mnemonicCiphertext"`
	Path               string `json:"path"`
	Locale             string `json:"locale"`
	Version            string `json:"version"`
}

type hethersJSON struct {
	Curve   string `json:"curve"`
	Account string `json:"account,omitempty"`
	Alias   string `json:"alias,omitempty"`
}

// keystoreJSON decodes "Crypto" and "crypto" alike since encoding/json
// matches field names case-insensitively.
type keystoreJSON struct {
	Address string          `json:"address"`
	ID      string          `json:"id"`
	Version json.RawMessage `json:"version"`
	Crypto  cryptoJSON      `json:"Crypto"`
	Ethers  *ethersJSON     `json:"x-ethers,omitempty"`
	Hethers *hethersJSON    `json:"x-hethers,omitempty"`
}

// Encrypt serialises account as keystore JSON locked with password.
func Encrypt(account KeystoreAccount, password string, opts EncryptOptions) (string, error) {
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(float64) {}
	}
	curve := account.Curve
	if curve == "" {
		curve = signingkey.Secp256k1
	}
	if _, err := signingkey.New(curve, account.PrivateKey); err != nil {
		return "", err
	}

	var entropy []byte
	var m mnemonic.Mnemonic
	if account.Mnemonic != nil && account.Mnemonic.Phrase != "" {
		m = account.Mnemonic.Normalize(curve)
		var err error
		if entropy, err = mnemonic.MnemonicToEntropy(m.Phrase); err != nil {
			return "", err
		}
	}

	salt, err := randomOr(r, opts.Salt, 32)
	if err != nil {
		return "", err
	}
	iv, err := randomOr(r, opts.IV, 16)
	if err != nil {
		return "", err
	}
	if len(iv) != 16 {
		return "", errs.Argument("invalid iv", "options.iv", hex.EncodeToString(iv))
	}
	id := opts.UUID
	if id == "" {
		u, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return "", errors.Wrap(err, "generating keystore id")
		}
		id = u.String()
	}

	params := kdfParams{Salt: hex.EncodeToString(salt), DKLen: 32}
	kdf := opts.KDF
	if kdf == "" {
		kdf = "scrypt"
	}
	switch kdf {
	case "scrypt":
		params.N, params.R, params.P = opts.Scrypt.N, opts.Scrypt.R, opts.Scrypt.P
		if params.N == 0 {
			params.N = DefaultScryptN
		}
		if params.R == 0 {
			params.R = DefaultScryptR
		}
		if params.P == 0 {
			params.P = DefaultScryptP
		}
	case "pbkdf2":
		params.C, params.PRF = opts.Iterations, "hmac-sha256"
		if params.C == 0 {
			params.C = DefaultPBKDF2Iterations
		}
	default:
		return "", errs.Argument("unsupported key-derivation function", "options.kdf", kdf)
	}
	log.Debug().Str("kdf", kdf).Msg("encrypting keystore")

	progress(0)
	key, err := deriveKey(kdf, params, salt, password)
	if err != nil {
		return "", err
	}
	progress(0.9)

	ciphertext, err := aesCTR(key[0:16], iv, account.PrivateKey)
	if err != nil {
		return "", err
	}
	mac := crypto.Keccak256(key[16:32], ciphertext)

	addr := strings.ToLower(strings.TrimPrefix(account.Address, "0x"))
	out := keystoreJSON{
		Address: addr,
		ID:      id,
		Version: json.RawMessage("3"),
		Crypto: cryptoJSON{
			Cipher:       cipherName,
			CipherParams: cipherParams{IV: hex.EncodeToString(iv)},
			Ciphertext:   hex.EncodeToString(ciphertext),
			KDF:          kdf,
			KDFParams:    params,
			MAC:          hex.EncodeToString(mac),
		},
		Hethers: &hethersJSON{Curve: string(curve), Account: account.Account, Alias: account.Alias},
	}

	if entropy != nil {
		mnemonicIV, err := randomOr(r, nil, 16)
		if err != nil {
			return "", err
		}
		mnemonicCiphertext, err := aesCTR(key[32:64], mnemonicIV, entropy)
		if err != nil {
			return "", err
		}
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		client := opts.Client
		if client == "" {
			client = DefaultClient
		}
		out.Ethers = &ethersJSON{
			Client:             client,
			GethFilename:       gethFilename(now(), addr),
			MnemonicCounter:    hex.EncodeToString(mnemonicIV),
			MnemonicCiphertext: hex.EncodeToString(mnemonicCiphertext),
			Path:               m.Path,
			Locale:             m.Locale,
			Version:            mnemonicExtV1,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "encoding keystore")
	}
	progress(1)
	return string(data), nil
}

// gethFilename is the file name geth would give this keystore.
func gethFilename(t time.Time, addr string) string {
	return "UTC--" + t.UTC().Format("2006-01-02T15-04-05") + ".0Z--" + addr
}

func randomOr(r io.Reader, given []byte, n int) ([]byte, error) {
	if given != nil {
		return given, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "reading randomness")
	}
	return buf, nil
}
