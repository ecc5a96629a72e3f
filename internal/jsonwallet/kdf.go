package jsonwallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// derivedKeyLen covers the AES key, the MAC key and the mnemonic key.
const derivedKeyLen = 64

func deriveKey(kdf string, params kdfParams, salt []byte, password string) ([]byte, error) {
	pw := []byte(norm.NFKC.String(password))
	switch kdf {
	case "scrypt":
		n := params.N
		if n <= 1 || n&(n-1) != 0 {
			return nil, errs.Argument("unsupported key-derivation function parameters", "N", n)
		}
		if params.DKLen != 32 {
			return nil, errs.Argument("unsupported key-derivation derived-key length", "dkLen", params.DKLen)
		}
		key, err := scrypt.Key(pw, salt, n, params.R, params.P, derivedKeyLen)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeInvalidArgument, "unsupported key-derivation function parameters")
		}
		return key, nil
	case "pbkdf2":
		var prf func() hash.Hash
		switch params.PRF {
		case "hmac-sha256":
			prf = sha256.New
		case "hmac-sha512":
			prf = sha512.New
		default:
			return nil, errs.Argument("unsupported prf", "prf", params.PRF)
		}
		if params.DKLen != 32 {
			return nil, errs.Argument("unsupported key-derivation derived-key length", "dkLen", params.DKLen)
		}
		if params.C <= 0 {
			return nil, errs.Argument("unsupported key-derivation function parameters", "c", params.C)
		}
		return pbkdf2.Key(pw, salt, params.C, derivedKeyLen, prf), nil
	}
	return nil, errs.Argument("unsupported key-derivation function", "kdf", kdf)
}

// aesCTR encrypts or decrypts data; the key length picks AES-128 or AES-256.
func aesCTR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid cipher key")
	}
	if len(iv) != block.BlockSize() {
		return nil, errs.Argument("invalid iv", "iv", iv)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}
