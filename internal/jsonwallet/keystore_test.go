package jsonwallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/mnemonic"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	abandon = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	// geth's pbkdf2 reference keystore, with a lowercase "crypto" key.
	gethVector = `{"crypto":{"cipher":"aes-128-ctr","cipherparams":{"iv":"6087dab2f9fdbbfaddc31a909735c1e6"},` +
		`"ciphertext":"5318b4d5bcd28de64ee5559e671353e16f075ecae9f99c7a79a38af5f869aa46","kdf":"pbkdf2",` +
		`"kdfparams":{"c":262144,"dklen":32,"prf":"hmac-sha256","salt":"ae3cd4e7013836a3df6bd7241b12db061dbe2c6785853cce422d148a624ce0bd"},` +
		`"mac":"517ead924a9d0dc3124507e3393d175ce3ff7c1e96529c6c555ce9e51205e9b2"},` +
		`"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b","id":"3198bc9c-6672-5ab3-d995-4942343ae5b6","version":3}`
	gethKey = "7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d"
)

func lightOptions() EncryptOptions {
	return EncryptOptions{Scrypt: ScryptParams{N: LightScryptN, R: 8, P: 1}}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func abandonAccount(t *testing.T, curve signingkey.Curve) KeystoreAccount {
	t.Helper()
	key, err := mnemonic.DeriveKey(abandon, "", "", curve)
	require.NoError(t, err)
	account := KeystoreAccount{
		PrivateKey: key.PrivateKey(),
		Curve:      curve,
		Mnemonic:   &mnemonic.Mnemonic{Phrase: abandon},
	}
	if curve == signingkey.Secp256k1 {
		addr, err := signingkey.ComputeAddress(key.PrivateKey())
		require.NoError(t, err)
		account.Address = addr.Hex()
	}
	return account
}

// --- decrypt ---

func TestDecryptGethVector(t *testing.T) {
	account, err := Decrypt(gethVector, "testpassword")
	require.NoError(t, err)
	assert.Equal(t, gethKey, hex.EncodeToString(account.PrivateKey))
	assert.Equal(t, signingkey.Secp256k1, account.Curve)
	assert.Equal(t, common.HexToAddress("0x008aeeda4d805471df9b2a5b0f38a0c3bcba786b").Hex(), account.Address)
	assert.Nil(t, account.Mnemonic)
}

func TestDecryptWrongPassword(t *testing.T) {
	_, err := Decrypt(gethVector, "wrong")
	require.Error(t, err)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
	assert.Equal(t, "invalid password", errs.ReasonOf(err))
}

func TestDecryptAddressMismatch(t *testing.T) {
	data := strings.Replace(gethVector, "008aeeda4d805471df9b2a5b0f38a0c3bcba786b", "0000000000000000000000000000000000000001", 1)
	_, err := Decrypt(data, "testpassword")
	require.Error(t, err)
	assert.Equal(t, "address mismatch", errs.ReasonOf(err))
}

func TestDecryptUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		to     string
		reason string
	}{
		{"cipher", `"aes-128-ctr"`, `"aes-256-gcm"`, "unsupported cipher"},
		{"kdf", `"kdf":"pbkdf2"`, `"kdf":"argon2"`, "unsupported key-derivation function"},
		{"prf", `"hmac-sha256"`, `"hmac-md5"`, "unsupported prf"},
		{"dklen", `"dklen":32`, `"dklen":16`, "unsupported key-derivation derived-key length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(strings.Replace(gethVector, tt.from, tt.to, 1), "testpassword")
			require.Error(t, err)
			assert.Equal(t, tt.reason, errs.ReasonOf(err))
		})
	}
}

func TestDecryptInvalidJSON(t *testing.T) {
	_, err := Decrypt("{not json", "x")
	require.Error(t, err)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestDecryptScryptBadN(t *testing.T) {
	data, err := Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", lightOptions())
	require.NoError(t, err)
	data = strings.Replace(data, `"n":4096`, `"n":4095`, 1)
	_, err = Decrypt(data, "pw")
	require.Error(t, err)
	assert.Equal(t, "unsupported key-derivation function parameters", errs.ReasonOf(err))
}

// --- encrypt ---

func TestEncryptRoundTripSecp256k1(t *testing.T) {
	account := abandonAccount(t, signingkey.Secp256k1)
	opts := lightOptions()
	opts.Now = func() time.Time { return time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC) }

	data, err := Encrypt(account, "foobar", opts)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	assert.Equal(t, float64(3), raw["version"])
	assert.Equal(t, "9858effd232b4033e47d90003d41ec34ecaeda94", raw["address"])
	crypto := raw["Crypto"].(map[string]any)
	assert.Equal(t, "aes-128-ctr", crypto["cipher"])
	assert.Equal(t, "scrypt", crypto["kdf"])
	assert.Equal(t, float64(32), crypto["kdfparams"].(map[string]any)["dklen"])
	ext := raw["x-ethers"].(map[string]any)
	assert.Equal(t, "0.1", ext["version"])
	assert.Equal(t, mnemonic.DefaultSecp256k1Path, ext["path"])
	assert.Equal(t, "en", ext["locale"])
	assert.Equal(t, "UTC--2022-03-04T05-06-07.0Z--9858effd232b4033e47d90003d41ec34ecaeda94", ext["gethFilename"])
	assert.Equal(t, "secp256k1", raw["x-hethers"].(map[string]any)["curve"])

	got, err := Decrypt(data, "foobar")
	require.NoError(t, err)
	assert.Equal(t, account.PrivateKey, got.PrivateKey)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", got.Address)
	require.NotNil(t, got.Mnemonic)
	assert.Equal(t, abandon, got.Mnemonic.Phrase)
	assert.Equal(t, mnemonic.DefaultSecp256k1Path, got.Mnemonic.Path)
}

func TestEncryptRoundTripEd25519(t *testing.T) {
	account := abandonAccount(t, signingkey.Ed25519)
	account.Mnemonic.Path = "m/56'/82'"
	key, err := mnemonic.DeriveKey(abandon, "", account.Mnemonic.Path, signingkey.Ed25519)
	require.NoError(t, err)
	account.PrivateKey = key.PrivateKey()
	account.Account = "0.0.1001"
	account.Alias = address.ComputeAlias(key.PublicKey())
	account.Address = address.MustParseAccount("0.0.1001").Address().Hex()

	opts := lightOptions()
	opts.KDF = "pbkdf2"
	opts.Iterations = 1024
	data, err := Encrypt(account, "foobared25519", opts)
	require.NoError(t, err)

	got, err := Decrypt(data, "foobared25519")
	require.NoError(t, err)
	assert.Equal(t, signingkey.Ed25519, got.Curve)
	assert.Equal(t, account.PrivateKey, got.PrivateKey)
	assert.Equal(t, "0.0.1001", got.Account)
	assert.Equal(t, account.Alias, got.Alias)
	assert.Equal(t, account.Address, got.Address)
	require.NotNil(t, got.Mnemonic)
	assert.Equal(t, "m/56'/82'", got.Mnemonic.Path)
}

func TestEncryptEd25519WithoutAccount(t *testing.T) {
	key, err := signingkey.FromHex("06bd0453347618988f1e1c60bd3e57892a4b8603969827d65b1a87d13b463d70", signingkey.Ed25519)
	require.NoError(t, err)
	data, err := Encrypt(KeystoreAccount{PrivateKey: key.PrivateKey(), Curve: signingkey.Ed25519}, "pw", lightOptions())
	require.NoError(t, err)
	assert.Equal(t, "", GetJSONWalletAddress(data))

	got, err := Decrypt(data, "pw")
	require.NoError(t, err)
	assert.Equal(t, "", got.Address)
	assert.Equal(t, key.PrivateKey(), got.PrivateKey)
}

func TestEncryptFixedParams(t *testing.T) {
	opts := lightOptions()
	opts.Salt = make([]byte, 32)
	opts.IV = make([]byte, 16)
	opts.UUID = "00000000-0000-4000-8000-000000000000"

	a, err := Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", opts)
	require.NoError(t, err)
	b, err := Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, `"id":"00000000-0000-4000-8000-000000000000"`)
}

func TestEncryptNormalizesPassword(t *testing.T) {
	// U+212B ANGSTROM SIGN and U+00C5 are NFKC-equivalent.
	data, err := Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "\u212b", lightOptions())
	require.NoError(t, err)
	_, err = Decrypt(data, "\u00c5")
	assert.NoError(t, err)
}

func TestEncryptInvalid(t *testing.T) {
	_, err := Encrypt(KeystoreAccount{PrivateKey: []byte{1, 2, 3}}, "pw", lightOptions())
	assert.Error(t, err)

	opts := lightOptions()
	opts.IV = make([]byte, 8)
	_, err = Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", opts)
	assert.Error(t, err)

	opts = lightOptions()
	opts.KDF = "argon2"
	_, err = Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", opts)
	assert.Error(t, err)
}

func TestDecryptMnemonicMismatch(t *testing.T) {
	account := KeystoreAccount{
		PrivateKey: mustHex(t, gethKey),
		Mnemonic:   &mnemonic.Mnemonic{Phrase: abandon},
	}
	data, err := Encrypt(account, "pw", lightOptions())
	require.NoError(t, err)
	_, err = Decrypt(data, "pw")
	require.Error(t, err)
	assert.Equal(t, "mnemonic mismatch", errs.ReasonOf(err))
}

// --- async ---

func TestDecryptAsync(t *testing.T) {
	data, err := Encrypt(KeystoreAccount{PrivateKey: mustHex(t, gethKey)}, "pw", lightOptions())
	require.NoError(t, err)

	var mu sync.Mutex
	var steps []float64
	res := <-DecryptAsync(context.Background(), data, "pw", func(p float64) {
		mu.Lock()
		steps = append(steps, p)
		mu.Unlock()
	})
	require.NoError(t, res.Err)
	assert.Equal(t, gethKey, hex.EncodeToString(res.Account.PrivateKey))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, steps)
	assert.Equal(t, float64(0), steps[0])
	assert.Equal(t, float64(1), steps[len(steps)-1])
}

func TestDecryptAsyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, ok := <-DecryptAsync(ctx, gethVector, "testpassword", nil)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

// --- inspect ---

func TestIsKeystoreWallet(t *testing.T) {
	tests := []struct {
		json string
		want bool
	}{
		{gethVector, true},
		{`{"version":3}`, true},
		{`{"version":"3"}`, false},
		{`{"version":3.5}`, false},
		{`{"version":1}`, false},
		{`{}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsKeystoreWallet(tt.json), tt.json)
	}
}

func TestGetJSONWalletAddress(t *testing.T) {
	assert.Equal(t, common.HexToAddress("0x008aeeda4d805471df9b2a5b0f38a0c3bcba786b").Hex(), GetJSONWalletAddress(gethVector))
	assert.Equal(t, "", GetJSONWalletAddress(`{"version":3,"address":"nope"}`))
	assert.Equal(t, "", GetJSONWalletAddress(`{"version":2,"address":"008aeeda4d805471df9b2a5b0f38a0c3bcba786b"}`))
	assert.Equal(t, "", GetJSONWalletAddress(`garbage`))
}

// --- inspect ---

func TestInspectGethVector(t *testing.T) {
	info, err := Inspect(gethVector)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x008aeeda4d805471df9b2a5b0f38a0c3bcba786b").Hex(), info.Address)
	assert.Equal(t, signingkey.Secp256k1, info.Curve)
	assert.Equal(t, "pbkdf2", info.KDF)
	assert.Equal(t, "aes-128-ctr", info.Cipher)
	assert.False(t, info.HasMnemonic)
}

func TestInspectEd25519WithMnemonic(t *testing.T) {
	account := abandonAccount(t, signingkey.Ed25519)
	account.Account = "0.0.1001"
	data, err := Encrypt(account, "pw", lightOptions())
	require.NoError(t, err)

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, signingkey.Ed25519, info.Curve)
	assert.Equal(t, "0.0.1001", info.Account)
	assert.Equal(t, "scrypt", info.KDF)
	assert.True(t, info.HasMnemonic)
	assert.Equal(t, mnemonic.DefaultEd25519Path, info.Path)
	assert.Equal(t, DefaultClient, info.Client)
}

func TestInspectRejectsNonKeystore(t *testing.T) {
	_, err := Inspect(`{"version":"3"}`)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}
