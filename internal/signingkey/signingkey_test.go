package signingkey

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	require.NoError(t, err)
	return b
}

// ---------------------------------------------------------------------------
// EIP-191 message vectors
// ---------------------------------------------------------------------------

type messageVector struct {
	name       string
	privateKey string
	address    string
	message    []byte
	hash       string
	signature  string
}

func messageVectors(t *testing.T) []messageVector {
	return []messageVector{
		{
			name:       "string('hello world')",
			privateKey: "0x0123456789012345678901234567890123456789012345678901234567890123",
			address:    "0x14791697260E4c9A71f18484C9f997B308e59325",
			message:    []byte("hello world"),
			hash:       "0xd9eba16ed0ecae432b71fe008c98cc872bb4cc214d3220a36f365326cf807d68",
			signature:  "0xddd0a7290af9526056b4e35a077b9a11b513aa0028ec6c9880948544508f3c63265e99e47ad31bb2cab9646c504576b3abc6939a1710afc08cbf3034d73214b81c",
		},
		{
			name:       "binary message",
			privateKey: "0x51d1d6047622bca92272d36b297799ecc152dc2ef91b229debf84fc41e8c73ee",
			address:    "0xD351c7c627ad5531Edb9587f4150CaF393c33E87",
			message:    mustHex(t, "0x47173285a8d7341e5e972fc677286384f802f8ef42a5ec5f03bbfa254cb01fad"),
			hash:       "0x93100cc9477ba6522a2d7d5e83d0e075b167224ed8aa0c5860cfd47fa9f22797",
			signature:  "0x546f0c996fa4cfbf2b68fd413bfb477f05e44e66545d7782d87d52305831cd055fc9943e513297d0f6755ad1590a5476bf7d1761d4f9dc07dfe473824bbdec751b",
		},
		{
			name:       "hashed string",
			privateKey: "0x09a11afa58d6014843fd2c5fd4e21e7fadf96ca2d8ce9934af6b8e204314f25c",
			address:    "0xe7deA7e64B62d1Ca52f1716f29cd27d4FE28e3e1",
			message:    crypto.Keccak256([]byte("0x7f23b5eed5bc7e89f267f339561b2697faab234a2")),
			hash:       "0x06c9d148d268f9a13d8f94f4ce351b0beff3b9ba69f23abbf171168202b2dd67",
			signature:  "0x7222038446034a0425b6e3f0cc3594f0d979c656206408f937c37a8180bb1bea047d061e4ded4aeac77fa86eb02d42ba7250964ac3eb9da1337090258ce798491c",
		},
	}
}

func TestHashMessage(t *testing.T) {
	for _, v := range messageVectors(t) {
		assert.Equal(t, v.hash, "0x"+hex.EncodeToString(HashMessage(v.message)), v.name)
	}
}

func TestSignMessage_Vectors(t *testing.T) {
	for _, v := range messageVectors(t) {
		k, err := FromHex(v.privateKey, Secp256k1)
		require.NoError(t, err, v.name)

		sig, err := k.SignMessage(v.message)
		require.NoError(t, err, v.name)
		assert.Equal(t, v.signature, sig.Hex(), v.name)
	}
}

func TestVerifyMessage_ReturnsPublicKey(t *testing.T) {
	for _, v := range messageVectors(t) {
		k, err := FromHex(v.privateKey, Secp256k1)
		require.NoError(t, err)

		pub, err := VerifyMessage(v.message, mustHex(t, v.signature), Secp256k1)
		require.NoError(t, err, v.name)
		assert.Equal(t, k.PublicKey(), pub, v.name)
		assert.Len(t, pub, 65)

		addr, err := ComputeAddress(pub)
		require.NoError(t, err)
		assert.Equal(t, v.address, addr.Hex(), v.name)
	}
}

func TestVerifyMessage_Ed25519Unsupported(t *testing.T) {
	_, err := VerifyMessage([]byte("hi"), make([]byte, 65), Ed25519)
	require.Error(t, err)
	assert.Equal(t, errs.CodeUnsupportedOperation, errs.CodeOf(err))
}

// ---------------------------------------------------------------------------
// Secp256k1
// ---------------------------------------------------------------------------

func TestSecp256k1_Keys(t *testing.T) {
	k, err := FromHex("074cc0bd198d1bc91f668c59b46a1e74fd13215661e5a7bd42ad0d324476295d", Secp256k1)
	require.NoError(t, err)
	assert.Equal(t, Secp256k1, k.Curve())
	assert.Equal(t, "074cc0bd198d1bc91f668c59b46a1e74fd13215661e5a7bd42ad0d324476295d", hex.EncodeToString(k.PrivateKey()))
	assert.Len(t, k.PublicKey(), 65)
	assert.Len(t, k.CompressedPublicKey(), 33)

	fromCompressed, err := ComputePublicKey(k.CompressedPublicKey(), false, Secp256k1)
	require.NoError(t, err)
	assert.Equal(t, k.PublicKey(), fromCompressed)

	fromPrivate, err := ComputePublicKey(k.PrivateKey(), true, Secp256k1)
	require.NoError(t, err)
	assert.Equal(t, k.CompressedPublicKey(), fromPrivate)
}

func TestSecp256k1_DERPrefixStripped(t *testing.T) {
	raw := "074cc0bd198d1bc91f668c59b46a1e74fd13215661e5a7bd42ad0d324476295d"
	k, err := FromHex(secp256k1DERPrefix+raw, Secp256k1)
	require.NoError(t, err)
	assert.Equal(t, raw, hex.EncodeToString(k.PrivateKey()))
}

func TestSecp256k1_InvalidKeys(t *testing.T) {
	for _, in := range []string{"", "0x1234", "zz", "0x" + strings.Repeat("0", 64), "0x" + strings.Repeat("f", 64)} {
		_, err := FromHex(in, Secp256k1)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, errs.InvalidArgument), in)
	}
}

func TestSecp256k1_SignDigestRecovers(t *testing.T) {
	k, err := FromHex("0x0123456789012345678901234567890123456789012345678901234567890123", Secp256k1)
	require.NoError(t, err)
	digest := crypto.Keccak256([]byte("payload"))

	sig, err := k.SignDigest(digest)
	require.NoError(t, err)
	assert.Contains(t, []int{27, 28}, sig.V)
	assert.Equal(t, sig.V-27, sig.RecoveryParam)
	assert.Len(t, sig.Compact(), 64)

	pub, err := RecoverPublicKey(digest, sig.Bytes())
	require.NoError(t, err)
	assert.Equal(t, k.PublicKey(), pub)

	_, err = k.SignDigest([]byte("short"))
	assert.Error(t, err)
}

func TestSplitSignature_Compact(t *testing.T) {
	k, err := FromHex("0x51d1d6047622bca92272d36b297799ecc152dc2ef91b229debf84fc41e8c73ee", Secp256k1)
	require.NoError(t, err)
	digest := crypto.Keccak256([]byte("compact"))
	sig, err := k.SignDigest(digest)
	require.NoError(t, err)

	compact := sig.Compact()
	if sig.RecoveryParam == 1 {
		compact[32] |= 0x80
	}
	back, err := SplitSignature(compact)
	require.NoError(t, err)
	assert.Equal(t, sig.R, back.R)
	assert.Equal(t, sig.S, back.S)
	assert.Equal(t, sig.V, back.V)

	_, err = SplitSignature(make([]byte, 10))
	assert.Error(t, err)
}

func TestSecp256k1_SharedSecretIsSymmetric(t *testing.T) {
	a, err := FromHex("0x0123456789012345678901234567890123456789012345678901234567890123", Secp256k1)
	require.NoError(t, err)
	b, err := FromHex("0x51d1d6047622bca92272d36b297799ecc152dc2ef91b229debf84fc41e8c73ee", Secp256k1)
	require.NoError(t, err)

	ab, err := a.ComputeSharedSecret(b.PublicKey())
	require.NoError(t, err)
	ba, err := b.ComputeSharedSecret(a.CompressedPublicKey())
	require.NoError(t, err)
	assert.Len(t, ab, 32)
	assert.Equal(t, ab, ba)
}

func TestSecp256k1_AddPoint(t *testing.T) {
	a, _ := FromHex("0x0123456789012345678901234567890123456789012345678901234567890123", Secp256k1)
	b, _ := FromHex("0x51d1d6047622bca92272d36b297799ecc152dc2ef91b229debf84fc41e8c73ee", Secp256k1)

	sum := new(big.Int).Add(new(big.Int).SetBytes(a.PrivateKey()), new(big.Int).SetBytes(b.PrivateKey()))
	sum.Mod(sum, crypto.S256().Params().N)
	c, err := New(Secp256k1, scalarKeyBytes(t, sum))
	require.NoError(t, err)

	got, err := a.AddPoint(b.CompressedPublicKey())
	require.NoError(t, err)
	assert.Equal(t, c.CompressedPublicKey(), got)
}

func scalarKeyBytes(t *testing.T, d *big.Int) []byte {
	t.Helper()
	raw := make([]byte, 32)
	d.FillBytes(raw)
	k, err := crypto.ToECDSA(raw)
	require.NoError(t, err)
	return crypto.FromECDSA(k)
}

// ---------------------------------------------------------------------------
// Ed25519
// ---------------------------------------------------------------------------

const edKey = "06bd0453347618988f1e1c60bd3e57892a4b8603969827d65b1a87d13b463d70"

func TestEd25519_PublicKeyVector(t *testing.T) {
	k, err := FromHex(edKey, Ed25519)
	require.NoError(t, err)
	assert.Equal(t, Ed25519, k.Curve())
	assert.Equal(t, "QsxEYZU82YPvQqrZ8DAfOktZjmbcfjaPwVATlsaJCCM=", base64.StdEncoding.EncodeToString(k.PublicKey()))
	assert.Equal(t, k.PublicKey(), k.CompressedPublicKey())
	assert.Equal(t, edKey, hex.EncodeToString(k.PrivateKey()))

	pub, err := ComputePublicKey(k.PrivateKey(), true, Ed25519)
	require.NoError(t, err)
	assert.Equal(t, k.PublicKey(), pub)
}

func TestEd25519_DERPrefixStripped(t *testing.T) {
	k, err := FromHex("302e020100300506032b657004220420"+edKey, Ed25519)
	require.NoError(t, err)
	assert.Equal(t, edKey, hex.EncodeToString(k.PrivateKey()))

	k, err = FromHex("0x"+edKey, Ed25519)
	require.NoError(t, err)
	assert.Equal(t, edKey, hex.EncodeToString(k.PrivateKey()))
}

func TestEd25519_SignDigest(t *testing.T) {
	k, err := FromHex(edKey, Ed25519)
	require.NoError(t, err)
	body := []byte("transaction body bytes")

	sig, err := k.SignDigest(body)
	require.NoError(t, err)
	assert.Len(t, sig.Bytes(), 64)
	assert.True(t, Verify(k.PublicKey(), body, sig))
	assert.False(t, Verify(k.PublicKey(), []byte("other"), sig))

	again, _ := k.SignDigest(body)
	assert.Equal(t, sig, again, "ed25519 signatures are deterministic")
}

func TestEd25519_SignMessageUnsupported(t *testing.T) {
	k, err := FromHex(edKey, Ed25519)
	require.NoError(t, err)
	_, err = k.SignMessage([]byte("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.UnsupportedOperation))
}

func TestEd25519_SharedSecretIsSymmetric(t *testing.T) {
	a, err := FromHex(edKey, Ed25519)
	require.NoError(t, err)
	b, err := FromHex("a1eb7d5c7ef5e47026b262c973b60fa9d6317c27854eeb25aa82b67d8abc73a2", Ed25519)
	require.NoError(t, err)

	ab, err := a.ComputeSharedSecret(b.PublicKey())
	require.NoError(t, err)
	ba, err := b.ComputeSharedSecret(a.PublicKey())
	require.NoError(t, err)
	assert.Len(t, ab, 32)
	assert.Equal(t, ab, ba)
}

func TestEd25519_AddPointCommutes(t *testing.T) {
	a, _ := FromHex(edKey, Ed25519)
	b, _ := FromHex("a1eb7d5c7ef5e47026b262c973b60fa9d6317c27854eeb25aa82b67d8abc73a2", Ed25519)

	ab, err := a.AddPoint(b.PublicKey())
	require.NoError(t, err)
	ba, err := b.AddPoint(a.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.Len(t, ab, 32)
}

func TestEd25519_InvalidKeys(t *testing.T) {
	for _, in := range []string{"", "0x1234", strings.Repeat("ab", 33)} {
		_, err := FromHex(in, Ed25519)
		assert.Error(t, err, in)
	}
}

// ---------------------------------------------------------------------------
// Generate / ParseCurve
// ---------------------------------------------------------------------------

func TestGenerate_UsesInjectedReader(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 64)

	for _, curve := range []Curve{Secp256k1, Ed25519} {
		a, err := Generate(curve, bytes.NewReader(seed))
		require.NoError(t, err)
		b, err := Generate(curve, bytes.NewReader(seed))
		require.NoError(t, err)
		assert.Equal(t, a.PrivateKey(), b.PrivateKey(), curve)
		assert.Equal(t, curve, a.Curve())
	}

	_, err := Generate(Secp256k1, bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestParseCurve(t *testing.T) {
	for in, want := range map[string]Curve{"": Secp256k1, "ECDSA": Secp256k1, "secp256k1": Secp256k1, "ED25519": Ed25519} {
		got, err := ParseCurve(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCurve("rsa")
	assert.Error(t, err)
}
