package hapi

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	edPrivate   = "06bd0453347618988f1e1c60bd3e57892a4b8603969827d65b1a87d13b463d70"
	edPublic    = "42cc4461953cd983ef42aad9f0301f3a4b598e66dc7e368fc1501396c6890823"
	secpPrivate = "6a73cd9b03647e83ef937888a5258a26e4c766dbf41ddd974f15e32d09cfe9c0"
)

var validStart = time.Unix(1650000000, 123456789).UTC()

func header(data Data) *TransactionBody {
	return &TransactionBody{
		TransactionID:  TransactionID{Account: address.MustParseAccount("0.0.1001"), ValidStart: validStart},
		NodeAccountID:  address.MustParseAccount("0.0.3"),
		TransactionFee: DefaultTransactionFee,
		ValidDuration:  DefaultValidDuration,
		Memo:           "hethers",
		Data:           data,
	}
}

// --- wire ---

func TestAccountIDBytes(t *testing.T) {
	got := appendAccountID(nil, 2, address.MustParseAccount("0.0.1001"))
	assert.Equal(t, "120318e907", hex.EncodeToString(got))
}

func TestDurationBytes(t *testing.T) {
	assert.Equal(t, "22020878", hex.EncodeToString(appendDuration(nil, 4, 120*time.Second)))
}

func TestZeroFieldsOmitted(t *testing.T) {
	assert.Empty(t, appendVarint(nil, 1, 0))
	assert.Empty(t, appendBytes(nil, 1, nil))
	assert.Empty(t, appendString(nil, 1, ""))
	assert.Empty(t, appendBool(nil, 1, false))
	assert.Equal(t, "0a00", hex.EncodeToString(appendMessage(nil, 1, nil)))
}

func TestSint64(t *testing.T) {
	assert.Equal(t, "1001", hex.EncodeToString(appendSint64(nil, 2, -1)))
	assert.Equal(t, "1002", hex.EncodeToString(appendSint64(nil, 2, 1)))
}

// --- bodies ---

func TestBodyRoundTrip(t *testing.T) {
	edKey := Key{Ed25519: mustHex(t, edPublic)}
	tests := []struct {
		name string
		data Data
	}{
		{"contract call", &ContractCall{
			Contract:           ContractIDFromAddress(common.HexToAddress("0x0000000000000000000000000000000000001234")),
			Gas:                300000,
			Amount:             5,
			FunctionParameters: mustHex(t, "a9059cbb"),
		}},
		{"contract call by evm address", &ContractCall{
			Contract: ContractIDFromAddress(common.HexToAddress("0x6a9ac8e3b5c3ec8e1d0a26e4ee4d1bd8b1d1e0f2")),
			Gas:      21000,
		}},
		{"contract create", &ContractCreate{
			BytecodeFile:          FileID{Num: 1001},
			Gas:                   1000000,
			InitialBalance:        10,
			AutoRenewPeriod:       DefaultAutoRenewPeriod,
			ConstructorParameters: mustHex(t, "0000000000000000000000000000000000000000000000000000000000000001"),
		}},
		{"crypto create", &CryptoCreate{Key: edKey, InitialBalance: 100, AutoRenewPeriod: DefaultAutoRenewPeriod}},
		{"crypto transfer", NewHbarTransfer(address.MustParseAccount("0.0.1001"), address.MustParseAccount("0.0.98"), 42)},
		{"file create", &FileCreate{
			Expiration: validStart.Add(DefaultFileExpiration),
			Keys:       []Key{edKey},
			Contents:   []byte("6080604052"),
		}},
		{"file append", &FileAppend{File: FileID{Num: 2002}, Contents: []byte("348015600f57")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := header(tt.data)
			got, err := UnmarshalTransactionBody(body.Marshal())
			require.NoError(t, err)
			assert.Equal(t, body, got)
		})
	}
}

func TestHbarTransferBalances(t *testing.T) {
	tr := NewHbarTransfer(address.MustParseAccount("0.0.1"), address.MustParseAccount("0.0.2"), 7)
	var sum int64
	for _, aa := range tr.Transfers {
		sum += aa.Amount
	}
	assert.Zero(t, sum)
	assert.Equal(t, int64(-7), tr.Transfers[0].Amount)
}

func TestUnmarshalBodyMalformed(t *testing.T) {
	_, err := UnmarshalTransactionBody([]byte{0x0a, 0x05, 0x01})
	assert.Error(t, err)
}

func TestUnmarshalBodySkipsUnknown(t *testing.T) {
	b := header(nil).Marshal()
	b = appendMessage(b, 19, []byte{0x08, 0x01}) // fileUpdate
	got, err := UnmarshalTransactionBody(b)
	require.NoError(t, err)
	assert.Nil(t, got.Data)
	assert.Equal(t, "hethers", got.Memo)
}

// --- ids and keys ---

func TestTransactionID(t *testing.T) {
	now := time.Unix(1650000005, 5).UTC()
	id := NewTransactionID(address.MustParseAccount("0.0.1001"), now, 5*time.Second)
	assert.Equal(t, "0.0.1001@1650000000.000000005", id.String())
}

func TestContractIDFromAddress(t *testing.T) {
	long := common.HexToAddress("0x00000000000000000000000000000000000003e9")
	id := ContractIDFromAddress(long)
	assert.Equal(t, uint64(1001), id.Num)
	assert.Nil(t, id.EVMAddress)
	assert.Equal(t, long, id.Address())

	evm := common.HexToAddress("0x6a9ac8e3b5c3ec8e1d0a26e4ee4d1bd8b1d1e0f2")
	id = ContractIDFromAddress(evm)
	assert.Equal(t, evm.Bytes(), id.EVMAddress)
	assert.Equal(t, evm, id.Address())
}

func TestParseFileID(t *testing.T) {
	id, err := ParseFileID("0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, FileID{Num: 1234}, id)
	assert.Equal(t, "0.0.1234", id.String())

	_, err = ParseFileID("nope")
	assert.Error(t, err)
}

func TestKeyFromPublic(t *testing.T) {
	secp, err := signingkey.FromHex(secpPrivate, signingkey.Secp256k1)
	require.NoError(t, err)
	compressed := hex.EncodeToString(secp.CompressedPublicKey())

	tests := []struct {
		name  string
		input string
		curve signingkey.Curve
		want  string
	}{
		{"ed25519 raw", edPublic, signingkey.Ed25519, edPublic},
		{"ed25519 der", Ed25519PublicDERPrefix + edPublic, signingkey.Ed25519, edPublic},
		{"secp256k1 compressed", compressed, signingkey.Secp256k1, compressed},
		{"secp256k1 der", Secp256k1PublicDERPrefix + compressed, signingkey.Secp256k1, compressed},
		{"secp256k1 uncompressed", hex.EncodeToString(secp.PublicKey()), signingkey.Secp256k1, compressed},
		{"0x prefix", "0x" + edPublic, signingkey.Ed25519, edPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := ParseKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.curve, k.Curve())
			assert.Equal(t, tt.want, hex.EncodeToString(k.Bytes()))
		})
	}

	_, err = ParseKey("abcd")
	assert.Error(t, err)
	_, err = ParseKey("zz")
	assert.Error(t, err)
}

// --- signed envelope ---

func TestSignedTransactionRoundTrip(t *testing.T) {
	ed, err := signingkey.FromHex(edPrivate, signingkey.Ed25519)
	require.NoError(t, err)
	body := header(NewHbarTransfer(address.MustParseAccount("0.0.1001"), address.MustParseAccount("0.0.98"), 1))
	bodyBytes := body.Marshal()
	sig, err := ed.SignDigest(bodyBytes)
	require.NoError(t, err)

	key := Key{Ed25519: ed.PublicKey()}
	signed := &SignedTransaction{BodyBytes: bodyBytes, SigMap: []SignaturePair{NewSignaturePair(key, sig.Compact())}}
	tx := NewTransaction(signed)

	decoded, err := UnmarshalTransaction(tx.Marshal())
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), decoded.Hash())
	assert.Len(t, decoded.Hash(), 48)

	inner, err := decoded.Signed()
	require.NoError(t, err)
	require.Len(t, inner.SigMap, 1)
	pair := inner.SigMap[0]
	assert.Equal(t, ed.PublicKey(), pair.PubKeyPrefix)
	assert.Nil(t, pair.ECDSASecp256k1)
	assert.True(t, signingkey.Verify(pair.PubKeyPrefix, inner.BodyBytes, sigFrom(pair.Signature())))

	gotBody, err := inner.Body()
	require.NoError(t, err)
	assert.Equal(t, body, gotBody)
}

func TestSignaturePairSecp256k1(t *testing.T) {
	key := Key{ECDSASecp256k1: make([]byte, 33)}
	p := NewSignaturePair(key, make([]byte, 64))
	assert.Nil(t, p.Ed25519)
	assert.Len(t, p.ECDSASecp256k1, 64)
	assert.Len(t, p.PubKeyPrefix, 33)
}

func TestUnmarshalTransactionEmpty(t *testing.T) {
	_, err := UnmarshalTransaction(nil)
	assert.Error(t, err)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func sigFrom(b []byte) signingkey.Signature {
	var s signingkey.Signature
	copy(s.R[:], b[:32])
	copy(s.S[:], b[32:])
	return s
}
