package abi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word renders n as one 32-byte ABI word in hex.
func word(n uint64) string {
	return fmt.Sprintf("%064x", n)
}

// padRight pads hex data to a whole number of words.
func padRight(h string) string {
	for len(h)%64 != 0 {
		h += "0"
	}
	return h
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	require.NoError(t, err)
	return b
}

func encodeHex(t *testing.T, types []string, values ...any) string {
	t.Helper()
	out, err := DefaultCoder.EncodeTypes(types, values)
	require.NoError(t, err)
	return hex.EncodeToString(out)
}

// ---------------------------------------------------------------------------
// Numbers
// ---------------------------------------------------------------------------

func TestNumberCoder_ZeroAndOneForms(t *testing.T) {
	zero := strings.Repeat("0", 64)
	for _, v := range []any{0, "0", "0x0", "0x0000", "0x00000", big.NewInt(0), uint64(0)} {
		assert.Equal(t, zero, encodeHex(t, []string{"uint256"}, v), "%v", v)
	}
	for _, v := range []any{1, "1", "0x1", "0x01", "0x00001", big.NewInt(1), int8(1)} {
		assert.Equal(t, word(1), encodeHex(t, []string{"uint256"}, v), "%v", v)
	}
}

func TestNumberCoder_NegativeOne(t *testing.T) {
	allOnes := strings.Repeat("f", 64)
	for _, v := range []any{-1, "-1", "-0x1", "-0x01", big.NewInt(-1)} {
		for _, typ := range []string{"int256", "int8", "int32"} {
			assert.Equal(t, allOnes, encodeHex(t, []string{typ}, v), "%s %v", typ, v)
		}
	}

	out, err := DefaultCoder.DecodeTypes([]string{"int8"}, mustHex(t, allOnes))
	require.NoError(t, err)
	assert.Equal(t, "-1", out[0].(*big.Int).String())

	_, err = DefaultCoder.EncodeTypes([]string{"uint256"}, []any{-1})
	assert.True(t, errors.Is(err, errs.ValueOutOfBounds))
}

func TestNumberCoder_Uint8Range(t *testing.T) {
	for i := 0; i <= 255; i++ {
		data, err := DefaultCoder.EncodeTypes([]string{"uint8"}, []any{i})
		require.NoError(t, err, i)
		out, err := DefaultCoder.DecodeTypes([]string{"uint8"}, data)
		require.NoError(t, err, i)
		assert.Equal(t, int64(i), out[0].(*big.Int).Int64())
	}
	for _, bad := range []any{256, -1, "0x100", 1000} {
		_, err := DefaultCoder.EncodeTypes([]string{"uint8"}, []any{bad})
		require.Error(t, err, bad)
		assert.Equal(t, "value out-of-bounds", errs.ReasonOf(err), bad)
	}
}

func TestNumberCoder_Int8Range(t *testing.T) {
	for i := -128; i <= 127; i++ {
		data, err := DefaultCoder.EncodeTypes([]string{"int8"}, []any{i})
		require.NoError(t, err, i)
		out, err := DefaultCoder.DecodeTypes([]string{"int8"}, data)
		require.NoError(t, err, i)
		assert.Equal(t, int64(i), out[0].(*big.Int).Int64())
	}
	for _, bad := range []any{128, -129, "0x80", "-0x81"} {
		_, err := DefaultCoder.EncodeTypes([]string{"int8"}, []any{bad})
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, errs.ValueOutOfBounds), bad)
	}
}

func TestNumberCoder_256BitBounds(t *testing.T) {
	two256 := new(big.Int).Lsh(big.NewInt(1), 256)
	maxUint := new(big.Int).Sub(two256, big.NewInt(1))
	minInt := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	belowMin := new(big.Int).Sub(minInt, big.NewInt(1))

	data, err := DefaultCoder.EncodeTypes([]string{"uint256"}, []any{maxUint})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("f", 64), hex.EncodeToString(data))
	out, err := DefaultCoder.DecodeTypes([]string{"uint256"}, data)
	require.NoError(t, err)
	assert.Equal(t, 0, maxUint.Cmp(out[0].(*big.Int)))

	_, err = DefaultCoder.EncodeTypes([]string{"uint256"}, []any{two256})
	assert.True(t, errors.Is(err, errs.ValueOutOfBounds))

	data, err = DefaultCoder.EncodeTypes([]string{"int256"}, []any{minInt})
	require.NoError(t, err)
	assert.Equal(t, "8"+strings.Repeat("0", 63), hex.EncodeToString(data))
	out, err = DefaultCoder.DecodeTypes([]string{"int256"}, data)
	require.NoError(t, err)
	assert.Equal(t, 0, minInt.Cmp(out[0].(*big.Int)))

	_, err = DefaultCoder.EncodeTypes([]string{"int256"}, []any{belowMin})
	assert.True(t, errors.Is(err, errs.ValueOutOfBounds))
}

func TestNumberCoder_DecodeMasksToWidth(t *testing.T) {
	// upper bits beyond the declared width are ignored
	data := mustHex(t, strings.Repeat("f", 62)+"05")
	out, err := DefaultCoder.DecodeTypes([]string{"uint8"}, data)
	require.NoError(t, err)
	assert.Equal(t, "5", out[0].(*big.Int).String())

	out, err = DefaultCoder.DecodeTypes([]string{"int16"}, mustHex(t, strings.Repeat("0", 60)+"8000"))
	require.NoError(t, err)
	assert.Equal(t, "-32768", out[0].(*big.Int).String())
}

func TestNumberCoder_InvalidValue(t *testing.T) {
	for _, bad := range []any{"hello", 1.5, true, nil} {
		_, err := DefaultCoder.EncodeTypes([]string{"uint256"}, []any{bad})
		require.Error(t, err, bad)
		assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
	}
}

// ---------------------------------------------------------------------------
// Fixed bytes
// ---------------------------------------------------------------------------

func TestFixedBytesCoder_Errors(t *testing.T) {
	zeroHex := "0x" + strings.Repeat("0", 64)
	cases := map[string][]string{
		"bytes4":  {"0x", "0x00000", "0x000", zeroHex, "0x12345", "0x123456", "0x123", "0x12"},
		"bytes32": {"0x", "0x00000", "0x000", "0x12345", "0x123456", zeroHex + "0", zeroHex + "00"},
	}
	for typ, values := range cases {
		for _, v := range values {
			_, err := DefaultCoder.EncodeTypes([]string{typ}, []any{v})
			require.Error(t, err, "%s %s", typ, v)
			if len(v)%2 == 1 {
				assert.Equal(t, "hex data is odd-length", errs.ReasonOf(err), "%s %s", typ, v)
			} else {
				assert.Equal(t, "incorrect data length", errs.ReasonOf(err), "%s %s", typ, v)
			}
		}
	}
}

func TestFixedBytesCoder_RoundTrip(t *testing.T) {
	got := encodeHex(t, []string{"bytes4"}, "0x12345678")
	assert.Equal(t, padRight("12345678"), got)

	out, err := DefaultCoder.DecodeTypes([]string{"bytes4"}, mustHex(t, got))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, out[0])

	h := common.HexToHash("0xaa")
	assert.Equal(t, h.Hex()[2:], encodeHex(t, []string{"bytes32"}, h))
	assert.Equal(t, padRight("0102"), encodeHex(t, []string{"bytes2"}, [2]byte{1, 2}))
}

// ---------------------------------------------------------------------------
// Bool / address
// ---------------------------------------------------------------------------

func TestBoolCoder(t *testing.T) {
	assert.Equal(t, word(1), encodeHex(t, []string{"bool"}, true))
	assert.Equal(t, word(0), encodeHex(t, []string{"bool"}, false))

	out, err := DefaultCoder.DecodeTypes([]string{"bool"}, mustHex(t, word(7)))
	require.NoError(t, err)
	assert.Equal(t, true, out[0])

	_, err = DefaultCoder.EncodeTypes([]string{"bool"}, []any{1})
	assert.Error(t, err)
}

func TestBoolCoder_DecodeEmptyData(t *testing.T) {
	_, err := DefaultCoder.DecodeTypes([]string{"bool"}, mustHex(t, "0x"))
	require.Error(t, err)
	assert.Equal(t, "data out-of-bounds", errs.ReasonOf(err))
	assert.Equal(t, errs.CodeBufferOverrun, errs.CodeOf(err))
}

func TestAddressCoder(t *testing.T) {
	const addr = "0x851b9167B7cbf772D38eFaf89705b35022880A07"
	want := strings.Repeat("0", 24) + strings.ToLower(addr[2:])

	assert.Equal(t, want, encodeHex(t, []string{"address"}, addr))
	assert.Equal(t, want, encodeHex(t, []string{"address"}, strings.ToLower(addr[2:])))
	assert.Equal(t, want, encodeHex(t, []string{"address"}, common.HexToAddress(addr)))
	assert.Equal(t, word(98), encodeHex(t, []string{"address"}, "0.0.98"))

	out, err := DefaultCoder.DecodeTypes([]string{"address"}, mustHex(t, want))
	require.NoError(t, err)
	assert.Equal(t, addr, out[0].(common.Address).Hex())

	_, err = DefaultCoder.EncodeTypes([]string{"address"}, []any{"0x851b9167B7cbf772D38eFaf89705b35022880a07"})
	assert.Error(t, err, "bad checksum")
}

// ---------------------------------------------------------------------------
// Dynamic layout
// ---------------------------------------------------------------------------

func TestCoder_HeadTailLayout(t *testing.T) {
	want := word(1) + word(0x40) + word(5) + padRight(hex.EncodeToString([]byte("hello")))
	assert.Equal(t, want, encodeHex(t, []string{"uint256", "string"}, 1, "hello"))

	out, err := DefaultCoder.DecodeTypes([]string{"uint256", "string"}, mustHex(t, want))
	require.NoError(t, err)
	assert.Equal(t, "1", out[0].(*big.Int).String())
	assert.Equal(t, "hello", out[1])
}

func TestCoder_DynamicArrayOfStrings(t *testing.T) {
	want := word(0x20) + // offset of the array
		word(2) + // count
		word(0x40) + word(0x80) + // element offsets, relative to after the count
		word(1) + padRight("61") +
		word(2) + padRight("6263")
	assert.Equal(t, want, encodeHex(t, []string{"string[]"}, []string{"a", "bc"}))

	out, err := DefaultCoder.DecodeTypes([]string{"string[]"}, mustHex(t, want))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "bc"}, out[0])
}

func TestCoder_StaticArrayIsInline(t *testing.T) {
	want := word(1) + word(2) + word(3)
	assert.Equal(t, want, encodeHex(t, []string{"uint256[3]"}, []int{1, 2, 3}))

	_, err := DefaultCoder.EncodeTypes([]string{"uint256[3]"}, []any{[]int{1, 2}})
	require.Error(t, err)
	assert.Equal(t, "wrong number of array elements", errs.ReasonOf(err))
}

func TestCoder_TupleRoundTrip(t *testing.T) {
	types := []string{"(address a, string[] b)[]", "bytes", "bool"}
	addr := common.HexToAddress("0x14791697260E4c9A71f18484C9f997B308e59325")
	values := []any{
		[]any{
			[]any{addr, []string{"x", "yz"}},
			map[string]any{"a": addr, "b": []string{}},
		},
		[]byte{0xde, 0xad, 0xbe, 0xef},
		true,
	}

	data, err := DefaultCoder.EncodeTypes(types, values)
	require.NoError(t, err)
	out, err := DefaultCoder.DecodeTypes(types, data)
	require.NoError(t, err)

	items := out[0].([]any)
	require.Len(t, items, 2)
	first := items[0].([]any)
	assert.Equal(t, addr, first[0])
	assert.Equal(t, []any{"x", "yz"}, first[1])
	assert.Equal(t, []any{}, items[1].([]any)[1])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out[1])
	assert.Equal(t, true, out[2])
}

func TestCoder_TupleMapMissingName(t *testing.T) {
	_, err := DefaultCoder.EncodeTypes([]string{"(uint256 a, uint256)"}, []any{map[string]any{"a": 1}})
	assert.Error(t, err)
}

func TestCoder_LengthMismatch(t *testing.T) {
	_, err := DefaultCoder.EncodeTypes([]string{"uint256", "bool"}, []any{1})
	require.Error(t, err)
	assert.Equal(t, "types/values length mismatch", errs.ReasonOf(err))
}

func TestCoder_OversizedArrayCount(t *testing.T) {
	data := mustHex(t, word(0x20)+word(1000))
	_, err := DefaultCoder.DecodeTypes([]string{"uint256[]"}, data)
	require.Error(t, err)
	assert.Equal(t, "insufficient data length", errs.ReasonOf(err))
	assert.Equal(t, errs.CodeBufferOverrun, errs.CodeOf(err))
}

func TestCoder_ArrayCountOverflow(t *testing.T) {
	// count*32 wraps to zero in int64
	data := mustHex(t, word(0x20)+word(1<<59))
	_, err := DefaultCoder.DecodeTypes([]string{"uint256[]"}, data)
	require.Error(t, err)
	assert.Equal(t, errs.CodeBufferOverrun, errs.CodeOf(err))

	data = mustHex(t, word(0x20)+strings.Repeat("f", 64))
	_, err = DefaultCoder.DecodeTypes([]string{"uint256[]"}, data)
	require.Error(t, err)
	assert.Equal(t, errs.CodeBufferOverrun, errs.CodeOf(err))
}

func TestCoder_FixedArrayLongerThanData(t *testing.T) {
	_, err := DefaultCoder.DecodeTypes([]string{"uint256[35184372088832]"}, mustHex(t, word(1)))
	require.Error(t, err)
	assert.Equal(t, "insufficient data length", errs.ReasonOf(err))
	assert.Equal(t, errs.CodeBufferOverrun, errs.CodeOf(err))

	_, err = DefaultCoder.DecodeTypes([]string{"uint256[3]"}, mustHex(t, word(1)+word(2)))
	require.Error(t, err)

	out, err := DefaultCoder.DecodeTypes([]string{"uint256[2]"}, mustHex(t, word(1)+word(2)))
	require.NoError(t, err)
	assert.Len(t, out[0], 2)
}

func TestCoder_OffsetOutOfBounds(t *testing.T) {
	_, err := DefaultCoder.DecodeTypes([]string{"bytes"}, mustHex(t, word(0x1000)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.DataOutOfBounds))
}

func TestCoder_AllowLoose(t *testing.T) {
	full := mustHex(t, word(0x20)+word(2)+padRight("1234"))
	truncated := full[:len(full)-30]

	_, err := DefaultCoder.DecodeTypes([]string{"bytes"}, truncated)
	require.Error(t, err)

	loose := &Coder{AllowLoose: true}
	out, err := loose.DecodeTypes([]string{"bytes"}, truncated)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, out[0])
}

func TestCoder_EmptyTypes(t *testing.T) {
	out, err := DefaultCoder.Encode(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	vals, err := DefaultCoder.Decode(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}
