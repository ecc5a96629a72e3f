package cmd

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(t *testing.T, s string) *abi.ParamType {
	t.Helper()
	p, err := abi.ParseParamType(s)
	require.NoError(t, err)
	return p
}

func TestParseArg_Elementary(t *testing.T) {
	v, err := parseArg(param(t, "uint256"), "1000")
	require.NoError(t, err)
	assert.Equal(t, "1000", v)

	v, err = parseArg(param(t, "bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = parseArg(param(t, "bool"), "maybe")
	assert.Error(t, err)
}

func TestParseArg_ArrayAndTuple(t *testing.T) {
	v, err := parseArg(param(t, "uint256[]"), "[1, 2, 3]")
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2", "3"}, v)

	v, err = parseArg(param(t, "(address,bool)"), `["0.0.1001", true]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"0.0.1001", true}, v)

	v, err = parseArg(param(t, "tuple(uint256 amount, string memo)"), `{"amount": 5, "memo": "hi"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"amount": "5", "memo": "hi"}, v)

	_, err = parseArg(param(t, "(address,bool)"), `["0.0.1001"]`)
	assert.Error(t, err)
	_, err = parseArg(param(t, "uint8[]"), "1,2")
	assert.Error(t, err)
}

func TestParseArgs_CountMismatch(t *testing.T) {
	types := []*abi.ParamType{param(t, "address"), param(t, "uint256")}
	_, err := parseArgs(types, []string{"0.0.1001"})
	assert.ErrorContains(t, err, "expected 2 argument(s), got 1")

	_, err = parseArgs([]*abi.ParamType{param(t, "bool[]")}, []string{"[1]"})
	assert.ErrorContains(t, err, "argument 0 (bool[])")
}

func TestParseHex(t *testing.T) {
	for in, want := range map[string][]byte{
		"0xdeadbeef": {0xde, 0xad, 0xbe, 0xef},
		"DEADBEEF":   {0xde, 0xad, 0xbe, 0xef},
		"0XdeAD":     {0xde, 0xad},
		"0x":         {},
		"":           {},
	} {
		got, err := parseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseHex("0xabc")
	assert.Error(t, err)
	_, err = parseHex("zz")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	h := common.HexToHash("0x01")
	cases := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{big.NewInt(-42), "-42"},
		{true, "true"},
		{common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045"), "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{[]byte{0xca, 0xfe}, "0xcafe"},
		{abi.Indexed{}, "indexed"},
		{abi.Indexed{Hash: &h}, "indexed(" + h.Hex() + ")"},
		{[]any{big.NewInt(1), "a", []any{false}}, `[1, "a", [false]]`},
		{nil, "null"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatValue(c.in))
	}
}

func TestValuePairs_Labels(t *testing.T) {
	params := []*abi.ParamType{param(t, "address to"), param(t, "uint256")}
	pairs := valuePairs(params, []any{common.Address{}, big.NewInt(1), "extra"})
	require.Len(t, pairs, 3)
	assert.Contains(t, pairs[0][0], "to")
	assert.Contains(t, pairs[1][0], "[1]")
	assert.Equal(t, "[2]", pairs[2][0])
}
