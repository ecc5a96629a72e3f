package abi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Modifiers and format("full")
// ---------------------------------------------------------------------------

func TestParseParamType_FullFormat(t *testing.T) {
	cases := []struct{ in, want string }{
		{"address", "address"},
		{"address foo", "address foo"},
		{"address payable", "address"},
		{"address payable foo", "address foo"},
		{"uint", "uint256"},
		{"uint16", "uint16"},
		{"uint256", "uint256"},
		{"int", "int256"},
		{"int16", "int16"},
		{"int256", "int256"},
		{"string", "string"},
		{"string memory", "string"},
		{"string calldata", "string"},
		{"string storage", "string"},
		{"string memory foo", "string foo"},
		{"string foo", "string foo"},
		{"string[]", "string[]"},
		{"string[5]", "string[5]"},
		{"uint[] memory", "uint256[]"},
		{"tuple(address a, string[] b) memory foo", "tuple(address a, string[] b) foo"},
		{"byte", "bytes1"},
	}
	for _, tc := range cases {
		pt, err := ParseParamType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, pt.Format(FormatFull), tc.in)
	}
}

func TestParseParamType_InvalidModifier(t *testing.T) {
	for _, in := range []string{"uint256 memory", "bool payable", "string payable", "address memory", "bytes32 calldata"} {
		_, err := ParseParamType(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, errs.InvalidType), in)
		var e *errs.Error
		require.True(t, errors.As(err, &e), in)
		detail, _ := e.Param("detail")
		assert.Equal(t, "invalid modifier", detail, in)
	}
}

func TestParseParamType_GrammarErrorsAreInvalidType(t *testing.T) {
	cases := map[string]string{
		"uint256 foo bar":      "unexpected token",
		"(uint256,bool))":      "unexpected token",
		"address indexed from": "unexpected indexed modifier",
		"(uint256[,bool)":      "unbalanced parenthesis",
		"(uint256,,bool)":      "missing parameter",
		"tuple(address a,) b":  "missing parameter",
		"uint256 memory":       "invalid modifier",
	}
	for in, want := range cases {
		_, err := ParseParamType(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, errs.InvalidType), in)
		assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err), in)
		var e *errs.Error
		require.True(t, errors.As(err, &e), in)
		detail, _ := e.Param("detail")
		assert.Equal(t, want, detail, in)
	}
}

func TestParseParamType_InvalidType(t *testing.T) {
	for _, in := range []string{"uint7", "uint264", "int0", "bytes0", "bytes33", "foo", "uint256[0]", "uint256[", "(uint256"} {
		_, err := ParseParamType(in)
		require.Error(t, err, in)
		assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err), in)
	}
	_, err := ParseParamType("uint7")
	assert.True(t, errors.Is(err, errs.InvalidType))
}

func TestParseParam_Indexed(t *testing.T) {
	_, err := ParseParamType("address indexed from")
	require.Error(t, err)

	pt, err := ParseParam("address indexed from", true)
	require.NoError(t, err)
	assert.True(t, pt.Indexed)
	assert.Equal(t, "from", pt.Name)
	assert.Equal(t, "address indexed from", pt.Format(FormatFull))
	assert.Equal(t, "address indexed", pt.Format(FormatMinimal))
	assert.Equal(t, "address", pt.Format(FormatSighash))
}

// ---------------------------------------------------------------------------
// Structure
// ---------------------------------------------------------------------------

func TestParseParamType_Structure(t *testing.T) {
	pt := MustParseParamType("(address a, string[] b)[2][] foo")
	assert.Equal(t, "foo", pt.Name)
	assert.Equal(t, "tuple[2][]", pt.Type)
	assert.Equal(t, "tuple", pt.BaseType)
	assert.Equal(t, -1, pt.ArrayLength)
	require.NotNil(t, pt.ArrayChildren)
	assert.Equal(t, 2, pt.ArrayChildren.ArrayLength)

	tup := pt.ArrayChildren.ArrayChildren
	require.True(t, tup.IsTuple())
	require.Len(t, tup.Components, 2)
	assert.Equal(t, "string[]", tup.Components[1].Type)
	assert.Equal(t, "string", tup.Components[1].BaseType)

	assert.Equal(t, "(address,string[])[2][]", pt.Format(FormatSighash))
	assert.Equal(t, "tuple(address,string[])[2][]", pt.Format(FormatMinimal))
	assert.True(t, pt.IsDynamic())
}

func TestParamType_IsDynamic(t *testing.T) {
	cases := map[string]bool{
		"uint256":                false,
		"bytes32":                false,
		"address[4]":             false,
		"(uint8,bool)":           false,
		"(uint8,bool)[2]":        false,
		"bytes":                  true,
		"string":                 true,
		"uint256[]":              true,
		"string[2]":              true,
		"(uint8,string)":         true,
		"tuple(bytes32[2],bool)": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, MustParseParamType(in).IsDynamic(), in)
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestParamType_JSONRoundTrip(t *testing.T) {
	pt := MustParseParamType("tuple(address a, uint256[] b)[] items")
	raw, err := json.Marshal(pt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"items","type":"tuple[]","components":[{"name":"a","type":"address"},{"name":"b","type":"uint256[]"}]}`, string(raw))

	var jp jsonParam
	require.NoError(t, json.Unmarshal(raw, &jp))
	back, err := paramFromJSON(jp, false)
	require.NoError(t, err)
	assert.Equal(t, pt.Format(FormatFull), back.Format(FormatFull))
}

func TestParamFromJSON_RejectsIndexedOutsideEvents(t *testing.T) {
	_, err := paramFromJSON(jsonParam{Name: "x", Type: "uint256", Indexed: true}, false)
	assert.Error(t, err)
}
