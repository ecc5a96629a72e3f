package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Wallet", [][2]string{
		{"Account", "0.0.1001"},
		{"Curve", "ed25519"},
	})
	assert.Contains(t, result, "Wallet")
	assert.Contains(t, result, "Account")
	assert.Contains(t, result, "0.0.1001")
	assert.Contains(t, result, "ed25519")
}

func TestKeyValueBlockSkipsEmptyValues(t *testing.T) {
	result := KeyValueBlock("", [][2]string{
		{"Alias", ""},
		{"Curve", "secp256k1"},
	})
	assert.NotContains(t, result, "Alias")
	assert.Contains(t, result, "Curve")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("Keystore", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	i1, i2, i3 := strings.Index(result, "First"), strings.Index(result, "Second"), strings.Index(result, "Third")
	require.Greater(t, i1, -1)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{{"Key", "Val"}})
	// lipgloss RoundedBorder uses ╭ and ╰ for corners.
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableCreatesEmptyTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}, {Title: "Address", Width: 20}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableRenderContainsHeadersAndRows(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Network", Width: 10}, {Title: "Chain", Width: 6}})
	tbl.AddRow("testnet", "296")
	tbl.AddRow("mainnet", "295")

	result := tbl.Render()
	for _, s := range []string{"Network", "Chain", "testnet", "296", "mainnet", "295", "------"} {
		assert.Contains(t, result, s)
	}
	assert.Less(t, strings.Index(result, "testnet"), strings.Index(result, "mainnet"))
}

func TestTableRenderEmptyMessage(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	assert.NotContains(t, tbl.Render(), "no wallets")

	tbl.Empty = "no wallets"
	assert.Contains(t, tbl.Render(), "no wallets")
}

func TestTableRenderRowShorterThanColumns(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A", Width: 5}, {Title: "B", Width: 5}, {Title: "C", Width: 5}})
	tbl.AddRow("only1")
	assert.Contains(t, tbl.Render(), "only1")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5))
	assert.Equal(t, "abcde", fit("abcde", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, "é    ", fit("é", 5))
}
