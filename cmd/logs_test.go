package cmd

import (
	"strings"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferSig = "Transfer(address indexed from, address indexed to, uint256 value)"

func TestFilterArgs(t *testing.T) {
	_, ev, err := resolveEvent("", transferSig)
	require.NoError(t, err)

	vals, err := filterArgs(ev, []string{"null", "0.0.1001|0.0.1002", "5"})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Nil(t, vals[0])
	assert.Equal(t, []any{"0.0.1001", "0.0.1002"}, vals[1])
	assert.Nil(t, vals[2], "non-indexed inputs are skipped")

	_, err = filterArgs(ev, []string{"null", "null", "null", "null"})
	assert.ErrorContains(t, err, "at most 3")
}

func TestFilterTopics_OrSet(t *testing.T) {
	iface, ev, err := resolveEvent("", transferSig)
	require.NoError(t, err)
	vals, err := filterArgs(ev, []string{"null", "0.0.1001|0.0.1002"})
	require.NoError(t, err)

	topics, err := iface.EncodeFilterTopics(ev, vals)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, []common.Hash{abi.GetEventTopic(ev)}, topics[0])
	assert.Empty(t, topics[1])
	require.Len(t, topics[2], 2)
	assert.Equal(t, common.BytesToHash(common.HexToAddress("0x00000000000000000000000000000000000003e9").Bytes()), topics[2][0])

	assert.Equal(t, topics[0][0].Hex(), formatTopicSlot(topics[0]))
	assert.True(t, strings.HasPrefix(formatTopicSlot(topics[2]), "["))
}

func TestParseTopics(t *testing.T) {
	got, err := parseTopics(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	topic := "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	got, err = parseTopics([]string{topic})
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{common.HexToHash(topic)}, got)

	_, err = parseTopics([]string{"0x1234"})
	assert.ErrorContains(t, err, "expected 32 bytes")
}

func TestDecodeLog_FromFlags(t *testing.T) {
	iface, ev, err := resolveEvent("erc20", "Transfer")
	require.NoError(t, err)
	topics, err := parseTopics([]string{
		abi.GetEventTopic(ev).Hex(),
		"0x00000000000000000000000000000000000000000000000000000000000003e9",
		"0x00000000000000000000000000000000000000000000000000000000000003ea",
	})
	require.NoError(t, err)
	data, err := parseHex("0x" + strings.Repeat("0", 62) + "64")
	require.NoError(t, err)

	values, err := iface.DecodeEventLog(ev, data, topics)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3e9").Hex(), formatValue(values[0]))
	assert.Equal(t, "100", formatValue(values[2]))
}
