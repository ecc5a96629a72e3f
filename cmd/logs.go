package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	eventsABI string
	logData   string
	logTopics []string
)

var filterCmd = &cobra.Command{
	Use:   "filter <event-signature> [args|null...]",
	Short: "Build the topic filter for an event",
	Long: `Encode an eth_getLogs topic filter. Arguments line up with the event's
inputs; non-indexed inputs are skipped, "null" matches anything and
"a|b" matches either value.

Examples:
  hethers filter "Transfer(address indexed from, address indexed to, uint256)" 0.0.1001
  hethers filter "Transfer(address indexed,address indexed,uint256)" null "0x…a|0x…b"
  hethers filter Transfer null 0.0.1001 --abi erc20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, ev, err := resolveEvent(eventsABI, args[0])
		if err != nil {
			return err
		}
		values, err := filterArgs(ev, args[1:])
		if err != nil {
			return err
		}
		topics, err := iface.EncodeFilterTopics(ev, values)
		if err != nil {
			return err
		}
		pairs := [][2]string{{"Event", ev.Format(abi.FormatSighash)}}
		for i, slot := range topics {
			pairs = append(pairs, [2]string{fmt.Sprintf("topics[%d]", i), formatTopicSlot(slot)})
		}
		if len(topics) == 0 {
			pairs = append(pairs, [2]string{"Topics", ui.Meta("[] (matches every log)")})
		}
		fmt.Println(ui.KeyValueBlock("Topic Filter", pairs))
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Work with event logs",
}

var logsDecodeCmd = &cobra.Command{
	Use:   "decode <event-signature>",
	Short: "Decode an event log",
	Long: `Decode a log's data and topics against an event.

Without --topic, indexed inputs are reported as "indexed".

Examples:
  hethers logs decode "Transfer(address indexed from, address indexed to, uint256 value)" \
    --data 0x...64 --topic 0xddf252ad... --topic 0x... --topic 0x...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, ev, err := resolveEvent(eventsABI, args[0])
		if err != nil {
			return err
		}
		data, err := parseHex(logData)
		if err != nil {
			return fmt.Errorf("invalid --data: %w", err)
		}
		topics, err := parseTopics(logTopics)
		if err != nil {
			return err
		}
		values, err := iface.DecodeEventLog(ev, data, topics)
		if err != nil {
			return err
		}
		pairs := [][2]string{{"Event", ui.Val(ev.Format(abi.FormatSighash))}}
		pairs = append(pairs, valuePairs(ev.Inputs, values)...)
		fmt.Println(ui.KeyValueBlock("Decoded Log", pairs))
		return nil
	},
}

// filterArgs reads positional filter values. "null" is a wildcard and a
// "|" separated list is an OR set.
func filterArgs(ev *abi.EventFragment, raw []string) ([]any, error) {
	if len(raw) > len(ev.Inputs) {
		return nil, fmt.Errorf("%s takes at most %d argument(s)", ev.Name, len(ev.Inputs))
	}
	out := make([]any, len(raw))
	for i, s := range raw {
		p := ev.Inputs[i]
		if s == "null" || !p.Indexed {
			continue
		}
		if !p.IsArray() && !p.IsTuple() && strings.Contains(s, "|") {
			parts := strings.Split(s, "|")
			set := make([]any, len(parts))
			for k, part := range parts {
				v, err := parseArg(p, part)
				if err != nil {
					return nil, err
				}
				set[k] = v
			}
			out[i] = set
			continue
		}
		v, err := parseArg(p, s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseTopics returns nil for no topics so the log decodes without them.
func parseTopics(raw []string) ([]common.Hash, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]common.Hash, len(raw))
	for i, s := range raw {
		b, err := parseHex(s)
		if err != nil || len(b) != common.HashLength {
			return nil, fmt.Errorf("invalid topic %q: expected 32 bytes of hex", s)
		}
		out[i] = common.BytesToHash(b)
	}
	return out, nil
}

func formatTopicSlot(slot []common.Hash) string {
	switch len(slot) {
	case 0:
		return ui.Meta("null")
	case 1:
		return slot[0].Hex()
	}
	parts := make([]string, len(slot))
	for i, h := range slot {
		parts[i] = h.Hex()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func init() {
	filterCmd.Flags().StringVar(&eventsABI, "abi", "", "ABI JSON file or built-in id")
	logsDecodeCmd.Flags().StringVar(&eventsABI, "abi", "", "ABI JSON file or built-in id")
	logsDecodeCmd.Flags().StringVar(&logData, "data", "0x", "log data")
	logsDecodeCmd.Flags().StringArrayVar(&logTopics, "topic", nil, "log topic, repeat in order")
	logsCmd.AddCommand(logsDecodeCmd)
}
