package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var selectorCmd = &cobra.Command{
	Use:   "selector <signature>",
	Short: "Compute a 4-byte function or error selector",
	Long: `Compute the selector of a function or custom error. Parameter names,
modifiers and type aliases are normalized first.

Examples:
  hethers selector "transfer(address to, uint amount)"   # → 0xa9059cbb
  hethers selector "error InsufficientBalance(uint256)"
  hethers selector lookup 0xa9059cbb`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if selectorRe.MatchString(args[0]) {
			return printLookup(args[0])
		}
		frag, sel, err := selectorFor(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Selector", [][2]string{
			{"Signature", frag.Format(abi.FormatSighash)},
			{"Selector", ui.Val(hexutil.Encode(sel[:]))},
		}))
		return nil
	},
}

var selectorLookupCmd = &cobra.Command{
	Use:   "lookup <selector|topic>",
	Short: "Find a selector or event topic in the built-in ABIs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLookup(args[0])
	},
}

var topicCmd = &cobra.Command{
	Use:   "topic <event-signature>",
	Short: "Compute the topic 0 hash of an event",
	Long: `Compute keccak256 of an event's canonical signature.

Examples:
  hethers topic "Transfer(address indexed from, address indexed to, uint256 value)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ev, err := resolveEvent("", args[0])
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Signature", ev.Format(abi.FormatSighash)},
			{"Topic", ui.Val(abi.GetEventTopic(ev).Hex())},
		}
		if ev.Anonymous {
			pairs = append(pairs, [2]string{"Note", ui.Warn("anonymous events do not emit topic 0")})
		}
		fmt.Println(ui.KeyValueBlock("Event Topic", pairs))
		return nil
	},
}

// selectorFor returns the parsed fragment and its selector.
func selectorFor(sig string) (abi.Fragment, [4]byte, error) {
	frag, err := abi.ParseFragment(sig)
	if err != nil {
		return nil, [4]byte{}, err
	}
	switch frag.(type) {
	case *abi.FunctionFragment, *abi.ErrorFragment:
		return frag, abi.GetSighash(frag), nil
	}
	return nil, [4]byte{}, fmt.Errorf("%s fragments have no selector; try `hethers topic`", frag.Kind())
}

func printLookup(key string) error {
	matches := abi.LookupSelector(key)
	if len(matches) == 0 {
		fmt.Println(ui.Info(fmt.Sprintf("%s is not in the built-in ABIs (%v)", key, abi.BuiltinNames())))
		return nil
	}
	t := ui.NewTable([]ui.Column{
		{Title: "ABI", Width: 8},
		{Title: "Kind", Width: 12},
		{Title: "Signature", Width: 60},
	})
	for _, m := range matches {
		t.AddRow(ui.Val(m.Builtin), ui.Meta(m.Fragment.Kind()), m.Fragment.Format(abi.FormatFull))
	}
	fmt.Println(t.Render())
	return nil
}

func init() {
	selectorCmd.AddCommand(selectorLookupCmd)
}
