package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	abiSource     string
	abiFormatFlag string
)

var selectorRe = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Encode and decode Solidity ABI data",
	Long: `Encode and decode calldata, return data and constructor arguments.

Functions are given as human-readable signatures, or as a name, signature
or selector resolved against --abi (a JSON ABI file or a built-in: erc20,
erc721, hts).

Array and tuple arguments are written as JSON:
  hethers abi encode "f(uint256[],(address,bool))" '[1,2]' '["0.0.1001",true]'`,
}

var abiEncodeCmd = &cobra.Command{
	Use:   "encode <signature> [args...]",
	Short: "Encode calldata, constructor arguments or a custom error",
	Long: `Encode arguments for a function (selector ‖ args), a constructor
(args only) or a custom error (selector ‖ args).

Addresses may be EVM addresses or Hedera account ids.

Examples:
  hethers abi encode "transfer(address,uint256)" 0.0.1001 1000
  hethers abi encode "constructor(string,uint8)" Token 18
  hethers abi encode transfer 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 1 --abi erc20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, frag, err := encodeCall(abiSource, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Encoded "+cases.Title(language.English).String(frag.Kind()), [][2]string{
			{"Signature", frag.Format(abi.FormatSighash)},
			{"Size", fmt.Sprintf("%d bytes", len(data))},
		}))
		fmt.Println(hexutil.Encode(data))
		return nil
	},
}

var abiDecodeCmd = &cobra.Command{
	Use:   "decode <signature|selector> <calldata>",
	Short: "Decode calldata",
	Long: `Decode calldata against a function signature.

A bare 0x selector is looked up in the built-in ABIs when --abi is not
given.

Examples:
  hethers abi decode "transfer(address,uint256)" 0xa9059cbb...
  hethers abi decode 0xa9059cbb 0xa9059cbb...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseHex(args[1])
		if err != nil {
			return fmt.Errorf("invalid calldata: %w", err)
		}
		fn, values, err := decodeCall(abiSource, args[0], data)
		if err != nil {
			return err
		}
		pairs := [][2]string{{"Function", ui.Val(fn.Format(abi.FormatSighash))}}
		pairs = append(pairs, valuePairs(fn.Inputs, values)...)
		fmt.Println(ui.KeyValueBlock("Decoded Calldata", pairs))
		return nil
	},
}

var abiResultCmd = &cobra.Command{
	Use:   "result <signature> <data>",
	Short: "Decode function return data",
	Long: `Decode the return data of a call. Revert payloads are reported with the
error name and arguments.

Examples:
  hethers abi result "function balanceOf(address) view returns (uint256)" 0x...
  hethers abi result decimals 0x...12 --abi erc20`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseHex(args[1])
		if err != nil {
			return fmt.Errorf("invalid result data: %w", err)
		}
		iface, fn, err := resolveFunction(abiSource, args[0])
		if err != nil {
			return err
		}
		values, err := iface.DecodeFunctionResult(fn, data)
		if err != nil {
			return err
		}
		pairs := [][2]string{{"Function", ui.Val(fn.Format(abi.FormatSighash))}}
		pairs = append(pairs, valuePairs(fn.Outputs, values)...)
		fmt.Println(ui.KeyValueBlock("Decoded Result", pairs))
		return nil
	},
}

var abiFormatCmd = &cobra.Command{
	Use:   "format <human-readable...|json-file>",
	Short: "Normalize an ABI to sighash, minimal, full or JSON form",
	Long: `Parse an ABI and print it in the requested format.

Examples:
  hethers abi format "function transfer(address to, uint amount) returns (bool)"
  hethers abi format ./Token.abi.json --format minimal
  hethers abi format erc20 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := interfaceFromArgs(args)
		if err != nil {
			return err
		}
		out, err := formatInterface(iface, abiFormatFlag)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// encodeCall encodes args for the function, constructor or error named by sig.
func encodeCall(src, sig string, raw []string) ([]byte, abi.Fragment, error) {
	iface, frag, err := resolveEncodable(src, sig)
	if err != nil {
		return nil, nil, err
	}
	values, err := parseArgs(frag.InputTypes(), raw)
	if err != nil {
		return nil, nil, err
	}
	var data []byte
	switch f := frag.(type) {
	case *abi.FunctionFragment:
		data, err = iface.EncodeFunctionData(f, values...)
	case *abi.ConstructorFragment:
		data, err = iface.EncodeDeploy(values...)
	case *abi.ErrorFragment:
		data, err = iface.EncodeErrorResult(f, values...)
	default:
		return nil, nil, fmt.Errorf("cannot encode a %s; use `hethers filter` for events", frag.Kind())
	}
	return data, frag, err
}

func resolveEncodable(src, sig string) (*abi.Interface, abi.Fragment, error) {
	if src == "" {
		frag, err := abi.ParseFragment(sig)
		if err != nil {
			return nil, nil, err
		}
		iface, err := abi.NewInterface([]abi.Fragment{frag})
		return iface, frag, err
	}
	iface, err := openABI(src)
	if err != nil {
		return nil, nil, err
	}
	if sig == "constructor" {
		return iface, iface.Deploy, nil
	}
	fn, err := iface.GetFunction(sig)
	if err == nil {
		return iface, fn, nil
	}
	if e, eerr := iface.GetError(sig); eerr == nil {
		return iface, e, nil
	}
	return nil, nil, err
}

// decodeCall decodes calldata. A bare selector without src is resolved
// against the built-ins.
func decodeCall(src, key string, data []byte) (*abi.FunctionFragment, []any, error) {
	if src == "" && selectorRe.MatchString(key) {
		for _, m := range abi.LookupSelector(key) {
			fn, ok := m.Fragment.(*abi.FunctionFragment)
			if !ok {
				continue
			}
			log.Debug().Str("builtin", m.Builtin).Str("function", fn.Format(abi.FormatSighash)).Msg("selector resolved")
			values, err := abi.Builtin(m.Builtin).DecodeFunctionData(fn, data)
			return fn, values, err
		}
		return nil, nil, fmt.Errorf("selector %s is not in the built-in ABIs; pass a signature or --abi", key)
	}
	iface, fn, err := resolveFunction(src, key)
	if err != nil {
		return nil, nil, err
	}
	values, err := iface.DecodeFunctionData(fn, data)
	return fn, values, err
}

// resolveFunction parses sig as a function fragment, or looks it up in src.
func resolveFunction(src, sig string) (*abi.Interface, *abi.FunctionFragment, error) {
	if src == "" {
		frag, err := abi.ParseFragment(sig)
		if err != nil {
			return nil, nil, err
		}
		fn, ok := frag.(*abi.FunctionFragment)
		if !ok {
			return nil, nil, fmt.Errorf("%q is not a function", sig)
		}
		iface, err := abi.NewInterface([]abi.Fragment{fn})
		return iface, fn, err
	}
	iface, err := openABI(src)
	if err != nil {
		return nil, nil, err
	}
	fn, err := iface.GetFunction(sig)
	return iface, fn, err
}

// resolveEvent parses sig as an event fragment, or looks it up in src.
func resolveEvent(src, sig string) (*abi.Interface, *abi.EventFragment, error) {
	if src == "" {
		if !strings.HasPrefix(strings.TrimSpace(sig), "event") {
			sig = "event " + sig
		}
		frag, err := abi.ParseFragment(sig)
		if err != nil {
			return nil, nil, err
		}
		ev, ok := frag.(*abi.EventFragment)
		if !ok {
			return nil, nil, fmt.Errorf("%q is not an event", sig)
		}
		iface, err := abi.NewInterface([]abi.Fragment{ev})
		return iface, ev, err
	}
	iface, err := openABI(src)
	if err != nil {
		return nil, nil, err
	}
	ev, err := iface.GetEvent(sig)
	return iface, ev, err
}

// openABI loads a built-in by id or a JSON ABI file.
func openABI(src string) (*abi.Interface, error) {
	if iface := abi.Builtin(src); iface != nil {
		return iface, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading abi: %w", err)
	}
	return abi.ParseJSON(data)
}

// interfaceFromArgs accepts a single built-in id or file, or one
// human-readable signature per argument.
func interfaceFromArgs(args []string) (*abi.Interface, error) {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "[") {
		return abi.ParseJSON([]byte(args[0]))
	}
	if len(args) == 1 && !strings.Contains(args[0], "(") {
		return openABI(args[0])
	}
	return abi.ParseHumanReadable(args...)
}

func formatInterface(iface *abi.Interface, format string) (string, error) {
	var ft abi.FormatType
	switch strings.ToLower(format) {
	case "", "full":
		ft = abi.FormatFull
	case "minimal":
		ft = abi.FormatMinimal
	case "sighash":
		ft = abi.FormatSighash
	case "json":
		data, err := json.MarshalIndent(iface, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q — use sighash, minimal, full or json", format)
	}
	return strings.Join(iface.Format(ft), "\n"), nil
}

func init() {
	abiCmd.PersistentFlags().StringVar(&abiSource, "abi", "", "ABI JSON file or built-in id (erc20, erc721, hts)")
	abiFormatCmd.Flags().StringVar(&abiFormatFlag, "format", "full", "output format: sighash, minimal, full, json")
	abiCmd.AddCommand(abiEncodeCmd, abiDecodeCmd, abiResultCmd, abiFormatCmd)
}
