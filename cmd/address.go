package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

type checksumState int

const (
	checksumValid checksumState = iota
	checksumMissing
	checksumMismatch
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Convert between EVM addresses, account ids and aliases",
}

var addressChecksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Validate or convert an address to EIP-55 checksum format",
	Long: `Convert an EVM address to its EIP-55 checksummed form and report
whether the input was already correctly checksummed.

Examples:
  hethers address checksum 0xd8da6bf26964af9d7eed9e03e53415d37aa96045`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		checksummed, state, err := checksumAddress(input)
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Input", input},
			{"Checksummed", ui.Addr(checksummed)},
		}
		switch state {
		case checksumValid:
			pairs = append(pairs, [2]string{"Valid", ui.Success("address is correctly checksummed")})
		case checksumMissing:
			pairs = append(pairs, [2]string{"Valid", ui.Warn("valid address but not checksummed")})
		default:
			pairs = append(pairs, [2]string{"Valid", ui.Err("checksum mismatch")})
		}
		if long := common.HexToAddress(checksummed); address.IsLongZero(long) {
			pairs = append(pairs, [2]string{"Account", address.AccountFromEVM(long).String()})
		}
		fmt.Println(ui.KeyValueBlock("EIP-55 Checksum", pairs))
		return nil
	},
}

var addressFromAccountCmd = &cobra.Command{
	Use:   "from-account <shard.realm.num>",
	Short: "Long-zero EVM address of a Hedera account id",
	Long: `Encode an account id as 4-byte shard ‖ 8-byte realm ‖ 8-byte num.

Examples:
  hethers address from-account 0.0.1001   # → 0x00000000000000000000000000000000000003E9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := address.GetAddressFromAccount(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Account Address", [][2]string{
			{"Account", args[0]},
			{"Address", ui.Addr(addr)},
		}))
		return nil
	},
}

var addressToAccountCmd = &cobra.Command{
	Use:   "to-account <address>",
	Short: "Split an EVM address into shard.realm.num",
	Long: `Decode a long-zero EVM address into its account id. Key-derived
addresses decode too, but do not name an existing account.

Examples:
  hethers address to-account 0x00000000000000000000000000000000000003e9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := address.GetAccountFromAddress(args[0])
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Address", ui.Addr(id.Address().Hex())},
			{"Account", ui.Val(id.String())},
		}
		if !address.IsLongZero(id.Address()) {
			pairs = append(pairs, [2]string{"Note", ui.Warn("not a long-zero address; likely derived from a secp256k1 key")})
		}
		fmt.Println(ui.KeyValueBlock("Account Id", pairs))
		return nil
	},
}

var addressFromAliasCmd = &cobra.Command{
	Use:   "from-alias <alias>",
	Short: "EVM address of a secp256k1 key alias",
	Long: `Derive the EVM address implied by an alias of the form
shard.realm.<base64 public key>. Ed25519 aliases have no EVM address.

Examples:
  hethers address from-alias 0.0.Aj...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, key, err := address.ParseAlias(args[0])
		if err != nil {
			return err
		}
		addr := address.AddressFromAlias(args[0])
		if addr == "" {
			return errs.Unsupported(fmt.Sprintf("alias holds a %d-byte key with no EVM address", len(key)), "fromAlias")
		}
		fmt.Println(ui.KeyValueBlock("Alias Address", [][2]string{
			{"Alias", ui.TruncateAddr(args[0])},
			{"Key size", fmt.Sprintf("%d bytes", len(key))},
			{"Address", ui.Addr(addr)},
		}))
		return nil
	},
}

// checksumAddress returns the EIP-55 form of input and how the input's
// casing compares to it.
func checksumAddress(input string) (string, checksumState, error) {
	out, err := address.GetAddress(input)
	if err == nil {
		if strings.TrimPrefix(input, "0x") == strings.TrimPrefix(out, "0x") {
			return out, checksumValid, nil
		}
		return out, checksumMissing, nil
	}
	if errs.ReasonOf(err) == "bad address checksum" {
		return common.HexToAddress(input).Hex(), checksumMismatch, nil
	}
	return "", 0, err
}

func init() {
	addressCmd.AddCommand(addressChecksumCmd, addressFromAccountCmd, addressToAccountCmd, addressFromAliasCmd)
}

// addressOf returns the checksummed EVM form of an address or account id,
// or "" when s is neither.
func addressOf(s string) string {
	a, err := address.ToAddress(s)
	if err != nil {
		return ""
	}
	return a.Hex()
}
