package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"
)

var keccakHex bool

var keccakCmd = &cobra.Command{
	Use:   "keccak <input>",
	Short: "Compute Keccak-256 hash of text or hex input",
	Long: `Compute the Keccak-256 hash of the given input.

Input is hashed as UTF-8 text unless --hex is set, in which case it is
decoded as raw bytes first.

Examples:
  hethers keccak "transfer(address,uint256)"
  hethers keccak --hex 0xdeadbeef`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := keccakInput(args[0], keccakHex)
		if err != nil {
			return err
		}
		hash := keccak256(data)

		inputType := "text"
		if keccakHex {
			inputType = "hex"
		}
		fmt.Println(ui.KeyValueBlock("Keccak-256 Hash", [][2]string{
			{"Input", args[0]},
			{"Type", inputType},
			{"Keccak-256", ui.Val("0x" + hex.EncodeToString(hash))},
			{"First 4 bytes", "0x" + hex.EncodeToString(hash[:4])},
		}))
		return nil
	},
}

func keccakInput(input string, asHex bool) ([]byte, error) {
	if !asHex {
		return []byte(input), nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return raw, nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func init() {
	keccakCmd.Flags().BoolVar(&keccakHex, "hex", false, "treat input as hex bytes")
}
