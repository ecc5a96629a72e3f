package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	messageHex    bool
	verifyAddress string
)

var signCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with EIP-191 (personal_sign)",
	Long: `Sign a message using EIP-191 personal_sign with a secp256k1 wallet.

The message is prefixed with "\x19Ethereum Signed Message:\n<len>"
before being hashed and signed. Ed25519 wallets cannot sign messages.

Examples:
  hethers sign "hello world"
  hethers sign 0xdeadbeef --hex --wallet dev`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := messageBytes(args[0], messageHex)
		if err != nil {
			return err
		}
		w, err := signer(cmd.Context())
		if err != nil {
			return err
		}
		sig, err := w.SignMessage(msg)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock("Message Signed", [][2]string{
			{"Signer", ui.Addr(w.Address())},
			{"Message", args[0]},
			{"Digest", hexutil.Encode(signingkey.HashMessage(msg))},
			{"Signature", ui.Val(sig)},
		}))
		fmt.Println(ui.Hint("Verify: hethers verify \"" + args[0] + "\" " + sig + " --address " + w.Address()))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <message> <signature>",
	Short: "Recover the signer of an EIP-191 message",
	Long: `Recover the public key and address that signed a message, and compare
the address with --address when given.

Examples:
  hethers verify "hello world" 0x...
  hethers verify "hello world" 0x... --address 0.0.1001`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := messageBytes(args[0], messageHex)
		if err != nil {
			return err
		}
		pub, addr, err := recoverSigner(msg, args[1])
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Message", args[0]},
			{"Public Key", ui.TruncateAddr(hexutil.Encode(pub))},
			{"Recovered Signer", ui.Addr(addr)},
		}
		if verifyAddress != "" {
			if strings.EqualFold(addr, verifyAddress) || addressOf(verifyAddress) == addr {
				pairs = append(pairs, [2]string{"Match", ui.Success("signature is valid — signer matches")})
			} else {
				pairs = append(pairs, [2]string{"Expected", ui.Addr(verifyAddress)})
				pairs = append(pairs, [2]string{"Match", ui.Err("signature does NOT match expected address")})
			}
		}
		fmt.Println(ui.KeyValueBlock("Signature Verification", pairs))
		return nil
	},
}

func messageBytes(s string, asHex bool) ([]byte, error) {
	if !asHex {
		return []byte(s), nil
	}
	b, err := parseHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex message: %w", err)
	}
	return b, nil
}

// recoverSigner returns the uncompressed public key and checksummed
// address behind sig.
func recoverSigner(msg []byte, sig string) ([]byte, string, error) {
	raw, err := parseHex(sig)
	if err != nil {
		return nil, "", fmt.Errorf("invalid signature hex: %w", err)
	}
	pub, err := signingkey.VerifyMessage(msg, raw, signingkey.Secp256k1)
	if err != nil {
		return nil, "", err
	}
	addr, err := signingkey.ComputeAddress(pub)
	if err != nil {
		return nil, "", err
	}
	return pub, addr.Hex(), nil
}

func init() {
	signCmd.Flags().StringVar(&walletFlag, "wallet", "", "wallet name (default: config)")
	for _, c := range []*cobra.Command{signCmd, verifyCmd} {
		c.Flags().BoolVar(&messageHex, "hex", false, "treat the message as hex bytes")
	}
	verifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer (EVM address or account id)")
}
