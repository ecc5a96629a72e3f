package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/hethers/internal/jsonwallet"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/spf13/cobra"
)

var keystoreReveal bool

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "Inspect and decrypt keystore V3 files",
}

var keystoreInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show what a keystore reveals without its password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readKeystore(args[0])
		if err != nil {
			return err
		}
		info, err := jsonwallet.Inspect(data)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Keystore · "+args[0], inspectPairs(info)))
		return nil
	},
}

var keystoreDecryptCmd = &cobra.Command{
	Use:   "decrypt <file>",
	Short: "Decrypt a keystore and verify its address",
	Long: `Decrypt a keystore file, checking the recorded address against the
decrypted key. Pass --reveal to print the private key and mnemonic.

Examples:
  hethers keystore decrypt ./UTC--2024...json
  ` + EnvPassword + `=secret hethers keystore decrypt wallet.json --reveal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readKeystore(args[0])
		if err != nil {
			return err
		}
		pw := os.Getenv(EnvPassword)
		if pw == "" {
			if pw, err = ui.ReadPassword("Keystore password:"); err != nil {
				return err
			}
		}

		spin := ui.NewSpinner("Decrypting keystore...")
		spin.Start()
		w, err := wallet.FromEncryptedJSON(cmd.Context(), data, pw, spin.Progress)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(walletBlock("Decrypted Keystore", w))
		if keystoreReveal {
			pairs := [][2]string{{"Private Key", ui.Secret(w.PrivateKey())}}
			if m := w.Mnemonic(); m != nil {
				pairs = append(pairs, [2]string{"Mnemonic", ui.Secret(m.Phrase)})
			}
			fmt.Println(ui.KeyValueBlock("Secrets", pairs))
		}
		return nil
	},
}

func readKeystore(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading keystore: %w", err)
	}
	data := string(raw)
	if !jsonwallet.IsKeystoreWallet(data) {
		return "", fmt.Errorf("%s is not a keystore V3 file", path)
	}
	return data, nil
}

func init() {
	keystoreDecryptCmd.Flags().BoolVar(&keystoreReveal, "reveal", false, "print the private key and mnemonic")
	keystoreCmd.AddCommand(keystoreInspectCmd, keystoreDecryptCmd)
}
