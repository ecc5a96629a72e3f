package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/jsonwallet"
	"github.com/Mohsinsiddi/hethers/internal/mnemonic"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// EnvPassword supplies keystore passwords non-interactively.
const EnvPassword = "HETHERS_PASSWORD"

var (
	walletEd25519  bool
	walletAccount  string
	walletPath     string
	walletKeychain bool
	walletJSON     bool
	walletFlag     string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage encrypted wallets",
	Long: `Wallets are stored as encrypted keystore files in the keystore
directory (default: <config>/keystores). Passwords are read from $` + EnvPassword + `,
the OS keychain (with --keychain) or an interactive prompt.`,
}

var walletNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a random wallet with a mnemonic",
	Long: `Generate a 12-word mnemonic and derive a secp256k1 key (m/44'/60'/0'/0/0)
or, with --ed25519, an ed25519 key (m/44'/3030'/0'/0'/0').

The mnemonic is displayed ONCE. Write it down: it is the only way to
recover the wallet without the keystore file.

Examples:
  hethers wallet new main
  hethers wallet new hedera --ed25519 --account 0.0.34100425`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		curve := flagCurve()
		opts, err := accountOption()
		if err != nil {
			return err
		}
		w, err := wallet.CreateRandom(wallet.RandomOptions{Curve: curve, Path: walletPath}, opts...)
		if err != nil {
			return err
		}
		if err := storeWallet(name, w); err != nil {
			return err
		}

		fmt.Println(walletBlock("New Wallet · "+name, w))
		if m := w.Mnemonic(); m != nil {
			fmt.Println(ui.Warn("SAVE YOUR MNEMONIC — shown only once. Never share it."))
			fmt.Println()
			fmt.Println("  " + ui.Secret(m.Phrase))
			fmt.Println()
		}
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name> <private-key|mnemonic|keystore-file>",
	Short: "Import a private key, mnemonic or keystore file",
	Long: `Import an existing wallet.

  - A hex private key, with or without 0x (ed25519 keys may carry the DER header)
  - A quoted BIP-39 mnemonic
  - A keystore V3 JSON file, stored as-is without decrypting

Examples:
  hethers wallet import dev 0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80
  hethers wallet import ops 302e0201...  --ed25519 --account 0.0.34100425
  hethers wallet import hd "abandon abandon ... about"
  hethers wallet import old ./UTC--2024-01-01T00-00-00.0Z--abc.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, src := args[0], args[1]
		mgr := newWalletManager()

		if data, err := os.ReadFile(src); err == nil {
			if !jsonwallet.IsKeystoreWallet(string(data)) {
				return fmt.Errorf("%s is not a keystore file", src)
			}
			if err := mgr.Import(name, string(data)); err != nil {
				return err
			}
			e, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Keystore %q imported: %s", name, ui.Addr(e.Address))))
			return nil
		}

		opts, err := accountOption()
		if err != nil {
			return err
		}
		var w *wallet.Wallet
		if mnemonic.IsValid(src) {
			w, err = wallet.FromMnemonic(src, walletPath, flagCurve(), opts...)
		} else {
			w, err = wallet.New(src, append(opts, wallet.WithCurve(flagCurve()))...)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", wallet.ErrInvalidKey, err)
		}
		if err := storeWallet(name, w); err != nil {
			return err
		}
		fmt.Println(walletBlock("Imported Wallet · "+name, w))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets yet."))
			fmt.Println(ui.Hint("Create one with: hethers wallet new main"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Curve", Width: 10},
			{Title: "Address", Width: 44},
			{Title: "Account", Width: 16},
			{Title: "Default", Width: 8},
		})
		def := defaultWalletName(mgr)
		for _, e := range wallets {
			mark := ""
			if e.Name == def {
				mark = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Val(e.Name), ui.Meta(e.Curve.String()), ui.Addr(e.Address), e.Account, mark)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) in %s", len(wallets), cfg.Keystores())))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			def := defaultWalletName(mgr)
			var items []ui.PickerItem
			for _, e := range mgr.List() {
				items = append(items, ui.PickerItem{
					Label:    e.Name,
					SubLabel: ui.TruncateAddr(e.Address) + "  " + e.Curve.String(),
					Value:    e.Name,
					Current:  e.Name == def,
				})
			}
			picked, err := ui.PickItem("Default Wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a wallet and its keystore file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Delete wallet %q? The keystore file is removed.", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if walletKeychain {
			if err := keychain().Delete(wallet.PassphraseRef(name)); err != nil {
				fmt.Println(ui.Warn("keychain: " + err.Error()))
			}
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Reveal the private key and mnemonic of a wallet",
	Long: `Decrypt a wallet and print its private key (and mnemonic, if any).
With --json the encrypted keystore is printed instead, no password needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if walletJSON {
			data, err := mgr.Keystore(name)
			if err != nil {
				return err
			}
			fmt.Println(data)
			return nil
		}

		if !ui.ConfirmDanger("Reveal the private key? Anyone who sees it controls the wallet.") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		w, err := unlockWallet(cmd.Context(), mgr, name)
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Address", ui.Addr(w.Address())},
			{"Curve", w.Curve().String()},
			{"Private Key", ui.Secret(w.PrivateKey())},
		}
		if m := w.Mnemonic(); m != nil {
			pairs = append(pairs,
				[2]string{"Mnemonic", ui.Secret(m.Phrase)},
				[2]string{"Path", m.Path})
		}
		fmt.Println(ui.KeyValueBlock("Wallet Secrets · "+name, pairs))
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a wallet's public details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		name := walletName(mgr, args)
		if name == "" {
			return errors.New("no wallet given and no default set — run `hethers wallet use`")
		}
		data, err := mgr.Keystore(name)
		if err != nil {
			return err
		}
		info, err := jsonwallet.Inspect(data)
		if err != nil {
			return err
		}
		e, _ := mgr.Get(name)
		fmt.Println(ui.KeyValueBlock("Wallet · "+name, inspectPairs(info, [2]string{"Created", e.CreatedAt})))
		return nil
	},
}

// flagCurve maps --ed25519 to a curve.
func flagCurve() signingkey.Curve {
	if walletEd25519 {
		return signingkey.Ed25519
	}
	return signingkey.Secp256k1
}

func accountOption() ([]wallet.Option, error) {
	if walletAccount == "" {
		return nil, nil
	}
	id, err := address.ParseAccount(walletAccount)
	if err != nil {
		return nil, err
	}
	return []wallet.Option{wallet.WithAccount(id)}, nil
}

// storeWallet encrypts w under a new password and makes it the default when
// it is the first wallet.
func storeWallet(name string, w *wallet.Wallet) error {
	mgr := newWalletManager()
	if _, err := mgr.Get(name); err == nil {
		return wallet.ErrWalletExists
	}
	pw := os.Getenv(EnvPassword)
	if pw == "" {
		var err error
		if pw, err = ui.NewPassword(fmt.Sprintf("Password for %q:", name)); err != nil {
			return err
		}
	}

	spin := ui.NewSpinner("Encrypting keystore...")
	spin.Start()
	err := mgr.Add(name, w, pw)
	spin.Stop()
	if err != nil {
		return err
	}

	if walletKeychain {
		if _, err := keychain().Store(name, pw); err != nil {
			fmt.Println(ui.Warn("keychain: " + err.Error()))
		}
	}
	if cfg.DefaultWallet == "" {
		cfg.DefaultWallet = name
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		return cfg.Save()
	}
	return nil
}

// unlockWallet decrypts a stored wallet, showing decryption progress.
func unlockWallet(ctx context.Context, mgr *wallet.Manager, name string) (*wallet.Wallet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	pw, err := walletPassword(name)
	if err != nil {
		return nil, err
	}
	spin := ui.NewSpinner(fmt.Sprintf("Decrypting %s...", name))
	spin.Start()
	w, err := mgr.Open(ctx, name, pw, spin.Progress)
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("unlocking %q: %w", name, err)
	}
	return w, nil
}

func walletPassword(name string) (string, error) {
	if pw := os.Getenv(EnvPassword); pw != "" {
		return pw, nil
	}
	if walletKeychain {
		pw, err := keychain().Retrieve(wallet.PassphraseRef(name))
		if err == nil {
			return pw, nil
		}
		log.Debug().Err(err).Str("wallet", name).Msg("keychain lookup failed")
	}
	return ui.ReadPassword(fmt.Sprintf("Password for %q:", name))
}

// signer resolves --wallet or the default and decrypts it.
func signer(ctx context.Context) (*wallet.Wallet, error) {
	mgr := newWalletManager()
	name := walletFlag
	if name == "" {
		name = defaultWalletName(mgr)
	}
	if name == "" {
		return nil, errors.New("no wallet selected — pass --wallet or run `hethers wallet use`")
	}
	return unlockWallet(ctx, mgr, name)
}

func walletName(mgr *wallet.Manager, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultWalletName(mgr)
}

func defaultWalletName(mgr *wallet.Manager) string {
	if cfg.DefaultWallet != "" {
		return cfg.DefaultWallet
	}
	if e := mgr.Default(); e != nil {
		return e.Name
	}
	return ""
}

func walletBlock(title string, w *wallet.Wallet) string {
	pairs := [][2]string{
		{"Curve", w.Curve().String()},
		{"Address", ui.Addr(w.Address())},
		{"Public Key", ui.TruncateAddr(fmt.Sprintf("0x%x", w.SigningKey().CompressedPublicKey()))},
		{"Alias", ui.TruncateAddr(w.Alias())},
	}
	if id, ok := w.Account(); ok {
		pairs = append(pairs, [2]string{"Account", ui.Val(id.String())})
	}
	if m := w.Mnemonic(); m != nil {
		pairs = append(pairs, [2]string{"Path", m.Path})
	}
	return ui.KeyValueBlock(title, pairs)
}

func inspectPairs(info jsonwallet.Info, extra ...[2]string) [][2]string {
	pairs := [][2]string{
		{"Curve", info.Curve.String()},
		{"Address", ui.Addr(info.Address)},
		{"Account", info.Account},
		{"Alias", ui.TruncateAddr(info.Alias)},
		{"KDF", info.KDF},
		{"Cipher", info.Cipher},
		{"Mnemonic", strings.TrimSpace(fmt.Sprintf("%t %s", info.HasMnemonic, info.Path))},
		{"Client", info.Client},
		{"Id", ui.Meta(info.ID)},
	}
	return append(pairs, extra...)
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithKeystoreDir(cfg.Keystores()),
		wallet.WithEncryptOptions(cfg.EncryptOptions()),
	)
}

func keychain() wallet.Keychain {
	return wallet.DefaultKeychain(cfg.Dir(), ui.ReadPassword)
}

func init() {
	for _, c := range []*cobra.Command{walletNewCmd, walletImportCmd} {
		c.Flags().BoolVar(&walletEd25519, "ed25519", false, "use an ed25519 key instead of secp256k1")
		c.Flags().StringVar(&walletAccount, "account", "", "Hedera account id (shard.realm.num) the key controls")
		c.Flags().StringVar(&walletPath, "path", "", "HD derivation path (default depends on the curve)")
	}
	walletExportCmd.Flags().BoolVar(&walletJSON, "json", false, "print the encrypted keystore instead")
	walletCmd.AddCommand(walletNewCmd, walletImportCmd, walletListCmd, walletUseCmd,
		walletRemoveCmd, walletExportCmd, walletShowCmd)
}
