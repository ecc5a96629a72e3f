package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/config"
	"github.com/Mohsinsiddi/hethers/internal/network"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/hethers/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "hethers",
	Short: "Hedera ABI codec and dual-curve wallet",
	Long: `hethers — encode and decode Solidity ABI data, and manage secp256k1 and
ed25519 wallets that sign Hedera transactions.

  Encode calldata, decode results and event logs, compute selectors,
  convert between EVM addresses and Hedera account ids, and keep
  encrypted keystores for offline transaction signing.

The global --network flag overrides the configured default network for a
single invocation. Persist it with: hethers config set default_network <name>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		setupLogging(cfg.Level())
		if networkFlag != "" {
			cfg.DefaultNetwork = networkFlag
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(ui.Banner(Version))
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(1)
	}
}

func setupLogging(level zerolog.Level) {
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// registry returns the built-in networks with configured relay overrides.
func registry() *network.Registry {
	reg := network.NewRegistry()
	reg.OverrideRelays(cfg.RelayURLs)
	return reg
}

// currentNetwork resolves --network or the configured default.
func currentNetwork() (*network.Network, error) {
	n, err := registry().GetByName(cfg.DefaultNetwork)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q — run `hethers network list`", cfg.DefaultNetwork)
	}
	return n, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvDir+" or ~/.hethers)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network name (default: config)")
	rootCmd.PersistentFlags().BoolVar(&walletKeychain, "keychain", false, "store and read keystore passwords in the OS keychain")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		abiCmd,
		selectorCmd,
		topicCmd,
		keccakCmd,
		filterCmd,
		logsCmd,
		addressCmd,
		walletCmd,
		keystoreCmd,
		signCmd,
		verifyCmd,
		txCmd,
		callCmd,
		balanceCmd,
		networkCmd,
		configCmd,
	)
}
