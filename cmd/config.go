package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/hethers/internal/config"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/spf13/cobra"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configJSON {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Configuration", configPairs()))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: default_network, default_wallet, keystore_dir, scrypt_n, log_level,
relay.<network>

Examples:
  hethers config set default_network mainnet
  hethers config set scrypt_n 16384
  hethers config set relay.local http://localhost:7546`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "default_network" {
			if _, err := registry().GetByName(args[1]); err != nil {
				return fmt.Errorf("unknown network %q — run `hethers network list`", args[1])
			}
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

func configPairs() [][2]string {
	pairs := make([][2]string, 0, len(config.Keys)+len(cfg.RelayURLs))
	for _, k := range config.Keys {
		v, _ := cfg.Get(k)
		if v == "" {
			v = ui.Meta("(unset)")
		}
		pairs = append(pairs, [2]string{k, v})
	}
	for _, name := range cfg.Relays() {
		pairs = append(pairs, [2]string{"relay." + name, ui.Addr(cfg.RelayURLs[name])})
	}
	return pairs
}

func init() {
	configListCmd.Flags().BoolVar(&configJSON, "json", false, "print raw JSON")
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
}
