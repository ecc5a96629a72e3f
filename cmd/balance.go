package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/relay"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// weibarsPerTinybar scales relay balances down to tinybars; a tinybar is
// 1e-8 HBAR.
var (
	weibarsPerTinybar = big.NewInt(10_000_000_000)
	tinybarsPerHbar   = 8
)

var balanceCmd = &cobra.Command{
	Use:   "balance [account|address|wallet]",
	Short: "Show an HBAR balance",
	Long: `Query the relay for an account balance. Accepts an account id, an EVM
address or a wallet name; defaults to the default wallet.

Examples:
  hethers balance 0.0.1001
  hethers balance main --network mainnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := balanceTarget(args)
		if err != nil {
			return err
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Fetching balance on %s...", net.DisplayName))
		spin.Start()
		weibars, err := relay.New(net.Relay()).GetBalance(cmd.Context(), target)
		spin.Stop()
		if err != nil {
			return err
		}

		tinybars := new(big.Int).Quo(weibars, weibarsPerTinybar)
		pairs := [][2]string{
			{"Address", ui.Addr(target.Hex())},
		}
		if address.IsLongZero(target) {
			pairs = append(pairs, [2]string{"Account", address.AccountFromEVM(target).String()})
		}
		pairs = append(pairs,
			[2]string{"Balance", ui.Val(formatUnits(tinybars, tinybarsPerHbar) + " " + net.NativeCurrency)},
			[2]string{"Tinybars", tinybars.String()},
		)
		fmt.Println(ui.KeyValueBlock("Balance on "+net.DisplayName, pairs))
		return nil
	},
}

// balanceTarget resolves an account id, address or stored wallet.
func balanceTarget(args []string) (common.Address, error) {
	if len(args) == 1 {
		if a, err := address.ToAddress(args[0]); err == nil {
			return a, nil
		}
	}
	mgr := newWalletManager()
	name := walletName(mgr, args)
	if name == "" {
		return common.Address{}, errors.New("no account given and no default wallet — pass an account id or address")
	}
	e, err := mgr.Get(name)
	if err != nil {
		return common.Address{}, fmt.Errorf("%q is not an account, address or wallet: %w", name, err)
	}
	if e.Address == "" {
		return common.Address{}, fmt.Errorf("wallet %q has no address; import it with --account", name)
	}
	return common.HexToAddress(e.Address), nil
}

// formatUnits renders v scaled down by 10^decimals without trailing zeros.
func formatUnits(v *big.Int, decimals int) string {
	neg := v.Sign() < 0
	s := new(big.Int).Abs(v).String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
