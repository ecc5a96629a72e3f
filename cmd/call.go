package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/network"
	"github.com/Mohsinsiddi/hethers/internal/relay"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/spf13/cobra"
)

var (
	callABI string
	callGas uint64
)

var callCmd = &cobra.Command{
	Use:   "call <contract> <function> [args...]",
	Short: "Call a read-only contract function through the relay",
	Long: `Run eth_call against a contract and decode the result. The function is a
human-readable signature with its return types, or a name resolved against
--abi. With --wallet the call is made from that wallet's address.

Examples:
  hethers call 0.0.1234 "function balanceOf(address) view returns (uint256)" 0.0.1001
  hethers call 0x...token decimals --abi erc20
  hethers call 0.0.1234 name --abi erc20 --network mainnet`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, fn, err := resolveFunction(callABI, args[1])
		if err != nil {
			return err
		}
		values, err := parseArgs(fn.Inputs, args[2:])
		if err != nil {
			return err
		}
		data, err := iface.EncodeFunctionData(fn, values...)
		if err != nil {
			return err
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Calling %s on %s...", fn.Name, net.DisplayName))
		out, err := contractCall(cmd.Context(), net, args[0], data, spin)
		if err != nil {
			return err
		}
		results, err := iface.DecodeFunctionResult(fn, out)
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Contract", ui.Addr(args[0])},
			{"Function", ui.Val(fn.Format(abi.FormatSighash))},
			{"Network", ui.NetworkName(net.DisplayName)},
		}
		pairs = append(pairs, valuePairs(fn.Outputs, results)...)
		fmt.Println(ui.KeyValueBlock("Contract Call", pairs))
		return nil
	},
}

// contractCall runs eth_call, from --wallet when one is given.
func contractCall(ctx context.Context, net *network.Network, to string, data []byte, spin *ui.Spinner) ([]byte, error) {
	if walletFlag != "" {
		w, err := signer(ctx)
		if err != nil {
			return nil, err
		}
		spin.Start()
		defer spin.Stop()
		return w.Connect(provider(net)).Call(ctx, &wallet.TransactionRequest{To: to, Data: data, GasLimit: callGas})
	}
	addr, err := address.ToAddress(to)
	if err != nil {
		return nil, err
	}
	spin.Start()
	defer spin.Stop()
	return relay.New(net.Relay()).Call(ctx, ethereum.CallMsg{To: &addr, Data: data, Gas: callGas})
}

func init() {
	callCmd.Flags().StringVar(&callABI, "abi", "", "ABI JSON file or built-in id")
	callCmd.Flags().Uint64Var(&callGas, "gas", 300000, "gas limit for the call")
	callCmd.Flags().StringVar(&walletFlag, "wallet", "", "call from this wallet")
}
