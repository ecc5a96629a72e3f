package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/network"
	"github.com/Mohsinsiddi/hethers/internal/relay"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const probeTimeout = 8 * time.Second

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage Hedera networks and relays",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the Hedera networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 18},
			{Title: "Chain ID", Width: 9},
			{Title: "Currency", Width: 9},
			{Title: "Nodes", Width: 6},
			{Title: "Relay", Width: 36},
		})
		for _, n := range reg.All() {
			name := n.Name
			if n.Name == cfg.DefaultNetwork {
				name += " *"
			}
			t.AddRow(
				ui.NetworkName(name),
				n.DisplayName,
				fmt.Sprintf("%d", n.ChainID),
				n.NativeCurrency,
				fmt.Sprintf("%d", len(n.Nodes)),
				n.Relay(),
			)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("* default network"))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := registry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q — run `hethers network list`", args[0])
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Default network set to " + ui.NetworkName(n.Name)))
		return nil
	},
}

var networkRelayCmd = &cobra.Command{
	Use:   "relay <network> [url]",
	Short: "Show or override a network's JSON-RPC relay",
	Long: `Without a url, print the relay used for the network. With a url, persist it
as the override. Pass "" to go back to the built-in relay.

Examples:
  hethers network relay testnet
  hethers network relay local http://localhost:7546`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := registry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q — run `hethers network list`", args[0])
		}
		if len(args) == 1 {
			fmt.Println(n.Relay())
			return nil
		}
		url := strings.TrimSpace(args[1])
		if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("relay url must start with http:// or https://")
		}
		cfg.SetRelay(n.Name, url)
		if err := cfg.Save(); err != nil {
			return err
		}
		if url == "" {
			fmt.Println(ui.Success("Relay override removed for " + ui.NetworkName(n.Name)))
			return nil
		}
		fmt.Println(ui.Success("Relay for " + ui.NetworkName(n.Name) + " set to " + ui.Addr(url)))
		return nil
	},
}

var networkCheckCmd = &cobra.Command{
	Use:   "check [network...]",
	Short: "Probe each relay for liveness and chain id",
	RunE: func(cmd *cobra.Command, args []string) error {
		networks, err := checkTargets(args)
		if err != nil {
			return err
		}
		rows := make([]ui.CheckRow, len(networks))
		byName := make(map[string]network.Network, len(networks))
		for i, n := range networks {
			rows[i] = ui.CheckRow{Network: n.Name, Relay: n.Relay(), Want: n.ChainID}
			byName[n.Name] = n
		}
		probe := func(name string) tea.Cmd {
			n := byName[name]
			return func() tea.Msg {
				return ui.CheckResultMsg(probeRelay(cmd.Context(), n))
			}
		}

		prog := tea.NewProgram(ui.NewCheckModel(rows, probe), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
		final, err := prog.Run()
		if err != nil {
			return err
		}
		if m, ok := final.(ui.CheckModel); ok && m.Failed() > 0 {
			return fmt.Errorf("%d relay(s) unhealthy", m.Failed())
		}
		return nil
	},
}

// checkTargets returns the named networks, or all of them.
func checkTargets(names []string) ([]network.Network, error) {
	reg := registry()
	if len(names) == 0 {
		return reg.All(), nil
	}
	out := make([]network.Network, 0, len(names))
	for _, name := range names {
		n, err := reg.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("unknown network %q — run `hethers network list`", name)
		}
		out = append(out, *n)
	}
	return out, nil
}

// probeRelay pings a relay and reads its chain id.
func probeRelay(ctx context.Context, n network.Network) ui.CheckResult {
	res := ui.CheckResult{Network: n.Name}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := relay.New(n.Relay())
	res.Latency, res.Block, res.Err = c.Ping(ctx)
	if res.Err != nil {
		log.Debug().Err(res.Err).Str("network", n.Name).Msg("relay ping failed")
		return res
	}
	res.ChainID, res.Err = c.ChainID(ctx)
	return res
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkRelayCmd, networkCheckCmd)
}
