package network

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Node is a consensus node: the account fees are paid to and its gRPC endpoint.
type Node struct {
	Account  address.AccountID `json:"account"`
	Endpoint string            `json:"endpoint"`
}

// Network holds all metadata for a single Hedera network.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	Nodes          []Node   `json:"nodes"`
	MirrorURL      string   `json:"mirror_url"`
	RelayURLs      []string `json:"relay_urls"`
	Explorer       string   `json:"explorer,omitempty"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of the four Hedera networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by name ("mainnet", "testnet", ...).
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its EVM chain id.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// OverrideRelays replaces the relay list of each named network with a
// single URL. Unknown names are ignored.
func (r *Registry) OverrideRelays(urls map[string]string) {
	for name, url := range urls {
		if n, ok := r.byName[strings.ToLower(name)]; ok && url != "" {
			n.RelayURLs = []string{url}
		}
	}
}

// NodeAccounts lists the node account ids.
func (n *Network) NodeAccounts() []address.AccountID {
	out := make([]address.AccountID, len(n.Nodes))
	for i, node := range n.Nodes {
		out[i] = node.Account
	}
	return out
}

// RandomNode picks a node uniformly.
func (n *Network) RandomNode() Node {
	return n.Nodes[rand.Intn(len(n.Nodes))]
}

// Node returns the node with the given account id.
func (n *Network) Node(account address.AccountID) (Node, bool) {
	for _, node := range n.Nodes {
		if node.Account == account {
			return node, true
		}
	}
	return Node{}, false
}

// Relay returns the primary JSON-RPC relay URL.
func (n *Network) Relay() string {
	if len(n.RelayURLs) == 0 {
		return ""
	}
	return n.RelayURLs[0]
}

// TxURL returns the explorer page for a transaction id, or "" if the
// network has no explorer.
func (n *Network) TxURL(txID string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/transaction/" + txID
}

// --- network data ---

func nodes(endpoints ...string) []Node {
	out := make([]Node, len(endpoints))
	for i, ep := range endpoints {
		out[i] = Node{Account: address.AccountID{Num: uint64(3 + i)}, Endpoint: ep}
	}
	return out
}

func allNetworks() []Network {
	return []Network{
		{
			Name: "mainnet", DisplayName: "Hedera Mainnet", ChainID: 295, NativeCurrency: "HBAR",
			Nodes: nodes(
				"35.237.200.180:50211",
				"35.186.191.247:50211",
				"35.192.2.25:50211",
				"35.199.161.108:50211",
			),
			MirrorURL: "https://mainnet-public.mirrornode.hedera.com",
			RelayURLs: []string{"https://mainnet.hashio.io/api"},
			Explorer:  "https://hashscan.io/mainnet",
		},
		{
			Name: "testnet", DisplayName: "Hedera Testnet", ChainID: 296, NativeCurrency: "HBAR",
			Nodes: nodes(
				"0.testnet.hedera.com:50211",
				"1.testnet.hedera.com:50211",
				"2.testnet.hedera.com:50211",
				"3.testnet.hedera.com:50211",
			),
			MirrorURL: "https://testnet.mirrornode.hedera.com",
			RelayURLs: []string{"https://testnet.hashio.io/api"},
			Explorer:  "https://hashscan.io/testnet",
		},
		{
			Name: "previewnet", DisplayName: "Hedera Previewnet", ChainID: 297, NativeCurrency: "HBAR",
			Nodes: nodes(
				"0.previewnet.hedera.com:50211",
				"1.previewnet.hedera.com:50211",
				"2.previewnet.hedera.com:50211",
				"3.previewnet.hedera.com:50211",
			),
			MirrorURL: "https://previewnet.mirrornode.hedera.com",
			RelayURLs: []string{"https://previewnet.hashio.io/api"},
			Explorer:  "https://hashscan.io/previewnet",
		},
		{
			Name: "local", DisplayName: "Local Node", ChainID: 298, NativeCurrency: "HBAR",
			Nodes:     nodes("127.0.0.1:50211"),
			MirrorURL: "http://127.0.0.1:5551",
			RelayURLs: []string{"http://127.0.0.1:7546"},
		},
	}
}
