package cmd

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/hapi"
	"github.com/Mohsinsiddi/hethers/internal/network"
	"github.com/Mohsinsiddi/hethers/internal/relay"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	txTo             string
	txValue          string
	txData           string
	txGas            uint64
	txFileChunk      string
	txFileID         string
	txFileKey        string
	txBytecodeFileID string
	txNode           string
	txMemo           string
	txOut            string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and inspect Hedera transactions",
}

var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a transaction offline",
	Long: `Build and sign a Hedera transaction from an ethers-style request. The
transaction kind follows from the flags:

  --file-chunk [--file-id]       FileCreate, or FileAppend with --file-id
  --bytecode-file-id --gas       ContractCreate (--data holds constructor args)
  --to --data --gas              ContractCall
  --to --value                   CryptoTransfer, or a ContractCall when --to is a contract

Values are in tinybars. The relay is only queried to tell accounts from
contracts. The signed bytes are printed as hex, or written with --out.

Examples:
  hethers tx sign --to 0.0.1002 --value 100000000
  hethers tx sign --to 0.0.98 --data 0xa9059cbb... --gas 100000
  hethers tx sign --file-chunk @Token.bin
  hethers tx sign --bytecode-file-id 0.0.122121 --gas 300000 --node 0.0.5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := txRequest()
		if err != nil {
			return err
		}
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		w, err := signer(cmd.Context())
		if err != nil {
			return err
		}
		raw, err := w.Connect(provider(net)).SignTransaction(cmd.Context(), req)
		if err != nil {
			return err
		}

		pairs, err := describeTransaction(raw)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Signed Transaction · "+net.DisplayName, pairs))
		out := hexutil.Encode(raw)
		if txOut != "" {
			if err := os.WriteFile(txOut, []byte(out+"\n"), 0o600); err != nil {
				return fmt.Errorf("writing transaction: %w", err)
			}
			fmt.Println(ui.Success("Written to " + txOut))
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

var txDecodeCmd = &cobra.Command{
	Use:   "decode <hex|@file>",
	Short: "Decode a signed transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := bytesArg(args[0])
		if err != nil {
			return err
		}
		pairs, err := describeTransaction(raw)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Transaction", pairs))
		return nil
	},
}

// txRequest assembles a request from the sign flags.
func txRequest() (*wallet.TransactionRequest, error) {
	req := &wallet.TransactionRequest{
		To:       txTo,
		GasLimit: txGas,
		NodeID:   txNode,
		Memo:     txMemo,
	}
	if txValue != "" {
		v, ok := new(big.Int).SetString(txValue, 0)
		if !ok {
			return nil, fmt.Errorf("invalid --value %q", txValue)
		}
		req.Value = v
	}
	if txData != "" {
		data, err := bytesArg(txData)
		if err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
		req.Data = data
	}
	if txFileChunk != "" || txBytecodeFileID != "" {
		req.CustomData = &wallet.CustomData{
			FileID:         txFileID,
			FileKey:        txFileKey,
			BytecodeFileID: txBytecodeFileID,
		}
		if txFileChunk != "" {
			chunk, err := bytesArg(txFileChunk)
			if err != nil {
				return nil, fmt.Errorf("invalid --file-chunk: %w", err)
			}
			req.CustomData.FileChunk = chunk
		}
	}
	return req, nil
}

// bytesArg reads hex, or a file when s starts with @. A file holding hex
// text is decoded; anything else is used as raw bytes.
func bytesArg(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "@") {
		return parseHex(s)
	}
	raw, err := os.ReadFile(s[1:])
	if err != nil {
		return nil, err
	}
	if b, err := parseHex(string(raw)); err == nil {
		return b, nil
	}
	return raw, nil
}

// provider connects a network to its relay. Sending is not wired, so
// signed bytes leave through the caller.
func provider(net *network.Network) wallet.Provider {
	return wallet.NewProvider(net, relay.New(net.Relay()), nil)
}

func describeTransaction(raw []byte) ([][2]string, error) {
	tx, err := hapi.UnmarshalTransaction(raw)
	if err != nil {
		return nil, err
	}
	st, err := tx.Signed()
	if err != nil {
		return nil, err
	}
	body, err := st.Body()
	if err != nil {
		return nil, err
	}
	pairs := [][2]string{
		{"Transaction Id", ui.Val(body.TransactionID.String())},
		{"Hash", ui.TruncateAddr(hexutil.Encode(tx.Hash()))},
		{"Node", body.NodeAccountID.String()},
		{"Max Fee", fmt.Sprintf("%d tinybar", body.TransactionFee)},
		{"Valid For", body.ValidDuration.String()},
		{"Memo", body.Memo},
		{"Signatures", fmt.Sprintf("%d", len(st.SigMap))},
	}
	return append(pairs, describeData(body.Data)...), nil
}

func describeData(d hapi.Data) [][2]string {
	switch x := d.(type) {
	case *hapi.ContractCall:
		return [][2]string{
			{"Type", ui.Val("ContractCall")},
			{"Contract", contractLabel(x.Contract)},
			{"Gas", fmt.Sprintf("%d", x.Gas)},
			{"Amount", fmt.Sprintf("%d tinybar", x.Amount)},
			{"Calldata", ui.TruncateAddr(hexutil.Encode(x.FunctionParameters))},
		}
	case *hapi.ContractCreate:
		return [][2]string{
			{"Type", ui.Val("ContractCreate")},
			{"Bytecode File", fileLabel(x.BytecodeFile)},
			{"Gas", fmt.Sprintf("%d", x.Gas)},
			{"Initial Balance", fmt.Sprintf("%d tinybar", x.InitialBalance)},
			{"Auto Renew", x.AutoRenewPeriod.String()},
			{"Constructor Args", fmt.Sprintf("%d bytes", len(x.ConstructorParameters))},
		}
	case *hapi.CryptoTransfer:
		pairs := [][2]string{{"Type", ui.Val("CryptoTransfer")}}
		for _, t := range x.Transfers {
			pairs = append(pairs, [2]string{t.Account.String(), fmt.Sprintf("%+d tinybar", t.Amount)})
		}
		return pairs
	case *hapi.CryptoCreate:
		return [][2]string{
			{"Type", ui.Val("CryptoCreate")},
			{"Key", ui.TruncateAddr(hexutil.Encode(x.Key.Bytes()))},
			{"Initial Balance", fmt.Sprintf("%d tinybar", x.InitialBalance)},
		}
	case *hapi.FileCreate:
		return [][2]string{
			{"Type", ui.Val("FileCreate")},
			{"Expiration", x.Expiration.UTC().Format("2006-01-02 15:04:05Z")},
			{"Keys", fmt.Sprintf("%d", len(x.Keys))},
			{"Contents", fmt.Sprintf("%d bytes", len(x.Contents))},
		}
	case *hapi.FileAppend:
		return [][2]string{
			{"Type", ui.Val("FileAppend")},
			{"File", fileLabel(x.File)},
			{"Contents", fmt.Sprintf("%d bytes", len(x.Contents))},
		}
	}
	return [][2]string{{"Type", fmt.Sprintf("%T", d)}}
}

func contractLabel(c hapi.ContractID) string {
	if len(c.EVMAddress) > 0 {
		return hexutil.Encode(c.EVMAddress)
	}
	return fmt.Sprintf("%d.%d.%d", c.Shard, c.Realm, c.Num)
}

func fileLabel(f hapi.FileID) string {
	return fmt.Sprintf("%d.%d.%d", f.Shard, f.Realm, f.Num)
}

func init() {
	f := txSignCmd.Flags()
	f.StringVar(&txTo, "to", "", "receiver: EVM address or account id")
	f.StringVar(&txValue, "value", "", "amount in tinybars")
	f.StringVar(&txData, "data", "", "calldata or constructor args (hex or @file)")
	f.Uint64Var(&txGas, "gas", 0, "gas limit")
	f.StringVar(&txFileChunk, "file-chunk", "", "file contents (hex or @file)")
	f.StringVar(&txFileID, "file-id", "", "append to this file instead of creating one")
	f.StringVar(&txFileKey, "file-key", "", "public key controlling a new file (default: the wallet's)")
	f.StringVar(&txBytecodeFileID, "bytecode-file-id", "", "file holding contract bytecode")
	f.StringVar(&txNode, "node", "", "consensus node account (default: random)")
	f.StringVar(&txMemo, "memo", "", "transaction memo")
	f.StringVar(&txOut, "out", "", "write the signed transaction to a file")
	f.StringVar(&walletFlag, "wallet", "", "wallet name (default: config)")
	txCmd.AddCommand(txSignCmd, txDecodeCmd)
}
