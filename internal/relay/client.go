// Package relay is a JSON-RPC client for the Hedera JSON-RPC relay. It covers
// the read side of a wallet provider: chain id, balances, code and calls.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single request when the context has no deadline.
const DefaultTimeout = 15 * time.Second

// RPCError is an error object returned by the relay.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return "rpc error " + strconv.Itoa(e.Code) + ": " + e.Message
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Client talks to one relay URL.
type Client struct {
	url    string
	client *http.Client
	nextID atomic.Uint64
}

// New returns a client for url.
func New(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// URL returns the relay endpoint.
func (c *Client) URL() string { return c.url }

// ChainID returns the chain id the relay reports.
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_chainId"); err != nil {
		return 0, err
	}
	return out.ToInt().Int64(), nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// GetBalance returns the balance of addr in weibars.
func (c *Client) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_getBalance", addr, "latest"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// GetCode returns the runtime bytecode at addr.
func (c *Client) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_getCode", addr, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// IsContract reports whether addr holds bytecode.
func (c *Client) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	code, err := c.GetCode(ctx, addr)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// Call executes msg against the latest state without creating a transaction.
// A revert is reported as CALL_EXCEPTION carrying the revert data, and a gas
// shortfall as INSUFFICIENT_FUNDS.
func (c *Client) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// EstimateGas asks the relay for the gas msg needs.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_estimateGas", toCallArg(msg)); err != nil {
		return 0, classify(err)
	}
	return uint64(out), nil
}

// Ping measures round-trip latency with eth_blockNumber.
func (c *Client) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	n, err := c.BlockNumber(ctx)
	return time.Since(start), n, err
}

func toCallArg(msg ethereum.CallMsg) map[string]any {
	arg := map[string]any{}
	if msg.From != (common.Address{}) {
		arg["from"] = msg.From
	}
	if msg.To != nil {
		arg["to"] = msg.To
	}
	if len(msg.Data) > 0 {
		arg["data"] = hexutil.Bytes(msg.Data)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(msg.Value)
	}
	if msg.Gas != 0 {
		arg["gas"] = hexutil.Uint64(msg.Gas)
	}
	return arg
}

// classify maps relay failures onto error codes.
func classify(err error) error {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	switch {
	case strings.Contains(rpcErr.Message, "INSUFFICIENT_GAS"):
		return errs.Wrap(err, errs.CodeInsufficientFunds, "insufficient funds for gas")
	case strings.Contains(strings.ToLower(rpcErr.Message), "revert"):
		var data string
		_ = json.Unmarshal(rpcErr.Data, &data)
		return errs.Wrap(err, errs.CodeCallException, "execution reverted", "data", data)
	}
	return err
}

func (c *Client) call(ctx context.Context, out any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return errors.Wrapf(err, "encoding %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	log.Debug().Str("method", method).Dur("latency", time.Since(start)).Int("status", resp.StatusCode).Msg("relay call")
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return errors.Wrapf(err, "parsing %s response (status %d)", method, resp.StatusCode)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return errors.Wrapf(err, "parsing %s result", method)
	}
	return nil
}
