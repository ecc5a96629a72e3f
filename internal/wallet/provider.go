package wallet

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/network"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Reader is the read side of a provider. *relay.Client implements it.
type Reader interface {
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	IsContract(ctx context.Context, addr common.Address) (bool, error)
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// GasEstimator is optionally implemented by a Reader.
type GasEstimator interface {
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Provider gives a wallet its network context.
type Provider interface {
	Reader
	Network() *network.Network
	// SendTransaction submits a serialized Transaction to the given node.
	SendTransaction(ctx context.Context, node address.AccountID, tx []byte) error
}

// Submitter delivers a serialized transaction to a consensus node.
type Submitter func(ctx context.Context, node network.Node, tx []byte) error

type networkProvider struct {
	Reader
	net    *network.Network
	submit Submitter
}

// NewProvider combines a network, a Reader for queries and an optional
// Submitter for sending. Without a Submitter, SendTransaction fails with
// UNSUPPORTED_OPERATION.
func NewProvider(net *network.Network, reader Reader, submit Submitter) Provider {
	return &networkProvider{Reader: reader, net: net, submit: submit}
}

func (p *networkProvider) Network() *network.Network { return p.net }

func (p *networkProvider) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	est, ok := p.Reader.(GasEstimator)
	if !ok {
		return 0, errs.New(errs.CodeUnpredictableGasLimit, "cannot estimate gas")
	}
	return est.EstimateGas(ctx, msg)
}

func (p *networkProvider) SendTransaction(ctx context.Context, node address.AccountID, tx []byte) error {
	if p.submit == nil {
		return errs.Unsupported("no transaction submitter configured", "sendTransaction")
	}
	n, ok := p.net.Node(node)
	if !ok {
		return errs.Argument("unknown node account", "nodeId", node.String())
	}
	return p.submit(ctx, n, tx)
}
