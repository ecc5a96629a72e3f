package wallet

import (
	"context"
	"encoding/hex"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/hapi"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
)

var now = time.Now

// TransactionResponse describes a submitted transaction.
type TransactionResponse struct {
	TransactionID string
	// Hash is the SHA-384 of the signed transaction bytes, 0x-prefixed.
	Hash       string
	Intent     Intent
	From       string
	To         string
	Node       address.AccountID
	ChainID    int64
	Value      *big.Int
	GasLimit   uint64
	Data       []byte
	CustomData *CustomData
	// Raw is the serialized Transaction that was sent.
	Raw []byte
}

type signed struct {
	tx   *hapi.Transaction
	body *hapi.TransactionBody
}

// SignTransaction classifies req, builds the matching HAPI body and returns
// the serialized, signed Transaction.
func (w *Wallet) SignTransaction(ctx context.Context, req *TransactionRequest) ([]byte, error) {
	s, _, err := w.prepare(ctx, req, "signTransaction")
	if err != nil {
		return nil, err
	}
	return s.tx.Marshal(), nil
}

// SendTransaction signs req and submits it through the provider.
func (w *Wallet) SendTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	s, intent, err := w.prepare(ctx, req, "sendTransaction")
	if err != nil {
		return nil, err
	}
	resp, err := w.submit(ctx, s, intent)
	if err != nil {
		return nil, err
	}
	resp.To = req.To
	resp.Value = req.Value
	resp.GasLimit = req.GasLimit
	resp.Data = req.Data
	resp.CustomData = req.CustomData
	return resp, nil
}

// CreateAccount creates an account owned by pubKey. A 33-byte key is
// secp256k1 and a 32-byte key Ed25519; DER-wrapped keys are accepted.
func (w *Wallet) CreateAccount(ctx context.Context, pubKey []byte, initialBalance *big.Int) (*TransactionResponse, error) {
	if err := w.checkSigner("createAccount"); err != nil {
		return nil, err
	}
	key, err := hapi.KeyFromPublic(pubKey)
	if err != nil {
		return nil, err
	}
	var balance uint64
	if initialBalance != nil {
		if initialBalance.Sign() < 0 || !initialBalance.IsUint64() {
			return nil, errs.From(errs.ValueOutOfBounds, "initialBalance", initialBalance.String())
		}
		balance = initialBalance.Uint64()
	}
	data := &hapi.CryptoCreate{Key: key, InitialBalance: balance, AutoRenewPeriod: hapi.DefaultAutoRenewPeriod}
	s, err := w.sign(data, "", "")
	if err != nil {
		return nil, err
	}
	resp, err := w.submit(ctx, s, IntentCryptoCreate)
	if err != nil {
		return nil, err
	}
	resp.Value = initialBalance
	return resp, nil
}

// Call runs a read-only contract call through the provider.
func (w *Wallet) Call(ctx context.Context, req *TransactionRequest) ([]byte, error) {
	if w.provider == nil {
		return nil, errs.From(errs.MissingProvider, "operation", "call")
	}
	to, err := address.ToAddress(req.To)
	if err != nil {
		return nil, errs.Argument("invalid contract address", "to", req.To)
	}
	if req.GasLimit == 0 {
		return nil, errs.New(errs.CodeUnpredictableGasLimit, "gasLimit is not provided", "operation", "call")
	}
	msg := ethereum.CallMsg{To: &to, Gas: req.GasLimit, Value: req.Value, Data: req.Data}
	if from := w.Address(); from != "" {
		msg.From = common.HexToAddress(from)
	}
	out, err := w.provider.Call(ctx, msg)
	if err != nil {
		if errs.CodeOf(err) == "" && strings.Contains(err.Error(), "INSUFFICIENT_GAS") {
			return nil, errs.Wrap(err, errs.CodeInsufficientFunds, "insufficient funds for gas")
		}
		return nil, err
	}
	return out, nil
}

func (w *Wallet) checkSigner(op string) error {
	if w.provider == nil {
		return errs.From(errs.MissingProvider, "operation", op)
	}
	if w.account == nil {
		return errs.Unsupported("missing account", op)
	}
	return nil
}

func (w *Wallet) prepare(ctx context.Context, req *TransactionRequest, op string) (*signed, Intent, error) {
	if err := w.checkSigner(op); err != nil {
		return nil, 0, err
	}
	if req.From != "" {
		from, err := address.ToAddress(req.From)
		if err != nil {
			return nil, 0, err
		}
		if from.Hex() != w.Address() {
			return nil, 0, errs.Argument("transaction from address mismatch", "from", req.From)
		}
	}

	isContract := false
	if req.needsContractCheck() {
		to, err := address.ToAddress(req.To)
		if err != nil {
			return nil, 0, err
		}
		if isContract, err = w.provider.IsContract(ctx, to); err != nil {
			return nil, 0, err
		}
	}
	intent, err := Classify(req, isContract)
	if err != nil {
		return nil, 0, err
	}
	log.Debug().Stringer("intent", intent).Bool("isContract", isContract).Msg("classified transaction")

	data, err := w.buildData(ctx, req, intent)
	if err != nil {
		return nil, 0, err
	}
	s, err := w.sign(data, req.NodeID, req.Memo)
	if err != nil {
		return nil, 0, err
	}
	return s, intent, nil
}

func (w *Wallet) buildData(ctx context.Context, req *TransactionRequest, intent Intent) (hapi.Data, error) {
	value, err := tinybars(req.Value)
	if err != nil {
		return nil, err
	}
	switch intent {
	case IntentFileCreate:
		key, err := w.fileKey(req.CustomData.FileKey)
		if err != nil {
			return nil, err
		}
		return &hapi.FileCreate{
			Expiration: now().Add(hapi.DefaultFileExpiration),
			Keys:       []hapi.Key{key},
			Contents:   req.CustomData.FileChunk,
		}, nil

	case IntentFileAppend:
		file, err := hapi.ParseFileID(req.CustomData.FileID)
		if err != nil {
			return nil, err
		}
		return &hapi.FileAppend{File: file, Contents: req.CustomData.FileChunk}, nil

	case IntentContractCreate:
		if !req.bytecodeFile() {
			return nil, errs.Argument("bytecodeFileId is not provided. Cannot execute a Contract Create", "customData.bytecodeFileId", nil)
		}
		file, err := hapi.ParseFileID(req.CustomData.BytecodeFileID)
		if err != nil {
			return nil, err
		}
		return &hapi.ContractCreate{
			BytecodeFile:          file,
			Gas:                   int64(req.GasLimit),
			InitialBalance:        value,
			AutoRenewPeriod:       hapi.DefaultAutoRenewPeriod,
			ConstructorParameters: req.Data,
		}, nil

	case IntentContractCall:
		to, err := address.ToAddress(req.To)
		if err != nil {
			return nil, err
		}
		gas := req.GasLimit
		if gas == 0 {
			if gas, err = w.estimateGas(ctx, to, req); err != nil {
				return nil, err
			}
		}
		return &hapi.ContractCall{
			Contract:           hapi.ContractIDFromAddress(to),
			Gas:                int64(gas),
			Amount:             value,
			FunctionParameters: req.Data,
		}, nil

	case IntentCryptoTransfer:
		to, err := receiverAccount(req.To)
		if err != nil {
			return nil, err
		}
		return hapi.NewHbarTransfer(*w.account, to, value), nil
	}
	return nil, errs.Unsupported("unsupported transaction intent", intent.String())
}

func (w *Wallet) estimateGas(ctx context.Context, to common.Address, req *TransactionRequest) (uint64, error) {
	est, ok := w.provider.(GasEstimator)
	if !ok {
		return 0, errs.New(errs.CodeUnpredictableGasLimit, "cannot estimate gas", "to", req.To)
	}
	msg := ethereum.CallMsg{To: &to, Value: req.Value, Data: req.Data}
	if from := w.Address(); from != "" {
		msg.From = common.HexToAddress(from)
	}
	gas, err := est.EstimateGas(ctx, msg)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeUnpredictableGasLimit, "cannot estimate gas", "to", req.To)
	}
	return gas, nil
}

func (w *Wallet) fileKey(s string) (hapi.Key, error) {
	if s != "" {
		return hapi.ParseKey(s)
	}
	return hapi.KeyFromPublic(w.key.CompressedPublicKey())
}

// sign wraps data in a body paid for by the wallet's account and signs it.
func (w *Wallet) sign(data hapi.Data, nodeID, memo string) (*signed, error) {
	net := w.provider.Network()
	node := net.RandomNode().Account
	if nodeID != "" {
		id, err := address.ParseAccount(nodeID)
		if err != nil {
			return nil, err
		}
		if _, ok := net.Node(id); !ok {
			return nil, errs.Argument("unknown node account", "nodeId", nodeID)
		}
		node = id
	}

	body := &hapi.TransactionBody{
		TransactionID:  hapi.NewTransactionID(*w.account, now(), time.Duration(rand.Int63n(int64(hapi.MaxValidStartJitter)))),
		NodeAccountID:  node,
		TransactionFee: hapi.DefaultTransactionFee,
		ValidDuration:  hapi.DefaultValidDuration,
		Memo:           memo,
		Data:           data,
	}
	log.Debug().Str("node", node.String()).Str("txId", body.TransactionID.String()).Msg("signing transaction")

	bodyBytes := body.Marshal()
	digest := bodyBytes
	if w.key.Curve() == signingkey.Secp256k1 {
		digest = crypto.Keccak256(bodyBytes)
	}
	sig, err := w.key.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	pub, err := hapi.KeyFromPublic(w.key.CompressedPublicKey())
	if err != nil {
		return nil, err
	}
	tx := hapi.NewTransaction(&hapi.SignedTransaction{
		BodyBytes: bodyBytes,
		SigMap:    []hapi.SignaturePair{hapi.NewSignaturePair(pub, sig.Compact())},
	})
	return &signed{tx: tx, body: body}, nil
}

func (w *Wallet) submit(ctx context.Context, s *signed, intent Intent) (*TransactionResponse, error) {
	raw := s.tx.Marshal()
	if err := w.provider.SendTransaction(ctx, s.body.NodeAccountID, raw); err != nil {
		return nil, err
	}
	return &TransactionResponse{
		TransactionID: s.body.TransactionID.String(),
		Hash:          "0x" + hex.EncodeToString(s.tx.Hash()),
		Intent:        intent,
		From:          w.Address(),
		Node:          s.body.NodeAccountID,
		ChainID:       w.provider.Network().ChainID,
		Raw:           raw,
	}, nil
}

// receiverAccount resolves a transfer recipient to an account id.
func receiverAccount(to string) (address.AccountID, error) {
	if id, err := address.ParseAccount(to); err == nil {
		return id, nil
	}
	a, err := address.ToAddress(to)
	if err != nil {
		return address.AccountID{}, err
	}
	if !address.IsLongZero(a) {
		return address.AccountID{}, errs.Argument("receiver must be an account id or a long-zero address", "to", to)
	}
	return address.AccountFromEVM(a), nil
}

func tinybars(v *big.Int) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 || !v.IsInt64() {
		return 0, errs.From(errs.ValueOutOfBounds, "value", v.String())
	}
	return v.Int64(), nil
}
