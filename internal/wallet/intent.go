package wallet

import (
	"math/big"

	"github.com/Mohsinsiddi/hethers/internal/errs"
)

// Intent is the kind of HAPI transaction a request turns into.
type Intent int

const (
	IntentContractCall Intent = iota + 1
	IntentContractCreate
	IntentFileCreate
	IntentFileAppend
	IntentCryptoTransfer
	IntentCryptoCreate
)

var intentNames = map[Intent]string{
	IntentContractCall:   "ContractCall",
	IntentContractCreate: "ContractCreate",
	IntentFileCreate:     "FileCreate",
	IntentFileAppend:     "FileAppend",
	IntentCryptoTransfer: "CryptoTransfer",
	IntentCryptoCreate:   "CryptoCreate",
}

func (i Intent) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "Unknown"
}

// CustomData carries the Hedera-specific parts of a request.
type CustomData struct {
	// FileChunk is file content; nil means no file operation.
	FileChunk []byte
	// FileID selects append over create.
	FileID string
	// FileKey is a raw or DER-encoded public key controlling a new file.
	// Empty means the wallet's own key.
	FileKey string
	// BytecodeFileID names the file holding contract bytecode.
	BytecodeFileID string
}

// TransactionRequest is an unsigned transaction in ethers shape.
type TransactionRequest struct {
	// To is an EVM address or an "s.r.n" account id.
	To string
	// From must match the wallet's address when set.
	From  string
	Value *big.Int
	// Data is calldata or constructor arguments. A non-nil empty slice
	// counts as present.
	Data []byte
	// GasLimit of 0 means not provided.
	GasLimit   uint64
	CustomData *CustomData
	// NodeID pins the consensus node, as "s.r.n".
	NodeID string
	Memo   string
}

func (r *TransactionRequest) fileChunk() bool {
	return r.CustomData != nil && r.CustomData.FileChunk != nil
}

func (r *TransactionRequest) bytecodeFile() bool {
	return r.CustomData != nil && r.CustomData.BytecodeFileID != ""
}

// needsContractCheck reports whether Classify depends on whether To holds
// a contract.
func (r *TransactionRequest) needsContractCheck() bool {
	return !r.fileChunk() && !r.bytecodeFile() && r.To != "" && r.Data == nil
}

// Classify decides which transaction a request becomes. isContract is only
// consulted for requests with a recipient and no data.
func Classify(req *TransactionRequest, isContract bool) (Intent, error) {
	switch {
	case req.fileChunk():
		if req.CustomData.FileID == "" {
			return IntentFileCreate, nil
		}
		return IntentFileAppend, nil
	case req.bytecodeFile(), req.To == "" && req.Data != nil:
		if req.GasLimit == 0 {
			return 0, errs.Argument("gasLimit is not provided. Cannot execute a Contract Create", "gasLimit", nil)
		}
		return IntentContractCreate, nil
	case req.To == "":
		return 0, errs.New(errs.CodeUnpredictableGasLimit, "missing to", "operation", "signTransaction")
	case req.Data != nil:
		if req.GasLimit == 0 {
			return 0, errs.Argument("gasLimit is not provided. Cannot execute a Contract Call", "gasLimit", nil)
		}
		return IntentContractCall, nil
	case req.GasLimit != 0:
		if !isContract {
			return 0, errs.Argument("receiver is an account. Cannot execute a Contract Call", "to", req.To)
		}
		return IntentContractCall, nil
	case isContract:
		return IntentContractCall, nil
	}
	return IntentCryptoTransfer, nil
}
