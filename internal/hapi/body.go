package hapi

import (
	"time"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Payload defaults.
const (
	DefaultTransactionFee  uint64 = 200000000 // 2 hbar, in tinybars
	DefaultValidDuration          = 120 * time.Second
	MaxValidStartJitter           = 5 * time.Second
	DefaultAutoRenewPeriod        = 7890000 * time.Second
	DefaultFileExpiration         = 7890000 * time.Second
)

// TransactionBody field numbers for the data cases.
const (
	fieldContractCall   protowire.Number = 7
	fieldContractCreate protowire.Number = 8
	fieldCryptoCreate   protowire.Number = 11
	fieldCryptoTransfer protowire.Number = 14
	fieldFileAppend     protowire.Number = 16
	fieldFileCreate     protowire.Number = 17
)

// Data is the transaction-specific part of a body.
type Data interface {
	bodyField() protowire.Number
	marshal() []byte
}

// TransactionBody is everything a transaction signature covers.
type TransactionBody struct {
	TransactionID  TransactionID
	NodeAccountID  address.AccountID
	TransactionFee uint64
	ValidDuration  time.Duration
	Memo           string
	Data           Data
}

// Marshal encodes the body.
func (t *TransactionBody) Marshal() []byte {
	var b []byte
	b = appendTransactionID(b, 1, t.TransactionID)
	b = appendAccountID(b, 2, t.NodeAccountID)
	b = appendVarint(b, 3, t.TransactionFee)
	b = appendDuration(b, 4, t.ValidDuration)
	b = appendString(b, 6, t.Memo)
	if t.Data != nil {
		b = appendMessage(b, t.Data.bodyField(), t.Data.marshal())
	}
	return b
}

// UnmarshalTransactionBody decodes a body produced by Marshal. Data cases
// this package does not model are skipped.
func UnmarshalTransactionBody(b []byte) (*TransactionBody, error) {
	t := &TransactionBody{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			t.TransactionID, err = parseTransactionID(f.bytes)
		case 2:
			t.NodeAccountID, err = parseAccountID(f.bytes)
		case 3:
			t.TransactionFee = f.varint
		case 4:
			t.ValidDuration, err = parseDuration(f.bytes)
		case 6:
			t.Memo = string(f.bytes)
		case fieldContractCall:
			t.Data, err = parseContractCall(f.bytes)
		case fieldContractCreate:
			t.Data, err = parseContractCreate(f.bytes)
		case fieldCryptoCreate:
			t.Data, err = parseCryptoCreate(f.bytes)
		case fieldCryptoTransfer:
			t.Data, err = parseCryptoTransfer(f.bytes)
		case fieldFileAppend:
			t.Data, err = parseFileAppend(f.bytes)
		case fieldFileCreate:
			t.Data, err = parseFileCreate(f.bytes)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "hapi: decoding transaction body")
	}
	return t, nil
}

// ContractCall invokes a deployed contract.
type ContractCall struct {
	Contract           ContractID
	Gas                int64
	Amount             int64
	FunctionParameters []byte
}

func (*ContractCall) bodyField() protowire.Number { return fieldContractCall }

func (c *ContractCall) marshal() []byte {
	var b []byte
	b = appendContractID(b, 1, c.Contract)
	b = appendInt64(b, 2, c.Gas)
	b = appendInt64(b, 3, c.Amount)
	return appendBytes(b, 4, c.FunctionParameters)
}

func parseContractCall(b []byte) (*ContractCall, error) {
	c := &ContractCall{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			c.Contract, err = parseContractID(f.bytes)
		case 2:
			c.Gas = f.int64()
		case 3:
			c.Amount = f.int64()
		case 4:
			c.FunctionParameters = append([]byte(nil), f.bytes...)
		}
		return err
	})
	return c, err
}

// ContractCreate deploys bytecode previously stored in a file.
type ContractCreate struct {
	BytecodeFile          FileID
	AdminKey              *Key
	Gas                   int64
	InitialBalance        int64
	AutoRenewPeriod       time.Duration
	ConstructorParameters []byte
	Memo                  string
}

func (*ContractCreate) bodyField() protowire.Number { return fieldContractCreate }

func (c *ContractCreate) marshal() []byte {
	var b []byte
	b = appendFileID(b, 1, c.BytecodeFile)
	if c.AdminKey != nil {
		b = appendKey(b, 3, *c.AdminKey)
	}
	b = appendInt64(b, 4, c.Gas)
	b = appendInt64(b, 5, c.InitialBalance)
	if c.AutoRenewPeriod > 0 {
		b = appendDuration(b, 8, c.AutoRenewPeriod)
	}
	b = appendBytes(b, 9, c.ConstructorParameters)
	return appendString(b, 13, c.Memo)
}

func parseContractCreate(b []byte) (*ContractCreate, error) {
	c := &ContractCreate{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			c.BytecodeFile, err = parseFileID(f.bytes)
		case 3:
			var k Key
			k, err = parseKey(f.bytes)
			c.AdminKey = &k
		case 4:
			c.Gas = f.int64()
		case 5:
			c.InitialBalance = f.int64()
		case 8:
			c.AutoRenewPeriod, err = parseDuration(f.bytes)
		case 9:
			c.ConstructorParameters = append([]byte(nil), f.bytes...)
		case 13:
			c.Memo = string(f.bytes)
		}
		return err
	})
	return c, err
}

// CryptoCreate creates an account owned by Key.
type CryptoCreate struct {
	Key             Key
	InitialBalance  uint64
	AutoRenewPeriod time.Duration
	Memo            string
}

func (*CryptoCreate) bodyField() protowire.Number { return fieldCryptoCreate }

func (c *CryptoCreate) marshal() []byte {
	var b []byte
	b = appendKey(b, 1, c.Key)
	b = appendVarint(b, 2, c.InitialBalance)
	if c.AutoRenewPeriod > 0 {
		b = appendDuration(b, 9, c.AutoRenewPeriod)
	}
	return appendString(b, 13, c.Memo)
}

func parseCryptoCreate(b []byte) (*CryptoCreate, error) {
	c := &CryptoCreate{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			c.Key, err = parseKey(f.bytes)
		case 2:
			c.InitialBalance = f.varint
		case 9:
			c.AutoRenewPeriod, err = parseDuration(f.bytes)
		case 13:
			c.Memo = string(f.bytes)
		}
		return err
	})
	return c, err
}

// AccountAmount is one leg of a transfer; negative amounts are debits.
type AccountAmount struct {
	Account address.AccountID
	Amount  int64
}

// CryptoTransfer moves hbar between accounts. Amounts must sum to zero.
type CryptoTransfer struct {
	Transfers []AccountAmount
}

// NewHbarTransfer debits from and credits to by amount tinybars.
func NewHbarTransfer(from, to address.AccountID, amount int64) *CryptoTransfer {
	return &CryptoTransfer{Transfers: []AccountAmount{
		{Account: from, Amount: -amount},
		{Account: to, Amount: amount},
	}}
}

func (*CryptoTransfer) bodyField() protowire.Number { return fieldCryptoTransfer }

func (c *CryptoTransfer) marshal() []byte {
	var list []byte
	for _, aa := range c.Transfers {
		var msg []byte
		msg = appendAccountID(msg, 1, aa.Account)
		msg = appendSint64(msg, 2, aa.Amount)
		list = appendMessage(list, 1, msg)
	}
	return appendMessage(nil, 1, list)
}

func parseCryptoTransfer(b []byte) (*CryptoTransfer, error) {
	c := &CryptoTransfer{}
	err := walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		return walk(f.bytes, func(f field) error {
			if f.num != 1 {
				return nil
			}
			var aa AccountAmount
			err := walk(f.bytes, func(f field) (err error) {
				switch f.num {
				case 1:
					aa.Account, err = parseAccountID(f.bytes)
				case 2:
					aa.Amount = protowire.DecodeZigZag(f.varint)
				}
				return err
			})
			c.Transfers = append(c.Transfers, aa)
			return err
		})
	})
	return c, err
}

// FileCreate stores the first chunk of a file.
type FileCreate struct {
	Expiration time.Time
	Keys       []Key
	Contents   []byte
	Memo       string
}

func (*FileCreate) bodyField() protowire.Number { return fieldFileCreate }

func (c *FileCreate) marshal() []byte {
	var b []byte
	if !c.Expiration.IsZero() {
		b = appendTimestamp(b, 2, c.Expiration)
	}
	b = appendKeyList(b, 3, c.Keys)
	b = appendBytes(b, 4, c.Contents)
	return appendString(b, 8, c.Memo)
}

func parseFileCreate(b []byte) (*FileCreate, error) {
	c := &FileCreate{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 2:
			c.Expiration, err = parseTimestamp(f.bytes)
		case 3:
			c.Keys, err = parseKeyList(f.bytes)
		case 4:
			c.Contents = append([]byte(nil), f.bytes...)
		case 8:
			c.Memo = string(f.bytes)
		}
		return err
	})
	return c, err
}

// FileAppend adds a chunk to an existing file.
type FileAppend struct {
	File     FileID
	Contents []byte
}

func (*FileAppend) bodyField() protowire.Number { return fieldFileAppend }

func (c *FileAppend) marshal() []byte {
	b := appendFileID(nil, 2, c.File)
	return appendBytes(b, 4, c.Contents)
}

func parseFileAppend(b []byte) (*FileAppend, error) {
	c := &FileAppend{}
	err := walk(b, func(f field) (err error) {
		switch f.num {
		case 2:
			c.File, err = parseFileID(f.bytes)
		case 4:
			c.Contents = append([]byte(nil), f.bytes...)
		}
		return err
	})
	return c, err
}
