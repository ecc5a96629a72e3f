// Package errs defines the coded errors returned across hethers.
//
// Every failure carries a stable machine-checkable Code and a human-readable
// Reason. The exported kind values (InvalidType, ValueOutOfBounds, ...) are
// prototypes for errors.Is: a *Error matches a kind when the codes are equal
// and, if the kind names a reason, the reasons are equal too.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable error code.
type Code string

// Error codes.
const (
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeBufferOverrun         Code = "BUFFER_OVERRUN"
	CodeNumericFault          Code = "NUMERIC_FAULT"
	CodeUnsupportedOperation  Code = "UNSUPPORTED_OPERATION"
	CodeUnpredictableGasLimit Code = "UNPREDICTABLE_GAS_LIMIT"
	CodeInsufficientFunds     Code = "INSUFFICIENT_FUNDS"
	CodeCallException         Code = "CALL_EXCEPTION"
)

// Param is one key/value detail attached to an Error.
type Param struct {
	Key   string
	Value any
}

// Error is a coded failure.
type Error struct {
	Code   Code
	Reason string
	Params []Param
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	b.WriteString(" (")
	for _, p := range e.Params {
		fmt.Fprintf(&b, "%s=%s, ", p.Key, formatValue(p.Value))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, "error=%q, ", e.Err.Error())
	}
	b.WriteString("code=")
	b.WriteString(string(e.Code))
	b.WriteString(")")
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind this error belongs to.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Param returns the value stored under key, if any.
func (e *Error) Param(key string) (any, bool) {
	for _, p := range e.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Kinds.
var (
	InvalidType                = &Error{Code: CodeInvalidArgument, Reason: "invalid type"}
	ValueOutOfBounds           = &Error{Code: CodeInvalidArgument, Reason: "value out-of-bounds"}
	OddLengthHex               = &Error{Code: CodeInvalidArgument, Reason: "hex data is odd-length"}
	IncorrectDataLength        = &Error{Code: CodeInvalidArgument, Reason: "incorrect data length"}
	DataOutOfBounds            = &Error{Code: CodeBufferOverrun, Reason: "data out-of-bounds"}
	NoMatchingFunction         = &Error{Code: CodeInvalidArgument, Reason: "no matching function"}
	AmbiguousFunction          = &Error{Code: CodeInvalidArgument, Reason: "multiple matching functions"}
	PrivateKeyAliasMismatch    = &Error{Code: CodeInvalidArgument, Reason: "privateKey/alias mismatch"}
	MnemonicPrivateKeyMismatch = &Error{Code: CodeInvalidArgument, Reason: "mnemonic/privateKey mismatch"}
	MissingProvider            = &Error{Code: CodeUnsupportedOperation, Reason: "missing provider"}
	UnsupportedOperation       = &Error{Code: CodeUnsupportedOperation}
	UnpredictableGasLimit      = &Error{Code: CodeUnpredictableGasLimit}
	InsufficientFunds          = &Error{Code: CodeInsufficientFunds}
	InvalidArgument            = &Error{Code: CodeInvalidArgument}
	CallException              = &Error{Code: CodeCallException}
)

// New builds an Error. kv is a flat list of alternating keys and values.
func New(code Code, reason string, kv ...any) *Error {
	e := &Error{Code: code, Reason: reason}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		e.Params = append(e.Params, Param{Key: key, Value: kv[i+1]})
	}
	return e
}

// From builds an Error of the given kind, keeping its code and reason.
func From(kind *Error, kv ...any) *Error {
	return New(kind.Code, kind.Reason, kv...)
}

// Wrap attaches a cause to a new Error.
func Wrap(err error, code Code, reason string, kv ...any) *Error {
	e := New(code, reason, kv...)
	e.Err = err
	return e
}

// Argument reports a bad argument value.
func Argument(reason, name string, value any) *Error {
	return New(CodeInvalidArgument, reason, "argument", name, "value", value)
}

// Unsupported reports an operation the receiver cannot perform.
func Unsupported(reason, operation string) *Error {
	return New(CodeUnsupportedOperation, reason, "operation", operation)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ReasonOf returns the reason of the first *Error in err's chain, or "".
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []byte:
		return fmt.Sprintf("0x%x", x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
