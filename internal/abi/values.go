package abi

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
)

// Indexed stands in for an indexed event parameter whose value cannot be
// recovered from the log because only its hash is stored. Hash is nil when
// the log was decoded without topics.
type Indexed struct {
	Hash *common.Hash
}

// IsIndexed reports whether v is an Indexed marker.
func IsIndexed(v any) bool {
	switch v.(type) {
	case Indexed, *Indexed:
		return true
	}
	return false
}

// toBigInt accepts Go integers, big.Int values and numeric strings
// (decimal, 0x-hex, -0x-hex).
func toBigInt(v any, name string) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			break
		}
		return new(big.Int).Set(x), nil
	case big.Int:
		return new(big.Int).Set(&x), nil
	case int:
		return big.NewInt(int64(x)), nil
	case int8:
		return big.NewInt(int64(x)), nil
	case int16:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) <= 1<<53 {
			return big.NewInt(int64(x)), nil
		}
	case json.Number:
		return parseBigString(string(x), name)
	case string:
		return parseBigString(x, name)
	}
	return nil, errs.Argument("invalid BigNumber value", name, v)
}

func parseBigString(s, name string) (*big.Int, error) {
	str := strings.TrimSpace(s)
	neg := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		digits := str[2:]
		if digits == "" {
			digits = "0"
		}
		_, ok = n.SetString(digits, 16)
	} else {
		_, ok = n.SetString(str, 10)
	}
	if !ok {
		return nil, errs.Argument("invalid BigNumber string", name, s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// toBytes accepts []byte, 0x-prefixed hex strings, common.Hash and any
// fixed-size byte array.
func toBytes(v any, name string) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case common.Hash:
		return x.Bytes(), nil
	case string:
		return hexToBytes(x, name)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		for i := range out {
			out[i] = byte(rv.Index(i).Uint())
		}
		return out, nil
	}
	return nil, errs.Argument("invalid arrayify value", name, v)
}

func hexToBytes(s, name string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, errs.Argument("invalid arrayify value", name, s)
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return nil, errs.From(errs.OddLengthHex, "argument", name, "value", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, errs.Argument("invalid arrayify value", name, s)
	}
	return b, nil
}

// toAddress accepts common.Address, [20]byte, hex strings with or without
// 0x, and shard.realm.num account ids.
func toAddress(v any, name string) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case *common.Address:
		if x != nil {
			return *x, nil
		}
	case [20]byte:
		return common.Address(x), nil
	case string:
		a, err := address.ToAddress(x)
		if err != nil {
			return common.Address{}, errs.Argument("invalid address", name, x)
		}
		return a, nil
	}
	return common.Address{}, errs.Argument("invalid address", name, v)
}

// toSlice turns any slice or array value into []any.
func toSlice(v any, name string) ([]any, error) {
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errs.Argument("expected array value", name, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Named pairs decoded values with their parameter names, skipping unnamed ones.
func Named(params []*ParamType, values []any) map[string]any {
	out := make(map[string]any, len(params))
	for i, p := range params {
		if p.Name != "" && i < len(values) {
			out[p.Name] = values[i]
		}
	}
	return out
}
