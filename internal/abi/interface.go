package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
)

var (
	selectorRe = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)
	topicRe    = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// Revert payload selectors that every contract can produce.
var (
	errorStringSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0} // Error(string)
	panicSelector       = [4]byte{0x4e, 0x48, 0x7b, 0x71} // Panic(uint256)
)

var panicReasons = map[uint64]string{
	0x00: "generic panic",
	0x01: "assert(false)",
	0x11: "arithmetic underflow or overflow",
	0x12: "division or modulo by zero",
	0x21: "enum overflow",
	0x22: "invalid encoded storage byte array accessed",
	0x31: "out-of-bounds array access; popping on an empty array",
	0x32: "out-of-bounds access of an array or bytesN",
	0x41: "out of memory",
	0x51: "uninitialized function",
}

// Interface indexes the fragments of one contract ABI. It is immutable after
// construction and safe for concurrent use.
type Interface struct {
	Fragments []Fragment
	Deploy    *ConstructorFragment
	Functions map[string]*FunctionFragment
	Events    map[string]*EventFragment
	Errors    map[string]*ErrorFragment
	Fallback  bool
	Receive   bool

	coder *Coder
}

// NewInterface builds an Interface from a JSON ABI (string or []byte), a list
// of human-readable signatures ([]string) or parsed fragments ([]Fragment).
func NewInterface(abi any) (*Interface, error) {
	switch v := abi.(type) {
	case string:
		return ParseJSON([]byte(v))
	case []byte:
		return ParseJSON(v)
	case []string:
		return ParseHumanReadable(v...)
	case []Fragment:
		return build(v, false, false)
	case *Interface:
		return v, nil
	}
	return nil, errs.Argument("invalid abi", "abi", fmt.Sprintf("%T", abi))
}

// MustNewInterface is NewInterface for constants; it panics on error.
func MustNewInterface(abi any) *Interface {
	iface, err := NewInterface(abi)
	if err != nil {
		panic(err)
	}
	return iface
}

// leadingKeyword returns the text before the first '(' or space.
func leadingKeyword(s string) string {
	if i := strings.IndexAny(s, "( \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseHumanReadable builds an Interface from signatures such as
// "function transfer(address to, uint amount) returns (bool)".
func ParseHumanReadable(sigs ...string) (*Interface, error) {
	frags := make([]Fragment, 0, len(sigs))
	var fallback, receive bool
	for _, s := range sigs {
		trimmed := strings.TrimSpace(s)
		switch leadingKeyword(trimmed) {
		case "fallback":
			fallback = true
			continue
		case "receive":
			receive = true
			continue
		}
		f, err := ParseFragment(trimmed)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	return build(frags, fallback, receive)
}

// ParseJSON builds an Interface from an ABI JSON array. Elements may be ABI
// objects or human-readable strings.
func ParseJSON(data []byte) (*Interface, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidArgument, "invalid abi json")
	}
	frags := make([]Fragment, 0, len(raw))
	var fallback, receive bool
	for _, r := range raw {
		var sig string
		if json.Unmarshal(r, &sig) == nil {
			f, err := ParseFragment(sig)
			if err != nil {
				return nil, err
			}
			frags = append(frags, f)
			continue
		}
		f, kind, err := fragmentFromJSON(r)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "fallback":
			fallback = true
		case "receive":
			receive = true
		default:
			frags = append(frags, f)
		}
	}
	return build(frags, fallback, receive)
}

func build(frags []Fragment, fallback, receive bool) (*Interface, error) {
	iface := &Interface{
		Functions: map[string]*FunctionFragment{},
		Events:    map[string]*EventFragment{},
		Errors:    map[string]*ErrorFragment{},
		Fallback:  fallback,
		Receive:   receive,
		coder:     DefaultCoder,
	}
	for _, f := range frags {
		sig := f.Format(FormatSighash)
		var dup bool
		switch ff := f.(type) {
		case *ConstructorFragment:
			if iface.Deploy != nil {
				log.Debug().Str("fragment", sig).Msg("abi: duplicate constructor ignored")
				continue
			}
			iface.Deploy = ff
		case *FunctionFragment:
			_, dup = iface.Functions[sig]
			if !dup {
				iface.Functions[sig] = ff
			}
		case *EventFragment:
			_, dup = iface.Events[sig]
			if !dup {
				iface.Events[sig] = ff
			}
		case *ErrorFragment:
			_, dup = iface.Errors[sig]
			if !dup {
				iface.Errors[sig] = ff
			}
		}
		if dup {
			log.Debug().Str("kind", f.Kind()).Str("fragment", sig).Msg("abi: duplicate definition ignored")
			continue
		}
		iface.Fragments = append(iface.Fragments, f)
	}
	if iface.Deploy == nil {
		iface.Deploy = &ConstructorFragment{StateMutability: "nonpayable"}
	}
	return iface, nil
}

// Format renders every fragment, one per element.
func (i *Interface) Format(f FormatType) []string {
	out := make([]string, len(i.Fragments))
	for n, frag := range i.Fragments {
		out[n] = frag.Format(f)
	}
	return out
}

// MarshalJSON renders the ABI JSON array.
func (i *Interface) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Fragments)
}

// ---------------------------------------------------------------------------
// Hashes
// ---------------------------------------------------------------------------

// GetSighash returns the 4-byte selector of a function or error.
func GetSighash(f Fragment) [4]byte {
	var out [4]byte
	copy(out[:], crypto.Keccak256([]byte(f.Format(FormatSighash)))[:4])
	return out
}

// GetEventTopic returns topic 0 of an event's logs.
func GetEventTopic(e *EventFragment) common.Hash {
	return crypto.Keccak256Hash([]byte(e.Format(FormatSighash)))
}

// GetSighash returns the selector of a function or error. A string key is
// resolved against the functions first, then the errors.
func (i *Interface) GetSighash(key any) ([4]byte, error) {
	switch k := key.(type) {
	case *FunctionFragment:
		return GetSighash(k), nil
	case *ErrorFragment:
		return GetSighash(k), nil
	case string:
		fn, err := i.GetFunction(k)
		if err == nil {
			return GetSighash(fn), nil
		}
		if e, eerr := i.GetError(k); eerr == nil {
			return GetSighash(e), nil
		}
		return [4]byte{}, err
	}
	return [4]byte{}, errs.Argument("invalid sighash key", "key", key)
}

// GetEventTopic returns topic 0 for the event named by key.
func (i *Interface) GetEventTopic(key any) (common.Hash, error) {
	ev, err := i.event(key)
	if err != nil {
		return common.Hash{}, err
	}
	return GetEventTopic(ev), nil
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// lookup resolves key against a signature-keyed map: a 0x selector (or
// topic, for events), a full signature, or a bare name that must be unique.
func lookup[F Fragment](m map[string]F, key string, hashKey func(F) string, hashRe *regexp.Regexp, normalize func(string) (string, error)) (F, error) {
	var zero F
	if hashRe.MatchString(key) {
		want := strings.ToLower(key)
		for _, f := range m {
			if hashKey(f) == want {
				return f, nil
			}
		}
		return zero, errs.From(errs.NoMatchingFunction, "key", key)
	}

	if strings.Contains(key, "(") {
		sig, err := normalize(key)
		if err != nil {
			return zero, err
		}
		if f, ok := m[sig]; ok {
			return f, nil
		}
		return zero, errs.From(errs.NoMatchingFunction, "signature", key)
	}

	var matches []F
	for sig, f := range m {
		if sig[:strings.IndexByte(sig, '(')] == key {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return zero, errs.From(errs.NoMatchingFunction, "name", key)
	case 1:
		return matches[0], nil
	}
	return zero, errs.From(errs.AmbiguousFunction, "name", key)
}

func normalizeAs(kind string) func(string) (string, error) {
	return func(key string) (string, error) {
		src := strings.TrimSpace(key)
		if !strings.HasPrefix(src, kind+" ") {
			src = kind + " " + src
		}
		f, err := ParseFragment(src)
		if err != nil {
			return "", err
		}
		return f.Format(FormatSighash), nil
	}
}

func selectorHex(f Fragment) string {
	s := GetSighash(f)
	return hexutil.Encode(s[:])
}

// GetFunction resolves a selector, signature or unique name.
func (i *Interface) GetFunction(key string) (*FunctionFragment, error) {
	return lookup(i.Functions, key, func(f *FunctionFragment) string { return selectorHex(f) }, selectorRe, normalizeAs("function"))
}

// GetEvent resolves a topic hash, signature or unique name.
func (i *Interface) GetEvent(key string) (*EventFragment, error) {
	return lookup(i.Events, key, func(e *EventFragment) string { return GetEventTopic(e).Hex() }, topicRe, normalizeAs("event"))
}

// GetError resolves a selector, signature or unique name.
func (i *Interface) GetError(key string) (*ErrorFragment, error) {
	return lookup(i.Errors, key, func(e *ErrorFragment) string { return selectorHex(e) }, selectorRe, normalizeAs("error"))
}

func (i *Interface) function(key any) (*FunctionFragment, error) {
	switch k := key.(type) {
	case *FunctionFragment:
		return k, nil
	case string:
		return i.GetFunction(k)
	}
	return nil, errs.Argument("invalid function key", "key", key)
}

func (i *Interface) event(key any) (*EventFragment, error) {
	switch k := key.(type) {
	case *EventFragment:
		return k, nil
	case string:
		return i.GetEvent(k)
	}
	return nil, errs.Argument("invalid event key", "key", key)
}

func (i *Interface) errorFragment(key any) (*ErrorFragment, error) {
	switch k := key.(type) {
	case *ErrorFragment:
		return k, nil
	case string:
		return i.GetError(k)
	}
	return nil, errs.Argument("invalid error key", "key", key)
}

// ---------------------------------------------------------------------------
// Function data
// ---------------------------------------------------------------------------

// EncodeFunctionData returns selector ‖ encoded arguments. fn is a
// *FunctionFragment or a lookup key.
func (i *Interface) EncodeFunctionData(fn any, values ...any) ([]byte, error) {
	f, err := i.function(fn)
	if err != nil {
		return nil, err
	}
	args, err := i.coder.Encode(f.Inputs, values)
	if err != nil {
		return nil, err
	}
	sel := GetSighash(f)
	return append(sel[:], args...), nil
}

// DecodeFunctionData decodes calldata after checking its selector.
func (i *Interface) DecodeFunctionData(fn any, data []byte) ([]any, error) {
	f, err := i.function(fn)
	if err != nil {
		return nil, err
	}
	sel := GetSighash(f)
	if len(data) < 4 || !bytes.Equal(data[:4], sel[:]) {
		return nil, errs.Argument(fmt.Sprintf("data signature does not match function %s.", f.Name), "data", data)
	}
	return i.coder.Decode(f.Inputs, data[4:])
}

// EncodeFunctionResult encodes return values.
func (i *Interface) EncodeFunctionResult(fn any, values ...any) ([]byte, error) {
	f, err := i.function(fn)
	if err != nil {
		return nil, err
	}
	return i.coder.Encode(f.Outputs, values)
}

// DecodeFunctionResult decodes return data. Revert payloads (Error(string),
// Panic(uint256) and errors declared in the ABI) come back as a
// CALL_EXCEPTION error carrying errorName, errorSignature and errorArgs.
func (i *Interface) DecodeFunctionResult(fn any, data []byte) ([]any, error) {
	f, err := i.function(fn)
	if err != nil {
		return nil, err
	}
	if len(data)%wordSize == 0 {
		if out, err := i.coder.Decode(f.Outputs, data); err == nil {
			return out, nil
		}
	}
	return nil, i.revertError(f, data)
}

func (i *Interface) revertError(f *FunctionFragment, data []byte) error {
	kv := []any{"method", f.Format(FormatSighash), "data", hexutil.Encode(data)}
	reason := "call revert exception"

	if len(data)%wordSize == 4 {
		var sel [4]byte
		copy(sel[:], data[:4])
		payload := data[4:]
		switch sel {
		case errorStringSelector:
			if vals, err := i.coder.Decode([]*ParamType{{Type: "string", BaseType: "string"}}, payload); err == nil {
				msg := vals[0].(string)
				kv = append(kv, "errorName", "Error", "errorSignature", "Error(string)", "errorArgs", vals, "reason", msg)
				reason += "; " + msg
			}
		case panicSelector:
			if vals, err := i.coder.Decode([]*ParamType{{Type: "uint256", BaseType: "uint256"}}, payload); err == nil {
				code := vals[0].(*big.Int)
				msg := "unknown panic code"
				if code.IsUint64() {
					if r, ok := panicReasons[code.Uint64()]; ok {
						msg = r
					}
				}
				kv = append(kv, "errorName", "Panic", "errorSignature", "Panic(uint256)", "errorArgs", vals, "reason", msg)
				reason += "; " + msg
			}
		default:
			if e, err := i.GetError(hexutil.Encode(sel[:])); err == nil {
				if vals, err := i.coder.Decode(e.Inputs, payload); err == nil {
					kv = append(kv, "errorName", e.Name, "errorSignature", e.Format(FormatSighash), "errorArgs", vals)
				}
			}
		}
	}
	return errs.New(errs.CodeCallException, reason, kv...)
}

// EncodeDeploy encodes constructor arguments.
func (i *Interface) EncodeDeploy(values ...any) ([]byte, error) {
	return i.coder.Encode(i.Deploy.Inputs, values)
}

// EncodeErrorResult returns selector ‖ encoded error arguments.
func (i *Interface) EncodeErrorResult(key any, values ...any) ([]byte, error) {
	e, err := i.errorFragment(key)
	if err != nil {
		return nil, err
	}
	args, err := i.coder.Encode(e.Inputs, values)
	if err != nil {
		return nil, err
	}
	sel := GetSighash(e)
	return append(sel[:], args...), nil
}

// DecodeErrorResult decodes revert data for a declared error.
func (i *Interface) DecodeErrorResult(key any, data []byte) ([]any, error) {
	e, err := i.errorFragment(key)
	if err != nil {
		return nil, err
	}
	sel := GetSighash(e)
	if len(data) < 4 || !bytes.Equal(data[:4], sel[:]) {
		return nil, errs.Argument(fmt.Sprintf("data signature does not match error %s.", e.Name), "data", data)
	}
	return i.coder.Decode(e.Inputs, data[4:])
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// EncodeFilterTopics builds the topic filter for an event. Each position
// after topic 0 belongs to an indexed input; a nil slot matches anything and
// an element slot with several hashes matches any of them. Values for
// non-indexed inputs are ignored.
func (i *Interface) EncodeFilterTopics(event any, values []any) ([][]common.Hash, error) {
	ev, err := i.event(event)
	if err != nil {
		return nil, err
	}
	if len(values) > len(ev.Inputs) {
		return nil, errs.New(errs.CodeInvalidArgument, "too many arguments for "+ev.Format(FormatSighash),
			"count", len(values), "expectedCount", len(ev.Inputs))
	}

	var topics [][]common.Hash
	if !ev.Anonymous {
		topics = append(topics, []common.Hash{GetEventTopic(ev)})
	}
	for n, v := range values {
		p := ev.Inputs[n]
		if !p.Indexed {
			continue
		}
		if v == nil {
			topics = append(topics, nil)
			continue
		}
		if set, ok := orSet(p, v); ok {
			slot := make([]common.Hash, len(set))
			for k, item := range set {
				if slot[k], err = encodeTopic(p, item); err != nil {
					return nil, err
				}
			}
			topics = append(topics, slot)
			continue
		}
		h, err := encodeTopic(p, v)
		if err != nil {
			return nil, err
		}
		topics = append(topics, []common.Hash{h})
	}

	for len(topics) > 0 && topics[len(topics)-1] == nil {
		topics = topics[:len(topics)-1]
	}
	return topics, nil
}

// orSet reports whether v lists several alternatives for an elementary
// indexed input.
func orSet(p *ParamType, v any) ([]any, bool) {
	if p.IsArray() || p.IsTuple() {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for k := range out {
		out[k] = rv.Index(k).Interface()
	}
	return out, true
}

func encodeTopic(p *ParamType, v any) (common.Hash, error) {
	switch {
	case p.Type == "string":
		s, ok := v.(string)
		if !ok {
			return common.Hash{}, errs.Argument("invalid string value", p.Name, v)
		}
		return crypto.Keccak256Hash([]byte(s)), nil
	case p.Type == "bytes":
		b, err := toBytes(v, p.Name)
		if err != nil {
			return common.Hash{}, err
		}
		return crypto.Keccak256Hash(b), nil
	case p.IsArray(), p.IsTuple():
		enc, err := encodeInPlace(p, v)
		if err != nil {
			return common.Hash{}, err
		}
		return crypto.Keccak256Hash(enc), nil
	}
	enc, err := DefaultCoder.Encode([]*ParamType{p}, []any{v})
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(enc), nil
}

// encodeInPlace is the indexed-argument encoding of arrays and tuples:
// members padded to whole words and concatenated with no offsets or
// length prefixes.
func encodeInPlace(p *ParamType, v any) ([]byte, error) {
	switch {
	case p.IsArray():
		items, err := toSlice(v, p.Name)
		if err != nil {
			return nil, err
		}
		if p.ArrayLength >= 0 && len(items) != p.ArrayLength {
			return nil, errs.New(errs.CodeInvalidArgument, "wrong number of array elements",
				"argument", p.Name, "count", len(items), "expectedCount", p.ArrayLength)
		}
		var out []byte
		for _, item := range items {
			enc, err := encodeInPlace(p.ArrayChildren, item)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	case p.IsTuple():
		var items []any
		if m, ok := v.(map[string]any); ok {
			for _, c := range p.Components {
				items = append(items, m[c.Name])
			}
		} else {
			var err error
			if items, err = toSlice(v, p.Name); err != nil {
				return nil, err
			}
		}
		if len(items) != len(p.Components) {
			return nil, errs.New(errs.CodeInvalidArgument, "types/values length mismatch",
				"argument", p.Name, "count", len(items), "expectedCount", len(p.Components))
		}
		var out []byte
		for k, c := range p.Components {
			enc, err := encodeInPlace(c, items[k])
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	case p.Type == "string" || p.Type == "bytes":
		var b []byte
		if s, ok := v.(string); ok && p.Type == "string" {
			b = []byte(s)
		} else {
			var err error
			if b, err = toBytes(v, p.Name); err != nil {
				return nil, err
			}
		}
		padded := make([]byte, (len(b)+wordSize-1)/wordSize*wordSize)
		copy(padded, b)
		return padded, nil
	}
	return DefaultCoder.Encode([]*ParamType{p}, []any{v})
}

// DecodeEventLog decodes a log. Indexed inputs of dynamic type decode to
// Indexed; with no topics every indexed input does.
func (i *Interface) DecodeEventLog(event any, data []byte, topics []common.Hash) ([]any, error) {
	ev, err := i.event(event)
	if err != nil {
		return nil, err
	}
	if topics != nil && !ev.Anonymous {
		want := GetEventTopic(ev)
		if len(topics) == 0 || topics[0] != want {
			return nil, errs.Argument("fragment/topic mismatch", "topics[0]", topicsHead(topics))
		}
		topics = topics[1:]
	}

	var indexed, plain []*ParamType
	for _, p := range ev.Inputs {
		if p.Indexed {
			indexed = append(indexed, p)
		} else {
			plain = append(plain, p)
		}
	}

	var indexedValues []any
	if topics != nil {
		if len(topics) < len(indexed) {
			return nil, errs.From(errs.DataOutOfBounds, "topics", len(topics), "indexed", len(indexed))
		}
		for n, p := range indexed {
			if p.IsDynamic() || p.IsTuple() || p.IsArray() {
				h := topics[n]
				indexedValues = append(indexedValues, Indexed{Hash: &h})
				continue
			}
			vals, err := i.coder.Decode([]*ParamType{p}, topics[n].Bytes())
			if err != nil {
				return nil, err
			}
			indexedValues = append(indexedValues, vals[0])
		}
	}

	plainValues, err := i.coder.Decode(plain, data)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(ev.Inputs))
	var ix, px int
	for _, p := range ev.Inputs {
		if p.Indexed {
			if topics == nil {
				out = append(out, Indexed{})
			} else {
				out = append(out, indexedValues[ix])
			}
			ix++
			continue
		}
		out = append(out, plainValues[px])
		px++
	}
	return out, nil
}

func topicsHead(topics []common.Hash) string {
	if len(topics) == 0 {
		return ""
	}
	return topics[0].Hex()
}
