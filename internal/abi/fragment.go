package abi

import (
	"encoding/json"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
)

// Fragment is one entry of an ABI: a function, event, constructor or error.
type Fragment interface {
	// Kind returns "function", "event", "constructor" or "error".
	Kind() string
	FragmentName() string
	InputTypes() []*ParamType
	Format(f FormatType) string
	json.Marshaler
}

// FunctionFragment is a callable contract method.
type FunctionFragment struct {
	Name            string
	Inputs          []*ParamType
	Outputs         []*ParamType
	StateMutability string
	Constant        bool
	Payable         bool
}

// EventFragment is a log definition.
type EventFragment struct {
	Name      string
	Inputs    []*ParamType
	Anonymous bool
}

// ConstructorFragment describes deployment arguments.
type ConstructorFragment struct {
	Inputs          []*ParamType
	StateMutability string
	Payable         bool
}

// ErrorFragment is a custom revert error (EIP-838).
type ErrorFragment struct {
	Name   string
	Inputs []*ParamType
}

func (f *FunctionFragment) Kind() string            { return "function" }
func (f *FunctionFragment) FragmentName() string    { return f.Name }
func (f *FunctionFragment) InputTypes() []*ParamType { return f.Inputs }

func (f *EventFragment) Kind() string            { return "event" }
func (f *EventFragment) FragmentName() string    { return f.Name }
func (f *EventFragment) InputTypes() []*ParamType { return f.Inputs }

func (f *ConstructorFragment) Kind() string            { return "constructor" }
func (f *ConstructorFragment) FragmentName() string    { return "constructor" }
func (f *ConstructorFragment) InputTypes() []*ParamType { return f.Inputs }

func (f *ErrorFragment) Kind() string            { return "error" }
func (f *ErrorFragment) FragmentName() string    { return f.Name }
func (f *ErrorFragment) InputTypes() []*ParamType { return f.Inputs }

// ---------------------------------------------------------------------------
// Format
// ---------------------------------------------------------------------------

func formatParams(params []*ParamType, f FormatType) string {
	sep := ","
	if f == FormatFull {
		sep = ", "
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Format(f)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Format renders the function. FormatSighash yields the canonical
// signature used for the selector, e.g. "transfer(address,uint256)".
func (f *FunctionFragment) Format(ft FormatType) string {
	if ft == FormatSighash {
		return f.Name + formatParams(f.Inputs, ft)
	}
	var b strings.Builder
	b.WriteString("function " + f.Name + formatParams(f.Inputs, ft))
	if f.StateMutability != "" && f.StateMutability != "nonpayable" {
		b.WriteString(" " + f.StateMutability)
	}
	if len(f.Outputs) > 0 {
		b.WriteString(" returns " + formatParams(f.Outputs, ft))
	}
	return b.String()
}

func (f *EventFragment) Format(ft FormatType) string {
	if ft == FormatSighash {
		return f.Name + formatParams(f.Inputs, ft)
	}
	s := "event " + f.Name + formatParams(f.Inputs, ft)
	if f.Anonymous {
		s += " anonymous"
	}
	return s
}

func (f *ConstructorFragment) Format(ft FormatType) string {
	s := "constructor" + formatParams(f.Inputs, ft)
	if ft != FormatSighash && f.Payable {
		s += " payable"
	}
	return s
}

func (f *ErrorFragment) Format(ft FormatType) string {
	if ft == FormatSighash {
		return f.Name + formatParams(f.Inputs, ft)
	}
	return "error " + f.Name + formatParams(f.Inputs, ft)
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// jsonFragment is the ABI JSON shape shared by every fragment kind.
type jsonFragment struct {
	Type            string      `json:"type"`
	Name            string      `json:"name,omitempty"`
	Inputs          []jsonParam `json:"inputs"`
	Outputs         []jsonParam `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
	Constant        *bool       `json:"constant,omitempty"`
	Payable         *bool       `json:"payable,omitempty"`
	Anonymous       bool        `json:"anonymous,omitempty"`
}

func paramsToJSON(params []*ParamType) []jsonParam {
	out := make([]jsonParam, len(params))
	for i, p := range params {
		out[i] = p.toJSON()
	}
	return out
}

func (f *FunctionFragment) MarshalJSON() ([]byte, error) {
	outputs := paramsToJSON(f.Outputs)
	if outputs == nil {
		outputs = []jsonParam{}
	}
	return json.Marshal(struct {
		jsonFragment
		Outputs []jsonParam `json:"outputs"`
	}{
		jsonFragment: jsonFragment{
			Type: "function", Name: f.Name, Inputs: paramsToJSON(f.Inputs),
			StateMutability: f.StateMutability,
		},
		Outputs: outputs,
	})
}

func (f *EventFragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		jsonFragment
		Anonymous bool `json:"anonymous"`
	}{
		jsonFragment: jsonFragment{Type: "event", Name: f.Name, Inputs: paramsToJSON(f.Inputs)},
		Anonymous:    f.Anonymous,
	})
}

func (f *ConstructorFragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonFragment{
		Type: "constructor", Inputs: paramsToJSON(f.Inputs), StateMutability: f.StateMutability,
	})
}

func (f *ErrorFragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonFragment{Type: "error", Name: f.Name, Inputs: paramsToJSON(f.Inputs)})
}

// fragmentFromJSON builds a Fragment from one ABI JSON object. Fallback and
// receive entries return a nil Fragment with kind set.
func fragmentFromJSON(raw json.RawMessage) (Fragment, string, error) {
	var jf jsonFragment
	if err := json.Unmarshal(raw, &jf); err != nil {
		return nil, "", errs.Wrap(err, errs.CodeInvalidArgument, "invalid fragment object", "value", string(raw))
	}
	if jf.Type == "" {
		jf.Type = "function"
	}

	parse := func(ps []jsonParam, allowIndexed bool) ([]*ParamType, error) {
		out := make([]*ParamType, len(ps))
		for i, p := range ps {
			pt, err := paramFromJSON(p, allowIndexed)
			if err != nil {
				return nil, err
			}
			out[i] = pt
		}
		return out, nil
	}

	switch jf.Type {
	case "fallback", "receive":
		return nil, jf.Type, nil
	case "event":
		inputs, err := parse(jf.Inputs, true)
		if err != nil {
			return nil, "", err
		}
		return &EventFragment{Name: jf.Name, Inputs: inputs, Anonymous: jf.Anonymous}, jf.Type, nil
	case "error":
		inputs, err := parse(jf.Inputs, false)
		if err != nil {
			return nil, "", err
		}
		return &ErrorFragment{Name: jf.Name, Inputs: inputs}, jf.Type, nil
	case "constructor", "function":
		inputs, err := parse(jf.Inputs, false)
		if err != nil {
			return nil, "", err
		}
		mut := jsonMutability(jf)
		if jf.Type == "constructor" {
			return &ConstructorFragment{Inputs: inputs, StateMutability: mut, Payable: mut == "payable"}, jf.Type, nil
		}
		outputs, err := parse(jf.Outputs, false)
		if err != nil {
			return nil, "", err
		}
		return newFunction(jf.Name, inputs, outputs, mut), jf.Type, nil
	}
	return nil, "", errs.Argument("invalid fragment object", "type", jf.Type)
}

// jsonMutability resolves stateMutability from the legacy constant and
// payable flags when it is absent.
func jsonMutability(jf jsonFragment) string {
	if jf.StateMutability != "" {
		return jf.StateMutability
	}
	switch {
	case jf.Payable != nil && *jf.Payable:
		return "payable"
	case jf.Constant != nil && *jf.Constant:
		return "view"
	}
	return "nonpayable"
}

func newFunction(name string, inputs, outputs []*ParamType, mut string) *FunctionFragment {
	if mut == "" {
		mut = "nonpayable"
	}
	return &FunctionFragment{
		Name:            name,
		Inputs:          inputs,
		Outputs:         outputs,
		StateMutability: mut,
		Constant:        mut == "view" || mut == "pure",
		Payable:         mut == "payable",
	}
}

// ---------------------------------------------------------------------------
// Human-readable
// ---------------------------------------------------------------------------

// ParseFragment parses one human-readable signature such as
// "function balanceOf(address owner) view returns (uint256)" or
// "event Transfer(address indexed from, address indexed to, uint value)".
// A signature with no leading keyword is a function.
func ParseFragment(sig string) (Fragment, error) {
	src := strings.Join(strings.Fields(sig), " ")
	kind := "function"
	for _, kw := range []string{"function", "event", "error", "constructor"} {
		if src == kw || strings.HasPrefix(src, kw+" ") || strings.HasPrefix(src, kw+"(") {
			kind = kw
			src = strings.TrimSpace(src[len(kw):])
			break
		}
	}

	open := strings.IndexByte(src, '(')
	if open < 0 {
		return nil, errs.Argument("invalid signature", "value", sig)
	}
	name := strings.TrimSpace(src[:open])
	end := matchParen(src[open:])
	if end < 0 {
		return nil, errs.Argument("unbalanced parenthesis", "value", sig)
	}
	end += open
	inputs, err := parseParamList(src[open+1:end], kind == "event")
	if err != nil {
		return nil, err
	}
	rest := strings.TrimSpace(src[end+1:])

	if kind == "constructor" {
		if name != "" {
			return nil, errs.Argument("invalid constructor", "value", sig)
		}
	} else if !identifierRe.MatchString(name) {
		return nil, errs.Argument("invalid identifier", "value", name)
	}

	switch kind {
	case "event":
		anon := false
		for _, tok := range strings.Fields(rest) {
			if tok != "anonymous" || anon {
				return nil, errs.Argument("unknown event modifier", "value", tok)
			}
			anon = true
		}
		return &EventFragment{Name: name, Inputs: inputs, Anonymous: anon}, nil
	case "error":
		if rest != "" {
			return nil, errs.Argument("unexpected token", "value", rest)
		}
		return &ErrorFragment{Name: name, Inputs: inputs}, nil
	}

	var outputs []*ParamType
	if idx := strings.Index(rest, "returns"); idx >= 0 {
		ret := strings.TrimSpace(rest[idx+len("returns"):])
		if !strings.HasPrefix(ret, "(") {
			return nil, errs.Argument("invalid returns", "value", sig)
		}
		rend := matchParen(ret)
		if rend < 0 || strings.TrimSpace(ret[rend+1:]) != "" {
			return nil, errs.Argument("invalid returns", "value", sig)
		}
		if outputs, err = parseParamList(ret[1:rend], false); err != nil {
			return nil, err
		}
		rest = strings.TrimSpace(rest[:idx])
	}

	mut := "nonpayable"
	for _, tok := range strings.Fields(rest) {
		switch tok {
		case "view", "pure", "payable", "nonpayable":
			mut = tok
		case "constant":
			mut = "view"
		case "public", "external":
		default:
			return nil, errs.Argument("unknown modifier", "value", tok)
		}
	}

	if kind == "constructor" {
		if mut != "nonpayable" && mut != "payable" {
			return nil, errs.Argument("constructor cannot be "+mut, "value", sig)
		}
		return &ConstructorFragment{Inputs: inputs, StateMutability: mut, Payable: mut == "payable"}, nil
	}
	return newFunction(name, inputs, outputs, mut), nil
}

// MustParseFragment is ParseFragment for constants; it panics on error.
func MustParseFragment(sig string) Fragment {
	f, err := ParseFragment(sig)
	if err != nil {
		panic(err)
	}
	return f
}

func parseParamList(s string, allowIndexed bool) ([]*ParamType, error) {
	parts, err := splitTopLevel(s)
	if err != nil {
		return nil, err
	}
	out := make([]*ParamType, len(parts))
	for i, p := range parts {
		pt, err := ParseParam(p, allowIndexed)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}
