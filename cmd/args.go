package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/abi"
	"github.com/Mohsinsiddi/hethers/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// parseArgs converts command-line strings into coder values for types.
func parseArgs(types []*abi.ParamType, raw []string) ([]any, error) {
	if len(raw) != len(types) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(types), len(raw))
	}
	out := make([]any, len(raw))
	for i, p := range types {
		v, err := parseArg(p, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, p.Format(abi.FormatSighash), err)
		}
		out[i] = v
	}
	return out, nil
}

// parseArg reads a single argument. Arrays and tuples are written as JSON,
// e.g. '[1,2]' or '["0xabc…",true]'; everything else is passed through as
// text, which the coder parses itself.
func parseArg(p *abi.ParamType, s string) (any, error) {
	if p.IsArray() || p.IsTuple() {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("expected JSON for %s: %w", p.Type, err)
		}
		return fromJSON(p, v)
	}
	return fromJSON(p, s)
}

func fromJSON(p *abi.ParamType, v any) (any, error) {
	switch {
	case p.IsArray():
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a JSON array for %s", p.Type)
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := fromJSON(p.ArrayChildren, item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil

	case p.IsTuple():
		switch x := v.(type) {
		case []any:
			if len(x) != len(p.Components) {
				return nil, fmt.Errorf("tuple needs %d values, got %d", len(p.Components), len(x))
			}
			out := make([]any, len(x))
			for i, item := range x {
				c, err := fromJSON(p.Components[i], item)
				if err != nil {
					return nil, err
				}
				out[i] = c
			}
			return out, nil
		case map[string]any:
			out := make(map[string]any, len(x))
			for _, comp := range p.Components {
				item, ok := x[comp.Name]
				if !ok {
					continue
				}
				c, err := fromJSON(comp, item)
				if err != nil {
					return nil, err
				}
				out[comp.Name] = c
			}
			return out, nil
		}
		return nil, fmt.Errorf("expected a JSON array or object for %s", p.Format(abi.FormatSighash))
	}

	if p.BaseType == "bool" {
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("invalid bool %q", x)
			}
			return b, nil
		}
		return nil, fmt.Errorf("invalid bool %v", v)
	}
	if n, ok := v.(json.Number); ok {
		return n.String(), nil
	}
	return v, nil
}

// parseHex decodes hex input with or without the 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if s == "0x" || s == "0X" {
		return []byte{}, nil
	}
	return hexutil.Decode(strings.ToLower(s[:2]) + s[2:])
}

// formatValue renders a decoded value for display.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatNested(v)
}

func formatNested(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case *big.Int:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case string:
		return strconv.Quote(x)
	case abi.Indexed:
		if x.Hash == nil {
			return "indexed"
		}
		return "indexed(" + x.Hash.Hex() + ")"
	case *abi.Indexed:
		return formatNested(*x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatNested(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// valuePairs labels decoded values with their parameter names and types.
func valuePairs(params []*abi.ParamType, values []any) [][2]string {
	pairs := make([][2]string, 0, len(values))
	for i, v := range values {
		label := fmt.Sprintf("[%d]", i)
		if i < len(params) {
			if params[i].Name != "" {
				label = params[i].Name
			}
			label += " " + ui.Meta(params[i].Format(abi.FormatSighash))
		}
		pairs = append(pairs, [2]string{label, ui.Val(formatValue(v))})
	}
	return pairs
}

func errLine(err error) string {
	return ui.Err(err.Error())
}
