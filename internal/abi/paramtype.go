// Package abi implements the Solidity contract ABI: parameter types,
// the head/tail coder, fragments, and the Interface registry built on top
// of them.
package abi

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
)

// FormatType selects how fragments and parameters render as text.
type FormatType int

const (
	// FormatSighash is the canonical form hashed for selectors and topics.
	FormatSighash FormatType = iota
	// FormatMinimal is human-readable without names.
	FormatMinimal
	// FormatFull is human-readable with names.
	FormatFull
)

var (
	intTypeRe     = regexp.MustCompile(`^(u?int)([0-9]*)$`)
	bytesTypeRe   = regexp.MustCompile(`^bytes([0-9]+)$`)
	identifierRe  = regexp.MustCompile(`^[a-zA-Z$_][a-zA-Z0-9$_]*$`)
	dataLocations = map[string]bool{"calldata": true, "memory": true, "storage": true}
)

// ParamType describes one parameter of a function, event, error or tuple.
// A ParamType is never mutated once parsed.
type ParamType struct {
	Name string
	// Type is the canonical type: "uint256", "address[3]", "tuple", "tuple[]".
	Type string
	// BaseType is Type with every array suffix removed: the innermost
	// elementary type, or "tuple".
	BaseType string
	Indexed  bool
	// ArrayLength is -1 for T[], N for T[N], and 0 when the type is not an array.
	ArrayLength   int
	ArrayChildren *ParamType
	Components    []*ParamType
}

// ParseParamType parses a human-readable parameter such as
// "uint256 foo" or "tuple(address a, string[] b) memory foo".
func ParseParamType(s string) (*ParamType, error) {
	return ParseParam(s, false)
}

// ParseParam is ParseParamType with optional support for the indexed keyword.
func ParseParam(s string, allowIndexed bool) (*ParamType, error) {
	src := strings.TrimSpace(s)
	pt, rest, err := parseTypeExpr(src)
	if err != nil {
		return nil, err
	}
	for _, tok := range strings.Fields(rest) {
		switch {
		case tok == "indexed":
			if !allowIndexed || pt.Indexed {
				return nil, errs.From(errs.InvalidType, "type", s, "detail", "unexpected indexed modifier")
			}
			pt.Indexed = true
		case dataLocations[tok] || tok == "payable":
			if !checkModifier(pt, tok) {
				return nil, errs.From(errs.InvalidType, "type", s, "detail", "invalid modifier", "name", tok)
			}
		default:
			if pt.Name != "" || !identifierRe.MatchString(tok) {
				return nil, errs.From(errs.InvalidType, "type", s, "detail", "unexpected token")
			}
			pt.Name = tok
		}
	}
	return pt, nil
}

// MustParseParamType is ParseParamType for constants; it panics on error.
func MustParseParamType(s string) *ParamType {
	pt, err := ParseParamType(s)
	if err != nil {
		panic(err)
	}
	return pt
}

// ParseParamTypes parses a list of type strings.
func ParseParamTypes(types []string) ([]*ParamType, error) {
	out := make([]*ParamType, len(types))
	for i, t := range types {
		pt, err := ParseParamType(t)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

func checkModifier(pt *ParamType, name string) bool {
	switch {
	case pt.Type == "bytes" || pt.Type == "string", pt.IsArray(), pt.IsTuple():
		return dataLocations[name]
	case pt.Type == "address":
		return name == "payable"
	}
	return false
}

// parseTypeExpr consumes a type (elementary or tuple) plus any array
// suffixes from the front of src and returns the remainder.
func parseTypeExpr(src string) (*ParamType, string, error) {
	var base *ParamType
	rest := src

	if strings.HasPrefix(rest, "tuple") {
		after := strings.TrimLeft(rest[len("tuple"):], " \t")
		if strings.HasPrefix(after, "(") {
			rest = after
		}
	}

	if strings.HasPrefix(rest, "(") {
		end := matchParen(rest)
		if end < 0 {
			return nil, "", errs.From(errs.InvalidType, "type", src)
		}
		parts, err := splitTopLevel(rest[1:end])
		if err != nil {
			return nil, "", err
		}
		comps := make([]*ParamType, len(parts))
		for i, part := range parts {
			c, err := ParseParam(part, false)
			if err != nil {
				return nil, "", err
			}
			comps[i] = c
		}
		base = &ParamType{Type: "tuple", BaseType: "tuple", Components: comps}
		rest = rest[end+1:]
	} else {
		i := 0
		for i < len(rest) && isTypeChar(rest[i]) {
			i++
		}
		canonical, err := canonicalElementary(rest[:i])
		if err != nil {
			return nil, "", errs.From(errs.InvalidType, "type", src)
		}
		base = &ParamType{Type: canonical, BaseType: canonical}
		rest = rest[i:]
	}

	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, "", errs.From(errs.InvalidType, "type", src)
		}
		length := -1
		if inner := rest[1:end]; inner != "" {
			n, err := strconv.Atoi(inner)
			if err != nil || n <= 0 || strconv.Itoa(n) != inner {
				return nil, "", errs.From(errs.InvalidType, "type", src)
			}
			length = n
		}
		base = newArray(base, length)
		rest = rest[end+1:]
	}

	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, "", errs.From(errs.InvalidType, "type", src, "detail", "unexpected token")
	}
	return base, rest, nil
}

func newArray(child *ParamType, length int) *ParamType {
	suffix := "[]"
	if length >= 0 {
		suffix = "[" + strconv.Itoa(length) + "]"
	}
	return &ParamType{
		Type:          child.Type + suffix,
		BaseType:      child.BaseType,
		ArrayLength:   length,
		ArrayChildren: child,
	}
}

func isTypeChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func canonicalElementary(word string) (string, error) {
	switch word {
	case "address", "bool", "string", "bytes":
		return word, nil
	case "byte":
		return "bytes1", nil
	}
	if m := intTypeRe.FindStringSubmatch(word); m != nil {
		if m[2] == "" {
			return m[1] + "256", nil
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n == 0 || n > 256 || n%8 != 0 || strconv.Itoa(n) != m[2] {
			return "", errs.From(errs.InvalidType, "type", word)
		}
		return word, nil
	}
	if m := bytesTypeRe.FindStringSubmatch(word); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 || n > 32 || strconv.Itoa(n) != m[1] {
			return "", errs.From(errs.InvalidType, "type", word)
		}
		return word, nil
	}
	return "", errs.From(errs.InvalidType, "type", word)
}

// matchParen returns the index of the parenthesis closing s[0], or -1.
func matchParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on commas that are not nested in parentheses or brackets.
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, errs.From(errs.InvalidType, "type", s, "detail", "unbalanced parenthesis")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errs.From(errs.InvalidType, "type", s, "detail", "unbalanced parenthesis")
	}
	parts = append(parts, s[start:])
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, errs.From(errs.InvalidType, "type", s, "detail", "missing parameter")
		}
	}
	return parts, nil
}

// IsArray reports whether p is T[] or T[N].
func (p *ParamType) IsArray() bool { return p.ArrayChildren != nil }

// IsTuple reports whether p is a tuple (not an array of tuples).
func (p *ParamType) IsTuple() bool { return p.ArrayChildren == nil && p.Type == "tuple" }

// IsDynamic reports whether p's encoding size depends on its value.
func (p *ParamType) IsDynamic() bool {
	switch {
	case p.ArrayLength == -1:
		return true
	case p.IsArray():
		return p.ArrayChildren.IsDynamic()
	case p.IsTuple():
		for _, c := range p.Components {
			if c.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return p.Type == "string" || p.Type == "bytes"
	}
}

// Format renders p in the requested style.
func (p *ParamType) Format(f FormatType) string {
	var b strings.Builder
	p.writeType(&b, f)
	if f != FormatSighash {
		if p.Indexed {
			b.WriteString(" indexed")
		}
		if f == FormatFull && p.Name != "" {
			b.WriteString(" ")
			b.WriteString(p.Name)
		}
	}
	return b.String()
}

func (p *ParamType) String() string { return p.Format(FormatSighash) }

func (p *ParamType) writeType(b *strings.Builder, f FormatType) {
	switch {
	case p.IsArray():
		p.ArrayChildren.writeType(b, f)
		if p.ArrayLength < 0 {
			b.WriteString("[]")
		} else {
			b.WriteString("[" + strconv.Itoa(p.ArrayLength) + "]")
		}
	case p.IsTuple():
		if f != FormatSighash {
			b.WriteString("tuple")
		}
		sep := ","
		if f == FormatFull {
			sep = ", "
		}
		b.WriteString("(")
		for i, c := range p.Components {
			if i > 0 {
				b.WriteString(sep)
			}
			b.WriteString(c.Format(f))
		}
		b.WriteString(")")
	default:
		b.WriteString(p.Type)
	}
}

// tupleOf returns the innermost tuple of an array-of-tuple type, or nil.
func (p *ParamType) tupleOf() *ParamType {
	for q := p; q != nil; q = q.ArrayChildren {
		if q.IsTuple() {
			return q
		}
	}
	return nil
}

// jsonParam is the ABI JSON shape of a parameter.
type jsonParam struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	Indexed      bool        `json:"indexed,omitempty"`
	Components   []jsonParam `json:"components,omitempty"`
	InternalType string      `json:"internalType,omitempty"`
}

func (p *ParamType) toJSON() jsonParam {
	out := jsonParam{Name: p.Name, Type: p.Type, Indexed: p.Indexed}
	if t := p.tupleOf(); t != nil {
		for _, c := range t.Components {
			out.Components = append(out.Components, c.toJSON())
		}
	}
	return out
}

// MarshalJSON renders p as an ABI JSON parameter object.
func (p *ParamType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toJSON())
}

func paramFromJSON(jp jsonParam, allowIndexed bool) (*ParamType, error) {
	if jp.Indexed && !allowIndexed {
		return nil, errs.From(errs.InvalidType, "type", jp.Type, "detail", "unexpected indexed modifier", "name", jp.Name)
	}
	var pt *ParamType
	if strings.HasPrefix(jp.Type, "tuple") {
		comps := make([]*ParamType, len(jp.Components))
		for i, c := range jp.Components {
			cp, err := paramFromJSON(c, false)
			if err != nil {
				return nil, err
			}
			comps[i] = cp
		}
		pt = &ParamType{Type: "tuple", BaseType: "tuple", Components: comps}
		rest := jp.Type[len("tuple"):]
		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if rest[0] != '[' || end < 0 {
				return nil, errs.From(errs.InvalidType, "type", jp.Type)
			}
			length := -1
			if inner := rest[1:end]; inner != "" {
				n, err := strconv.Atoi(inner)
				if err != nil || n <= 0 {
					return nil, errs.From(errs.InvalidType, "type", jp.Type)
				}
				length = n
			}
			pt = newArray(pt, length)
			rest = rest[end+1:]
		}
	} else {
		parsed, rest, err := parseTypeExpr(jp.Type)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rest) != "" {
			return nil, errs.From(errs.InvalidType, "type", jp.Type)
		}
		pt = parsed
	}
	pt.Name = jp.Name
	pt.Indexed = jp.Indexed
	return pt, nil
}
