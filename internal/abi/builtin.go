package abi

import (
	"sort"
	"sync"
)

// BuiltinKind is an ABI shipped with the binary. Built-ins register
// themselves from init() in their own builtin_<name>.go file.
type BuiltinKind struct {
	ID          string   // machine key, e.g. "erc20"
	Name        string   // human label
	Description string   // one-line summary shown by `selector lookup`
	Signatures  []string // human-readable fragments
	// Address is the fixed contract address for system contracts, or "".
	Address string
}

var (
	builtinMu       sync.RWMutex
	builtinRegistry = map[string]BuiltinKind{}
	builtinIfaces   = map[string]*Interface{}
)

// RegisterBuiltin adds b to the registry, replacing any entry with the same
// ID. It panics if b's signatures do not parse.
func RegisterBuiltin(b BuiltinKind) {
	iface := MustNewInterface(b.Signatures)
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtinRegistry[b.ID] = b
	builtinIfaces[b.ID] = iface
}

// GetBuiltin returns a built-in by ID.
func GetBuiltin(id string) (BuiltinKind, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	b, ok := builtinRegistry[id]
	return b, ok
}

// Builtin returns the parsed Interface of a built-in, or nil if unknown.
func Builtin(id string) *Interface {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	return builtinIfaces[id]
}

// BuiltinNames returns the registered IDs in ascending order.
func BuiltinNames() []string {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	out := make([]string, 0, len(builtinRegistry))
	for id := range builtinRegistry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	names := BuiltinNames()
	out := make([]BuiltinKind, 0, len(names))
	for _, id := range names {
		b, _ := GetBuiltin(id)
		out = append(out, b)
	}
	return out
}

// BuiltinMatch is a fragment from a built-in whose selector or topic matched.
type BuiltinMatch struct {
	Builtin  string
	Fragment Fragment
}

// LookupSelector searches every built-in for functions and errors with the
// given 0x selector, and events with the given 0x topic.
func LookupSelector(key string) []BuiltinMatch {
	var out []BuiltinMatch
	for _, id := range BuiltinNames() {
		iface := Builtin(id)
		if fn, err := iface.GetFunction(key); err == nil {
			out = append(out, BuiltinMatch{Builtin: id, Fragment: fn})
		}
		if e, err := iface.GetError(key); err == nil {
			out = append(out, BuiltinMatch{Builtin: id, Fragment: e})
		}
		if ev, err := iface.GetEvent(key); err == nil {
			out = append(out, BuiltinMatch{Builtin: id, Fragment: ev})
		}
	}
	return out
}
