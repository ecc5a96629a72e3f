package abi

import (
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

const wordSize = 32

var (
	tt256   = math.BigPow(2, 256)
	maxWord = new(big.Int).Sub(tt256, big.NewInt(1))
)

// Coder encodes and decodes values in the contract ABI head/tail layout.
// A Coder holds no mutable state and is safe for concurrent use.
type Coder struct {
	// AllowLoose lets dynamic bytes whose trailing padding was truncated
	// still decode.
	AllowLoose bool
}

// DefaultCoder is the strict Coder used by Interface.
var DefaultCoder = &Coder{}

// Encode encodes values against types.
func (c *Coder) Encode(types []*ParamType, values []any) ([]byte, error) {
	coders, err := c.coders(types)
	if err != nil {
		return nil, err
	}
	w := &writer{}
	if err := pack(w, coders, values); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

// Decode decodes data against types.
func (c *Coder) Decode(types []*ParamType, data []byte) ([]any, error) {
	coders, err := c.coders(types)
	if err != nil {
		return nil, err
	}
	r := &reader{data: data, allowLoose: c.AllowLoose}
	return unpack(r, coders)
}

// EncodeTypes parses each type string and encodes values against them.
func (c *Coder) EncodeTypes(types []string, values []any) ([]byte, error) {
	pts, err := ParseParamTypes(types)
	if err != nil {
		return nil, err
	}
	return c.Encode(pts, values)
}

// DecodeTypes parses each type string and decodes data against them.
func (c *Coder) DecodeTypes(types []string, data []byte) ([]any, error) {
	pts, err := ParseParamTypes(types)
	if err != nil {
		return nil, err
	}
	return c.Decode(pts, data)
}

func (c *Coder) coders(types []*ParamType) ([]coder, error) {
	out := make([]coder, len(types))
	for i, t := range types {
		cd, err := c.coderFor(t)
		if err != nil {
			return nil, err
		}
		out[i] = cd
	}
	return out, nil
}

func (c *Coder) coderFor(p *ParamType) (coder, error) {
	switch {
	case p.IsArray():
		child, err := c.coderFor(p.ArrayChildren)
		if err != nil {
			return nil, err
		}
		return &arrayCoder{name: p.Name, elem: child, length: p.ArrayLength}, nil
	case p.IsTuple():
		coders, err := c.coders(p.Components)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(p.Components))
		for i, comp := range p.Components {
			names[i] = comp.Name
		}
		return &tupleCoder{name: p.Name, coders: coders, names: names}, nil
	}

	switch p.Type {
	case "address":
		return &addressCoder{name: p.Name}, nil
	case "bool":
		return &boolCoder{name: p.Name}, nil
	case "string":
		return &bytesCoder{name: p.Name, str: true}, nil
	case "bytes":
		return &bytesCoder{name: p.Name}, nil
	}
	if m := intTypeRe.FindStringSubmatch(p.Type); m != nil {
		bits, _ := strconv.Atoi(m[2])
		return &numberCoder{name: p.Name, bits: uint(bits), signed: m[1] == "int"}, nil
	}
	if m := bytesTypeRe.FindStringSubmatch(p.Type); m != nil {
		size, _ := strconv.Atoi(m[1])
		return &fixedBytesCoder{name: p.Name, size: size}, nil
	}
	return nil, errs.From(errs.InvalidType, "type", p.Type)
}

// coder handles one parameter position.
type coder interface {
	encode(w *writer, v any) error
	decode(r *reader) (any, error)
	dynamic() bool
}

// ---------------------------------------------------------------------------
// writer / reader
// ---------------------------------------------------------------------------

type writer struct {
	chunks [][]byte
	size   int
}

func (w *writer) writeBytes(b []byte) {
	padded := make([]byte, (len(b)+wordSize-1)/wordSize*wordSize)
	copy(padded, b)
	w.chunks = append(w.chunks, padded)
	w.size += len(padded)
}

func (w *writer) writeWord(word []byte) {
	w.chunks = append(w.chunks, word)
	w.size += len(word)
}

func (w *writer) writeValue(v *big.Int) {
	w.writeWord(math.U256Bytes(new(big.Int).Set(v)))
}

// writeUpdatableValue reserves a word and returns a function that fills it.
func (w *writer) writeUpdatableValue() func(int) {
	idx := len(w.chunks)
	w.writeWord(make([]byte, wordSize))
	return func(v int) {
		w.chunks[idx] = math.U256Bytes(big.NewInt(int64(v)))
	}
}

func (w *writer) appendWriter(o *writer) {
	w.chunks = append(w.chunks, o.chunks...)
	w.size += o.size
}

func (w *writer) bytes() []byte {
	out := make([]byte, 0, w.size)
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	return out
}

type reader struct {
	data       []byte
	offset     int
	allowLoose bool
}

func (r *reader) subReader(offset int) (*reader, error) {
	start := r.offset + offset
	if offset < 0 || start > len(r.data) {
		return nil, errs.From(errs.DataOutOfBounds, "offset", offset, "length", len(r.data))
	}
	return &reader{data: r.data[start:], allowLoose: r.allowLoose}, nil
}

func (r *reader) readBytes(n int, loose bool) ([]byte, error) {
	aligned := (n + wordSize - 1) / wordSize * wordSize
	if n < 0 || r.offset+aligned > len(r.data) {
		if r.allowLoose && loose && n >= 0 && r.offset+n <= len(r.data) {
			aligned = n
		} else {
			return nil, errs.From(errs.DataOutOfBounds, "length", len(r.data), "offset", r.offset+aligned)
		}
	}
	out := r.data[r.offset : r.offset+n]
	r.offset += aligned
	return out, nil
}

func (r *reader) readValue() (*big.Int, error) {
	b, err := r.readBytes(wordSize, false)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// remainingWords is the number of whole words left after the offset. Every
// array element other than an empty tuple takes at least one of them.
func (r *reader) remainingWords() int {
	return (len(r.data) - r.offset) / wordSize
}

// readIndex reads a word that must address a position inside the data.
func (r *reader) readIndex() (int, error) {
	v, err := r.readValue()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() > int64(len(r.data)) {
		return 0, errs.From(errs.DataOutOfBounds, "offset", v.String(), "length", len(r.data))
	}
	return int(v.Int64()), nil
}

// ---------------------------------------------------------------------------
// head/tail layout
// ---------------------------------------------------------------------------

func pack(w *writer, coders []coder, values []any) error {
	if len(coders) != len(values) {
		return errs.New(errs.CodeInvalidArgument, "types/values length mismatch",
			"count", map[string]int{"types": len(coders), "values": len(values)})
	}

	static := &writer{}
	dynamic := &writer{}
	var updates []func(int)

	for i, c := range coders {
		if c.dynamic() {
			offset := dynamic.size
			if err := c.encode(dynamic, values[i]); err != nil {
				return err
			}
			update := static.writeUpdatableValue()
			updates = append(updates, func(base int) { update(base + offset) })
			continue
		}
		if err := c.encode(static, values[i]); err != nil {
			return err
		}
	}

	for _, u := range updates {
		u(static.size)
	}
	w.appendWriter(static)
	w.appendWriter(dynamic)
	return nil
}

func unpack(r *reader, coders []coder) ([]any, error) {
	base, err := r.subReader(0)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(coders))
	for i, c := range coders {
		if c.dynamic() {
			offset, err := r.readIndex()
			if err != nil {
				return nil, err
			}
			sub, err := base.subReader(offset)
			if err != nil {
				return nil, err
			}
			if out[i], err = c.decode(sub); err != nil {
				return nil, err
			}
			continue
		}
		if out[i], err = c.decode(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// coders
// ---------------------------------------------------------------------------

type numberCoder struct {
	name   string
	bits   uint
	signed bool
}

func (c *numberCoder) dynamic() bool { return false }

func (c *numberCoder) bounds() (lo, hi *big.Int) {
	if c.signed {
		hi = new(big.Int).Lsh(big.NewInt(1), c.bits-1)
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, big.NewInt(1))
		return lo, hi
	}
	hi = new(big.Int).Lsh(big.NewInt(1), c.bits)
	return new(big.Int), hi.Sub(hi, big.NewInt(1))
}

func (c *numberCoder) encode(w *writer, v any) error {
	n, err := toBigInt(v, c.name)
	if err != nil {
		return err
	}
	lo, hi := c.bounds()
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return errs.From(errs.ValueOutOfBounds, "argument", c.name, "value", n.String())
	}
	if n.Sign() < 0 {
		n.Add(n, tt256)
	}
	w.writeValue(n)
	return nil
}

func (c *numberCoder) decode(r *reader) (any, error) {
	v, err := r.readValue()
	if err != nil {
		return nil, err
	}
	mask := new(big.Int).Lsh(big.NewInt(1), c.bits)
	mask.Sub(mask, big.NewInt(1))
	v.And(v, mask)
	if c.signed && v.Bit(int(c.bits)-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), c.bits))
	}
	return v, nil
}

type boolCoder struct{ name string }

func (c *boolCoder) dynamic() bool { return false }

func (c *boolCoder) encode(w *writer, v any) error {
	b, ok := v.(bool)
	if !ok {
		return errs.Argument("invalid bool value", c.name, v)
	}
	if b {
		w.writeValue(big.NewInt(1))
	} else {
		w.writeValue(new(big.Int))
	}
	return nil
}

func (c *boolCoder) decode(r *reader) (any, error) {
	v, err := r.readValue()
	if err != nil {
		return nil, err
	}
	return v.Sign() != 0, nil
}

type addressCoder struct{ name string }

func (c *addressCoder) dynamic() bool { return false }

func (c *addressCoder) encode(w *writer, v any) error {
	a, err := toAddress(v, c.name)
	if err != nil {
		return err
	}
	w.writeWord(common.LeftPadBytes(a.Bytes(), wordSize))
	return nil
}

func (c *addressCoder) decode(r *reader) (any, error) {
	b, err := r.readBytes(wordSize, false)
	if err != nil {
		return nil, err
	}
	return common.BytesToAddress(b[12:]), nil
}

type fixedBytesCoder struct {
	name string
	size int
}

func (c *fixedBytesCoder) dynamic() bool { return false }

func (c *fixedBytesCoder) encode(w *writer, v any) error {
	b, err := toBytes(v, c.name)
	if err != nil {
		return err
	}
	if len(b) != c.size {
		return errs.From(errs.IncorrectDataLength, "argument", c.name, "value", v)
	}
	w.writeBytes(b)
	return nil
}

func (c *fixedBytesCoder) decode(r *reader) (any, error) {
	b, err := r.readBytes(wordSize, false)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b[:c.size]...), nil
}

// bytesCoder handles bytes and string.
type bytesCoder struct {
	name string
	str  bool
}

func (c *bytesCoder) dynamic() bool { return true }

func (c *bytesCoder) encode(w *writer, v any) error {
	var b []byte
	if c.str {
		s, ok := v.(string)
		if !ok {
			return errs.Argument("invalid string value", c.name, v)
		}
		b = []byte(s)
	} else {
		var err error
		if b, err = toBytes(v, c.name); err != nil {
			return err
		}
	}
	w.writeValue(big.NewInt(int64(len(b))))
	w.writeBytes(b)
	return nil
}

func (c *bytesCoder) decode(r *reader) (any, error) {
	n, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	b, err := r.readBytes(n, true)
	if err != nil {
		return nil, err
	}
	if c.str {
		return string(b), nil
	}
	return append([]byte(nil), b...), nil
}

type arrayCoder struct {
	name   string
	elem   coder
	length int
}

func (c *arrayCoder) dynamic() bool { return c.length == -1 || c.elem.dynamic() }

func (c *arrayCoder) encode(w *writer, v any) error {
	items, err := toSlice(v, c.name)
	if err != nil {
		return err
	}
	if c.length == -1 {
		w.writeValue(big.NewInt(int64(len(items))))
	} else if len(items) != c.length {
		return errs.New(errs.CodeInvalidArgument, "wrong number of array elements",
			"argument", c.name, "count", len(items), "expectedCount", c.length)
	}
	coders := make([]coder, len(items))
	for i := range coders {
		coders[i] = c.elem
	}
	return pack(w, coders, items)
}

func (c *arrayCoder) decode(r *reader) (any, error) {
	count := c.length
	if count == -1 {
		n, err := r.readValue()
		if err != nil {
			return nil, err
		}
		if !n.IsInt64() || n.Int64() > int64(r.remainingWords()) {
			return nil, errs.New(errs.CodeBufferOverrun, "insufficient data length",
				"length", len(r.data), "count", n.String())
		}
		count = int(n.Int64())
	} else if count > r.remainingWords() && !isEmptyTuple(c.elem) {
		return nil, errs.New(errs.CodeBufferOverrun, "insufficient data length",
			"length", len(r.data), "count", count)
	}
	coders := make([]coder, count)
	for i := range coders {
		coders[i] = c.elem
	}
	return unpack(r, coders)
}

func isEmptyTuple(c coder) bool {
	t, ok := c.(*tupleCoder)
	return ok && len(t.coders) == 0
}

type tupleCoder struct {
	name   string
	coders []coder
	names  []string
}

func (c *tupleCoder) dynamic() bool {
	for _, cd := range c.coders {
		if cd.dynamic() {
			return true
		}
	}
	return false
}

func (c *tupleCoder) encode(w *writer, v any) error {
	if m, ok := v.(map[string]any); ok {
		values := make([]any, len(c.names))
		for i, n := range c.names {
			val, ok := m[n]
			if n == "" || !ok {
				return errs.Argument("cannot encode object for tuple with missing names", c.name, v)
			}
			values[i] = val
		}
		return pack(w, c.coders, values)
	}
	values, err := toSlice(v, c.name)
	if err != nil {
		return err
	}
	return pack(w, c.coders, values)
}

func (c *tupleCoder) decode(r *reader) (any, error) {
	return unpack(r, c.coders)
}
