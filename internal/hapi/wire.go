// Package hapi encodes and decodes the subset of the Hedera API protobuf
// messages that a wallet submits: transaction bodies for contract calls and
// creates, file creates and appends, crypto transfers and account creates,
// plus the signed transaction envelope.
package hapi

import (
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded key/value pair of a protobuf message.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func (f field) int64() int64 { return int64(f.varint) }

// walk calls fn for every field in b, in wire order.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "hapi: reading tag")
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "hapi: reading field %d", num)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendSint64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendMessage always writes the field, so an empty message still marks
// its oneof case as set.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	var msg []byte
	msg = appendInt64(msg, 1, t.Unix())
	msg = appendInt64(msg, 2, int64(t.Nanosecond()))
	return appendMessage(b, num, msg)
}

func appendDuration(b []byte, num protowire.Number, d time.Duration) []byte {
	return appendMessage(b, num, appendInt64(nil, 1, int64(d/time.Second)))
}

func parseTimestamp(b []byte) (time.Time, error) {
	var secs, nanos int64
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			secs = f.int64()
		case 2:
			nanos = int64(int32(f.varint))
		}
		return nil
	})
	return time.Unix(secs, nanos).UTC(), err
}

func parseDuration(b []byte) (time.Duration, error) {
	var secs int64
	err := walk(b, func(f field) error {
		if f.num == 1 {
			secs = f.int64()
		}
		return nil
	})
	return time.Duration(secs) * time.Second, err
}
