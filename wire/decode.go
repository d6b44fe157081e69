package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded key/value pair of a protobuf message.
type field struct {
	num protowire.Number
	typ protowire.Type
	u64 uint64
	raw []byte
}

// walk calls fn for every field in b. Unknown fields are handed to fn like any
// other; fn ignores the numbers it does not know.
func walk(msg string, b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErr(msg, 0, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u64, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.u64, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u64 = uint64(v)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return decodeErr(msg, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return decodeErr(msg, num, err)
		}
	}
	return nil
}

func decodeErr(msg string, num protowire.Number, err error) error {
	if num == 0 {
		return fmt.Errorf("wire: decode %s: %w", msg, err)
	}
	return fmt.Errorf("wire: decode %s field %d: %w", msg, num, err)
}

func (f field) want(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("unexpected wire type %d", f.typ)
	}
	return nil
}

func (f field) asBytes() ([]byte, error) {
	if err := f.want(protowire.BytesType); err != nil {
		return nil, err
	}
	return append([]byte(nil), f.raw...), nil
}

func (f field) asString() (string, error) {
	if err := f.want(protowire.BytesType); err != nil {
		return "", err
	}
	return string(f.raw), nil
}

func (f field) asUint64() (uint64, error) {
	if err := f.want(protowire.VarintType); err != nil {
		return 0, err
	}
	return f.u64, nil
}

func (f field) asInt64() (int64, error) {
	v, err := f.asUint64()
	return int64(v), err
}

func (f field) asUint32() (uint32, error) {
	v, err := f.asUint64()
	return uint32(v), err
}

func (f field) asBool() (bool, error) {
	v, err := f.asUint64()
	return v != 0, err
}

func (f field) asDouble() (float64, error) {
	if err := f.want(protowire.Fixed64Type); err != nil {
		return 0, err
	}
	return math.Float64frombits(f.u64), nil
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

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	bits := math.Float64bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, bits)
}

// appendMessage always writes the field, even for an empty submessage, so that
// repeated entries keep their positions.
func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}
