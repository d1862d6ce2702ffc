// Package wire is the protobuf surface of nutrition.v1.BookingService:
// message types encoded with protowire, the gRPC codec that carries them
// and the service descriptor.
package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Message is implemented by every request and response type.
type Message interface {
	MarshalWire() []byte
	UnmarshalWire(b []byte) error
}

// Codec marshals Message values. It registers under the "proto" name so
// standard gRPC and gRPC-Web clients interoperate with it unchanged.
type Codec struct{}

func (Codec) Name() string { return "proto" }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("wire: cannot marshal %T", v)
	}
	return m.MarshalWire(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("wire: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

type encoder struct{ b []byte }

func (e *encoder) string(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *encoder) int64(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

func (e *encoder) int32(num protowire.Number, v int32) { e.int64(num, int64(v)) }

func (e *encoder) bool(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) message(num protowire.Number, m Message) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, m.MarshalWire())
}

// time writes a google.protobuf.Timestamp. Zero times are omitted.
func (e *encoder) time(num protowire.Number, t time.Time) {
	if t.IsZero() {
		return
	}
	b, err := proto.Marshal(timestamppb.New(t))
	if err != nil {
		// a valid time.Time always marshals
		panic(err)
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, b)
}

type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) str() string  { return string(f.b) }
func (f field) int64() int64 { return int64(f.v) }
func (f field) int32() int32 { return int32(int64(f.v)) }
func (f field) bool() bool   { return protowire.DecodeBool(f.v) }

func (f field) time() (time.Time, error) {
	var ts timestamppb.Timestamp
	if err := proto.Unmarshal(f.b, &ts); err != nil {
		return time.Time{}, fmt.Errorf("wire: field %d: %w", f.num, err)
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, fmt.Errorf("wire: field %d: %w", f.num, err)
	}
	return ts.AsTime(), nil
}

// walk calls fn for every field in b. Unknown fields are skipped by the
// callers simply not matching them.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
