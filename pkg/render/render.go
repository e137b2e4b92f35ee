// Package render turns raw field images into typed values for people to read.
// Field images are interpreted as little-endian, matching the hosts frames are
// captured on.
package render

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind names how a field's bytes are interpreted.
type Kind string

const (
	KindInt8    Kind = "int8"
	KindInt16   Kind = "int16"
	KindInt32   Kind = "int32"
	KindInt64   Kind = "int64"
	KindUint8   Kind = "uint8"
	KindUint16  Kind = "uint16"
	KindUint32  Kind = "uint32"
	KindUint64  Kind = "uint64"
	KindFloat32 Kind = "float32"
	KindFloat64 Kind = "float64"
	KindBool    Kind = "bool"
	KindString  Kind = "string"
	KindBytes   Kind = "bytes"
)

// Width returns the fixed size of k, or 0 for variable-width kinds.
func (k Kind) Width() int {
	switch k {
	case KindInt8, KindUint8, KindBool:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.Width() > 0 || k == KindString || k == KindBytes
}

// Field labels one field id of a stream.
type Field struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Layout labels the fields of one stream.
type Layout struct {
	Stream string  `json:"stream"`
	Fields []Field `json:"fields"`
}

// Field returns the label for id.
func (l Layout) Field(id uint32) (Field, bool) {
	for _, f := range l.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// ByName returns the label called name.
func (l Layout) ByName(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldValue is one rendered field.
type FieldValue struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name,omitempty"`
	Kind   Kind   `json:"kind"`
	Offset uint16 `json:"offset"`
	Size   uint16 `json:"size"`
	Value  any    `json:"value"`
}

// Value interprets raw as kind. Fixed-width kinds need at least Width bytes.
func Value(kind Kind, raw []byte) (any, error) {
	if w := kind.Width(); w > 0 && len(raw) < w {
		return nil, fmt.Errorf("render: %s needs %d bytes, have %d", kind, w, len(raw))
	}

	switch kind {
	case KindInt8:
		return int8(raw[0]), nil
	case KindInt16:
		return int16(binary.LittleEndian.Uint16(raw)), nil
	case KindInt32:
		return int32(binary.LittleEndian.Uint32(raw)), nil
	case KindInt64:
		return int64(binary.LittleEndian.Uint64(raw)), nil
	case KindUint8:
		return raw[0], nil
	case KindUint16:
		return binary.LittleEndian.Uint16(raw), nil
	case KindUint32:
		return binary.LittleEndian.Uint32(raw), nil
	case KindUint64:
		return binary.LittleEndian.Uint64(raw), nil
	case KindFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil
	case KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	case KindBool:
		return raw[0] != 0, nil
	case KindString:
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return string(raw), nil
	case KindBytes, "":
		return hex.EncodeToString(raw), nil
	default:
		return nil, fmt.Errorf("render: unknown kind %q", kind)
	}
}

// ParseValue parses text as kind into a field image of exactly size bytes.
// Strings and bytes are NUL-padded and must fit.
func ParseValue(kind Kind, text string, size int) ([]byte, error) {
	out := make([]byte, size)
	if w := kind.Width(); w > 0 && w > size {
		return nil, fmt.Errorf("render: %s needs %d bytes, field has %d", kind, w, size)
	}

	switch kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		v, err := strconv.ParseInt(text, 0, kind.Width()*8)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", kind, err)
		}
		putUint(out, kind.Width(), uint64(v))
	case KindUint8, KindUint16, KindUint32, KindUint64:
		v, err := strconv.ParseUint(text, 0, kind.Width()*8)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", kind, err)
		}
		putUint(out, kind.Width(), v)
	case KindFloat32:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", kind, err)
		}
		binary.LittleEndian.PutUint32(out, math.Float32bits(float32(v)))
	case KindFloat64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", kind, err)
		}
		binary.LittleEndian.PutUint64(out, math.Float64bits(v))
	case KindBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("render: %s: %w", kind, err)
		}
		if v {
			out[0] = 1
		}
	case KindString:
		if len(text) > size {
			return nil, fmt.Errorf("render: string of %d bytes exceeds %d byte field", len(text), size)
		}
		copy(out, text)
	case KindBytes, "":
		raw, err := hex.DecodeString(strings.TrimPrefix(text, "0x"))
		if err != nil {
			return nil, fmt.Errorf("render: bytes: %w", err)
		}
		if len(raw) > size {
			return nil, fmt.Errorf("render: %d bytes exceed %d byte field", len(raw), size)
		}
		copy(out, raw)
	default:
		return nil, fmt.Errorf("render: unknown kind %q", kind)
	}
	return out, nil
}

func putUint(out []byte, width int, v uint64) {
	switch width {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(out, v)
	}
}

// Record renders every field of a local record in schema order.
func Record(record []byte, s *schema.Schema, layout Layout) ([]FieldValue, error) {
	out := make([]FieldValue, 0, s.Len())
	for _, d := range s.Descriptors() {
		if d.End() > len(record) {
			return nil, fmt.Errorf("render: field %d exceeds %d byte record", d.ID, len(record))
		}
		fv, err := fieldValue(d, record[d.Offset:d.End()], layout)
		if err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, nil
}

// Transmitted renders the fields of a parsed frame as the sender described them.
func Transmitted(v frame.View, layout Layout) ([]FieldValue, error) {
	out := make([]FieldValue, 0, len(v.Meta))
	for _, d := range v.Meta {
		fv, err := fieldValue(d, v.Payload[d.Offset:d.End()], layout)
		if err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, nil
}

func fieldValue(d schema.FieldDescriptor, raw []byte, layout Layout) (FieldValue, error) {
	fv := FieldValue{ID: d.ID, Offset: d.Offset, Size: d.Size, Kind: KindBytes}
	if label, ok := layout.Field(d.ID); ok {
		fv.Name = label.Name
		fv.Kind = label.Kind
	}
	if w := fv.Kind.Width(); w > 0 && len(raw) < w {
		// The sender's field is narrower than the label; fall back to raw bytes.
		fv.Kind = KindBytes
	}
	val, err := Value(fv.Kind, raw)
	if err != nil {
		return FieldValue{}, fmt.Errorf("render: field %d: %w", d.ID, err)
	}
	fv.Value = val
	return fv, nil
}

// JSON marshals v with indentation.
func JSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Hex formats b as rows of 16 space separated bytes.
func Hex(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i += 16 {
		end := min(i+16, len(b))
		fmt.Fprintf(&sb, "%08x  % x\n", i, b[i:end])
	}
	return sb.String()
}
