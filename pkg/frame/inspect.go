package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/driftframe/pkg/schema"
)

// View is a parsed frame. Meta and Payload alias the source buffer.
type View struct {
	Header  Header
	Meta    []schema.FieldDescriptor
	Payload []byte
}

// ReadHeader reads the stream id and field count without touching the rest.
func ReadHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedFrame, len(src), HeaderSize)
	}
	return Header{
		StreamID:   binary.LittleEndian.Uint32(src[0:4]),
		FieldCount: binary.LittleEndian.Uint32(src[4:8]),
	}, nil
}

// Parse splits a frame into header, transmitted meta table and payload. Every
// transmitted descriptor must lie inside the payload.
func Parse(src []byte) (View, error) {
	h, err := ReadHeader(src)
	if err != nil {
		return View{}, err
	}
	metaEnd, ok := metaBounds(src, h.FieldCount)
	if !ok {
		return View{}, fmt.Errorf("%w: meta table of %d entries exceeds %d bytes", ErrMalformedFrame, h.FieldCount, len(src))
	}

	v := View{
		Header:  h,
		Meta:    make([]schema.FieldDescriptor, 0, h.FieldCount),
		Payload: src[metaEnd:],
	}
	for off := HeaderSize; off < metaEnd; off += DescriptorSize {
		d := readDescriptor(src[off : off+DescriptorSize])
		if d.End() > len(v.Payload) {
			return View{}, fmt.Errorf("%w: field %d at %d+%d exceeds %d byte payload",
				ErrMalformedFrame, d.ID, d.Offset, d.Size, len(v.Payload))
		}
		v.Meta = append(v.Meta, d)
	}
	return v, nil
}

// Field returns the transmitted bytes of field id.
func (v View) Field(id uint32) ([]byte, bool) {
	for _, d := range v.Meta {
		if d.ID == id {
			return v.Payload[d.Offset:d.End()], true
		}
	}
	return nil, false
}
