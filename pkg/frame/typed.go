package frame

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/ssargent/driftframe/pkg/schema"
)

// Codec encodes and decodes values of a pointer-free struct type T using its
// host memory image as the payload.
type Codec[T any] struct {
	schema   *schema.Schema
	streamID uint32
}

// NewCodec derives T's schema from its `frame` tags and binds it to streamID.
func NewCodec[T any](streamID uint32, opts ...schema.Option) (*Codec[T], error) {
	if t := reflect.TypeOf((*T)(nil)).Elem(); t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", schema.ErrNotStruct, t)
	}
	s, err := schema.FromStruct[T](opts...)
	if err != nil {
		return nil, err
	}
	return &Codec[T]{schema: s, streamID: streamID}, nil
}

// Schema returns the derived schema
func (c *Codec[T]) Schema() *schema.Schema { return c.schema }

// StreamID returns the bound stream id
func (c *Codec[T]) StreamID() uint32 { return c.streamID }

// Size returns the encoded frame length.
func (c *Codec[T]) Size() int { return EncodedSize(c.schema) }

// Encode writes v as a frame into dst.
func (c *Codec[T]) Encode(dst []byte, v *T) (int, error) {
	return Encode(dst, bytesOf(v), c.schema, c.streamID)
}

// Marshal encodes v into a new buffer.
func (c *Codec[T]) Marshal(v *T) ([]byte, error) {
	return Marshal(bytesOf(v), c.schema, c.streamID)
}

// Decode populates v from src. Fields absent from the frame keep their value.
func (c *Codec[T]) Decode(src []byte, v *T) error {
	return Decode(bytesOf(v), src, c.schema, c.streamID)
}

// DecodeReport is Decode with the match report.
func (c *Codec[T]) DecodeReport(src []byte, v *T) (Report, error) {
	return DecodeReport(bytesOf(v), src, c.schema, c.streamID)
}

// bytesOf views v's memory. schema.FromStruct only admits pointer-free types.
func bytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
