package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/driftframe/pkg/schema"
)

// Encode writes record as a frame into dst and returns the number of bytes
// written. The record image is copied as one block, including bytes that no
// descriptor covers. Nothing is written when dst is too small.
func Encode(dst, record []byte, s *schema.Schema, streamID uint32) (int, error) {
	if len(record) != s.RecordSize() {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrRecordSize, len(record), s.RecordSize())
	}
	size := EncodedSize(s)
	if len(dst) < size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, size, len(dst))
	}

	binary.LittleEndian.PutUint32(dst[0:4], streamID)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(s.Len()))

	off := HeaderSize
	for i := 0; i < s.Len(); i++ {
		putDescriptor(dst[off:off+DescriptorSize], s.At(i))
		off += DescriptorSize
	}
	copy(dst[off:size], record)

	return size, nil
}

// Marshal encodes record into a newly allocated frame.
func Marshal(record []byte, s *schema.Schema, streamID uint32) ([]byte, error) {
	buf := make([]byte, EncodedSize(s))
	if _, err := Encode(buf, record, s, streamID); err != nil {
		return nil, err
	}
	return buf, nil
}
