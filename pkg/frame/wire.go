package frame

import (
	"encoding/binary"

	"github.com/ssargent/driftframe/pkg/schema"
)

// Wire layout sizes in bytes.
const (
	StreamIDSize   = 4
	FieldCountSize = 4
	HeaderSize     = StreamIDSize + FieldCountSize
	DescriptorSize = 8
)

// Header is the fixed prefix of every frame
type Header struct {
	StreamID   uint32
	FieldCount uint32
}

// EncodedSize returns the frame length produced for a record of schema s.
func EncodedSize(s *schema.Schema) int {
	return HeaderSize + DescriptorSize*s.Len() + s.RecordSize()
}

func putDescriptor(b []byte, d schema.FieldDescriptor) {
	binary.LittleEndian.PutUint32(b[0:4], d.ID)
	binary.LittleEndian.PutUint16(b[4:6], d.Offset)
	binary.LittleEndian.PutUint16(b[6:8], d.Size)
}

func readDescriptor(b []byte) schema.FieldDescriptor {
	return schema.FieldDescriptor{
		ID:     binary.LittleEndian.Uint32(b[0:4]),
		Offset: binary.LittleEndian.Uint16(b[4:6]),
		Size:   binary.LittleEndian.Uint16(b[6:8]),
	}
}

// metaBounds returns the end of the meta table, or false when src cannot hold it.
func metaBounds(src []byte, count uint32) (int, bool) {
	avail := uint64(len(src) - HeaderSize)
	need := uint64(count) * DescriptorSize
	if need > avail {
		return 0, false
	}
	return HeaderSize + int(need), true
}
