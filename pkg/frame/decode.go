package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/driftframe/pkg/schema"
)

// Report summarizes how a frame's meta table matched the local schema.
type Report struct {
	Received int // Descriptors in the frame's meta table
	Matched  int // Received descriptors found in the local schema
	Unknown  int // Received descriptors the local schema does not know
	Narrowed int // Matched descriptors whose sizes differ; min(size) bytes were copied
	Missing  int // Local descriptors absent from the frame; left untouched in dst
}

// Decode populates dst from the frame in src, matching fields by id against s.
// See DecodeReport.
func Decode(dst, src []byte, s *schema.Schema, streamID uint32) error {
	_, err := DecodeReport(dst, src, s, streamID)
	return err
}

// DecodeReport populates dst from the frame in src and reports the match outcome.
//
// Fields are matched by id, never by position. For each match the smaller of
// the two declared sizes is copied from the received offset to the local
// offset. Unknown received fields are skipped and local fields missing from the
// frame keep whatever dst held on entry. The frame is fully validated before
// the first write, so on error dst is unchanged.
func DecodeReport(dst, src []byte, s *schema.Schema, streamID uint32) (Report, error) {
	if len(src) < StreamIDSize {
		return Report{}, fmt.Errorf("%w: %d bytes, no stream id", ErrMalformedFrame, len(src))
	}
	if got := binary.LittleEndian.Uint32(src[0:4]); got != streamID {
		return Report{}, fmt.Errorf("%w: got %d, want %d", ErrStreamIDMismatch, got, streamID)
	}
	if len(src) < HeaderSize {
		return Report{}, fmt.Errorf("%w: %d bytes, no field count", ErrMalformedFrame, len(src))
	}

	count := binary.LittleEndian.Uint32(src[4:8])
	metaEnd, ok := metaBounds(src, count)
	if !ok {
		return Report{}, fmt.Errorf("%w: meta table of %d entries exceeds %d bytes", ErrMalformedFrame, count, len(src))
	}
	if len(dst) < s.RecordSize() {
		return Report{}, fmt.Errorf("%w: record needs %d bytes, have %d", ErrBufferTooSmall, s.RecordSize(), len(dst))
	}

	meta := src[HeaderSize:metaEnd]
	payload := src[metaEnd:]

	for off := 0; off < len(meta); off += DescriptorSize {
		recv := readDescriptor(meta[off : off+DescriptorSize])
		local, ok := s.Find(recv.ID)
		if !ok {
			continue
		}
		if n := copySize(recv, local); int(recv.Offset)+n > len(payload) {
			return Report{}, fmt.Errorf("%w: field %d at %d+%d exceeds %d byte payload",
				ErrMalformedFrame, recv.ID, recv.Offset, n, len(payload))
		}
	}

	report := Report{Received: int(count)}
	for off := 0; off < len(meta); off += DescriptorSize {
		recv := readDescriptor(meta[off : off+DescriptorSize])
		local, ok := s.Find(recv.ID)
		if !ok {
			report.Unknown++
			continue
		}
		n := copySize(recv, local)
		copy(dst[int(local.Offset):int(local.Offset)+n], payload[int(recv.Offset):int(recv.Offset)+n])
		report.Matched++
		if recv.Size != local.Size {
			report.Narrowed++
		}
	}

	for i := 0; i < s.Len(); i++ {
		if !received(meta, s.At(i).ID) {
			report.Missing++
		}
	}

	return report, nil
}

func copySize(recv, local schema.FieldDescriptor) int {
	return int(min(recv.Size, local.Size))
}

func received(meta []byte, id uint32) bool {
	for off := 0; off < len(meta); off += DescriptorSize {
		if binary.LittleEndian.Uint32(meta[off:off+4]) == id {
			return true
		}
	}
	return false
}
