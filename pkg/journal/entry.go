package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/driftframe/pkg/capture"
)

// EntryHeaderSize is CRC32(4) + StreamID(4) + FrameSize(4) + Timestamp(8) + ID(20).
const EntryHeaderSize = 4 + 4 + 4 + 8 + 20 // 20 = ksuid.KSUID byte length

// Entry is one captured frame as stored in the journal
type Entry struct {
	CRC32     uint32      // CRC32 over everything after this field
	StreamID  uint32      // Stream id the frame was captured under
	FrameSize uint32      // Size of the frame in bytes
	Timestamp uint64      // Unix timestamp in nanoseconds
	ID        ksuid.KSUID // Capture id
	Frame     []byte      // Frame bytes, verbatim
}

// NewEntry creates an entry for frame with a fresh id and the current time
func NewEntry(streamID uint32, frame []byte) *Entry {
	now := time.Now()
	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		id = ksuid.New()
	}
	return &Entry{
		StreamID:  streamID,
		FrameSize: uint32(len(frame)),
		Timestamp: uint64(now.UnixNano()),
		ID:        id,
		Frame:     frame,
	}
}

// Encode serializes the entry, computing its CRC32.
// Format: [CRC32(4)][StreamID(4)][FrameSize(4)][Timestamp(8)][ID(20)][Frame]
func (e *Entry) Encode() []byte {
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.StreamID)
	binary.LittleEndian.PutUint32(buf[8:], e.FrameSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[20:], e.ID.Bytes())
	copy(buf[EntryHeaderSize:], e.Frame)

	return buf
}

// DecodeEntry deserializes an entry. The frame aliases data.
func DecodeEntry(data []byte) (*Entry, error) {
	if len(data) < EntryHeaderSize {
		return nil, fmt.Errorf("data too short for entry header: %d < %d", len(data), EntryHeaderSize)
	}

	e := &Entry{}
	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.StreamID = binary.LittleEndian.Uint32(data[4:8])
	e.FrameSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])
	id, err := ksuid.FromBytes(data[20:EntryHeaderSize])
	if err != nil {
		return nil, err
	}
	e.ID = id

	if uint64(len(data)) < uint64(EntryHeaderSize)+uint64(e.FrameSize) {
		return nil, fmt.Errorf("data too short for frame size: %d < %d", len(data), EntryHeaderSize+int(e.FrameSize))
	}
	e.Frame = data[EntryHeaderSize : EntryHeaderSize+int(e.FrameSize)]

	return e, nil
}

// Validate checks the integrity of an entry using CRC32
func (e *Entry) Validate() error {
	if sum := e.checksum(); e.CRC32 != sum {
		return fmt.Errorf("CRC32 mismatch: %d != %d", e.CRC32, sum)
	}
	return nil
}

// Size returns the total size of the entry when encoded
func (e *Entry) Size() int {
	return EntryHeaderSize + len(e.Frame)
}

// Capture converts the entry to the backend-neutral capture form.
func (e *Entry) Capture() capture.Capture {
	return capture.Capture{
		ID:       e.ID,
		StreamID: e.StreamID,
		Time:     time.Unix(0, int64(e.Timestamp)),
		Frame:    e.Frame,
	}
}

func (e *Entry) checksum() uint32 {
	var hdr [EntryHeaderSize - 4]byte
	binary.LittleEndian.PutUint32(hdr[0:], e.StreamID)
	binary.LittleEndian.PutUint32(hdr[4:], e.FrameSize)
	binary.LittleEndian.PutUint64(hdr[8:], e.Timestamp)
	copy(hdr[16:], e.ID.Bytes())

	crc := crc32.NewIEEE()
	crc.Write(hdr[:])
	crc.Write(e.Frame)
	return crc.Sum32()
}
