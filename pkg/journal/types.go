package journal

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// IndexEntry locates one capture in the journal file
type IndexEntry struct {
	ID        ksuid.KSUID // Capture id
	StreamID  uint32      // Stream the frame belongs to
	Offset    int64       // Byte offset of the entry within the file
	Size      uint32      // Size of the encoded entry in bytes
	Timestamp uint64      // Capture time in Unix nanoseconds
}

// WriterConfig holds configuration for the journal writer
type WriterConfig struct {
	FilePath      string        // Path to the journal file
	FsyncInterval time.Duration // How often to fsync (0 = every append)
	BufferSize    int           // Write buffer size
}

// ReaderConfig holds configuration for the journal reader
type ReaderConfig struct {
	FilePath    string // Path to the journal file
	StartOffset int64  // Offset to start reading from
}

// Config holds configuration for an opened journal
type Config struct {
	FilePath      string
	FsyncInterval time.Duration
	BufferSize    int
	Logger        *zerolog.Logger
}

// EntryIterator provides streaming access to entries
type EntryIterator interface {
	Next() bool
	Entry() *Entry
	Err() error
	Close() error
}

// RecoveryResult describes the state of a journal file found by a scan. For
// Verify, FileSizeAfter and BytesTruncated are what Recover would produce.
type RecoveryResult struct {
	EntriesValidated int64
	BytesTruncated   int64
	FileSizeBefore   int64
	FileSizeAfter    int64
	RecoveryTime     time.Duration
}

// Errors
var (
	ErrCorruption = &Error{"journal: data corruption detected"}
	ErrClosed     = &Error{"journal: closed"}
)

// Error represents a journal error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
