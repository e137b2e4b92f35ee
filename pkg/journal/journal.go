// Package journal is an append-only file of captured frames. Each entry wraps
// one frame, verbatim, in a CRC-checked envelope that also records the stream
// id, the capture time and a KSUID.
//
// Entry format (little-endian):
//
//	[CRC32(4)][StreamID(4)][FrameSize(4)][Timestamp(8)][ID(20)][Frame]
//
// Frames do not carry their own length, so FrameSize is what delimits them.
// Opening a journal truncates a torn or corrupt tail back to the last intact
// entry and rebuilds the in-memory index from what remains.
package journal

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/driftframe/pkg/capture"
)

// Journal ties a writer, a reader and an index over one file. It satisfies
// capture.Backend.
type Journal struct {
	config Config
	writer *Writer
	reader *Reader
	index  *Index
	log    zerolog.Logger
	mu     sync.Mutex
}

var _ capture.Backend = (*Journal)(nil)

// Open recovers and opens the journal at config.FilePath
func Open(config Config) (*Journal, error) {
	log := zerolog.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}
	log = log.With().Str("component", "journal").Str("path", config.FilePath).Logger()

	result, err := Recover(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to recover journal: %w", err)
	}
	if result.BytesTruncated > 0 {
		log.Warn().
			Int64("entries", result.EntriesValidated).
			Int64("truncated_bytes", result.BytesTruncated).
			Msg("truncated corrupt journal tail")
	}

	writer, err := NewWriter(WriterConfig{
		FilePath:      config.FilePath,
		FsyncInterval: config.FsyncInterval,
		BufferSize:    config.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal writer: %w", err)
	}

	index := NewIndex()
	if _, err := index.BuildFromLog(config.FilePath); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to build journal index: %w", err)
	}

	reader, err := NewReader(ReaderConfig{FilePath: config.FilePath})
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to open journal reader: %w", err)
	}

	log.Debug().Int("entries", index.Size()).Dur("recovery", result.RecoveryTime).Msg("journal opened")

	return &Journal{
		config: config,
		writer: writer,
		reader: reader,
		index:  index,
		log:    log,
	}, nil
}

// Put appends frame to the journal. The frame header must carry streamID.
func (j *Journal) Put(streamID uint32, frame []byte) (capture.Capture, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, offset, err := j.writer.Append(streamID, frame)
	if err != nil {
		return capture.Capture{}, err
	}
	j.index.Put(IndexEntry{
		ID:        e.ID,
		StreamID:  e.StreamID,
		Offset:    offset,
		Size:      uint32(e.Size()),
		Timestamp: e.Timestamp,
	})
	return e.Capture(), nil
}

// Get returns the capture with the given id
func (j *Journal) Get(streamID uint32, id ksuid.KSUID) (capture.Capture, error) {
	loc, ok := j.index.Lookup(id)
	if !ok || loc.StreamID != streamID {
		return capture.Capture{}, fmt.Errorf("%w: %s", capture.ErrNotFound, id)
	}
	e, err := j.readAt(loc.Offset)
	if err != nil {
		return capture.Capture{}, err
	}
	return e.Capture(), nil
}

// List returns a stream's captures in append order
func (j *Journal) List(streamID uint32, limit int) ([]capture.Capture, error) {
	locs := j.index.ByStream(streamID, limit)
	out := make([]capture.Capture, 0, len(locs))
	for _, loc := range locs {
		e, err := j.readAt(loc.Offset)
		if err != nil {
			return nil, err
		}
		out = append(out, e.Capture())
	}
	return out, nil
}

func (j *Journal) readAt(offset int64) (*Entry, error) {
	if err := j.writer.Flush(); err != nil {
		return nil, err
	}
	return j.reader.ReadAt(offset)
}

// Sync forces buffered entries to disk
func (j *Journal) Sync() error {
	return j.writer.Sync()
}

// Count returns the number of entries in the journal
func (j *Journal) Count() int {
	return j.index.Size()
}

// Size returns the journal size in bytes
func (j *Journal) Size() int64 {
	return j.writer.Size()
}

// Close syncs and closes the journal
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	werr := j.writer.Close()
	rerr := j.reader.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
