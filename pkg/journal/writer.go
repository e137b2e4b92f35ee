package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ssargent/driftframe/pkg/frame"
)

// Writer appends entries to the end of a journal file
type Writer struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     WriterConfig
	mutex      sync.Mutex
	offset     int64
	closed     bool
}

// NewWriter opens (or creates) the journal file for appending
func NewWriter(config WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	end, err := file.Seek(0, 2)
	if err != nil {
		file.Close()
		return nil, err
	}

	if config.BufferSize <= 0 {
		config.BufferSize = 4096
	}

	w := &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
		offset: end,
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			if !w.closed {
				_ = w.sync()
			}
		})
	}

	return w, nil
}

// Append writes frame as a new entry and returns it with the offset it starts at.
// The frame header must carry streamID.
func (w *Writer) Append(streamID uint32, data []byte) (*Entry, int64, error) {
	h, err := frame.ReadHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if h.StreamID != streamID {
		return nil, 0, fmt.Errorf("%w: frame carries %d, want %d", frame.ErrStreamIDMismatch, h.StreamID, streamID)
	}

	if len(data) > maxFrameSize {
		return nil, 0, fmt.Errorf("journal: frame of %d bytes exceeds %d", len(data), maxFrameSize)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil, 0, ErrClosed
	}

	owned := make([]byte, len(data))
	copy(owned, data)
	e := NewEntry(streamID, owned)

	n, err := w.writer.Write(e.Encode())
	if err != nil {
		return nil, 0, err
	}

	start := w.offset
	w.offset += int64(n)

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return nil, 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return e, start, nil
}

// Flush pushes buffered entries to the file without fsync, making them
// visible to readers.
func (w *Writer) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.writer.Flush()
}

// Sync forces a fsync to disk
func (w *Writer) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.sync()
}

func (w *Writer) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close syncs and closes the journal file
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Size returns the logical size of the journal, including buffered entries
func (w *Writer) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *Writer) Path() string {
	return w.config.FilePath
}
