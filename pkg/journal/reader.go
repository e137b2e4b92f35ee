package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxFrameSize bounds a single entry so a corrupt size field cannot force a
// huge allocation.
const maxFrameSize = 64 << 20

// Reader provides sequential and random access to journal entries
type Reader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	config ReaderConfig
}

// NewReader opens the journal file for reading
func NewReader(config ReaderConfig) (*Reader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, 0); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &Reader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// Next reads the entry at the current offset. It returns io.EOF at a clean end
// of file and ErrCorruption for a torn or invalid entry.
func (r *Reader) Next() (*Entry, error) {
	header := make([]byte, EntryHeaderSize)
	n, err := io.ReadFull(r.reader, header)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	size := binary.LittleEndian.Uint32(header[8:12])
	if size > maxFrameSize {
		return nil, fmt.Errorf("%w: frame size %d at offset %d", ErrCorruption, size, r.offset)
	}

	buf := make([]byte, EntryHeaderSize+int(size))
	copy(buf, header)
	m, err := io.ReadFull(r.reader, buf[EntryHeaderSize:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated frame at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	e, err := DecodeEntry(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: offset %d: %v", ErrCorruption, r.offset, err)
	}

	r.offset += int64(n + m)
	return e, nil
}

// ReadAt reads the entry starting at offset without moving the sequential cursor.
func (r *Reader) ReadAt(offset int64) (*Entry, error) {
	header := make([]byte, EntryHeaderSize)
	if _, err := r.file.ReadAt(header, offset); err != nil {
		return nil, fmt.Errorf("%w: header at offset %d: %v", ErrCorruption, offset, err)
	}

	size := binary.LittleEndian.Uint32(header[8:12])
	if size > maxFrameSize {
		return nil, fmt.Errorf("%w: frame size %d at offset %d", ErrCorruption, size, offset)
	}

	buf := make([]byte, EntryHeaderSize+int(size))
	copy(buf, header)
	if size > 0 {
		if _, err := r.file.ReadAt(buf[EntryHeaderSize:], offset+EntryHeaderSize); err != nil {
			return nil, fmt.Errorf("%w: frame at offset %d: %v", ErrCorruption, offset, err)
		}
	}

	e, err := DecodeEntry(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: offset %d: %v", ErrCorruption, offset, err)
	}
	return e, nil
}

// Offset returns the offset of the next entry Next will read
func (r *Reader) Offset() int64 {
	return r.offset
}

// Close closes the reader
func (r *Reader) Close() error {
	return r.file.Close()
}

// Iterator returns an iterator over entries from the current offset
func (r *Reader) Iterator() EntryIterator {
	return &entryIterator{reader: r}
}

type entryIterator struct {
	reader  *Reader
	current *Entry
	err     error
	done    bool
}

func (it *entryIterator) Next() bool {
	if it.done {
		return false
	}
	e, err := it.reader.Next()
	if err != nil {
		it.done = true
		if !errors.Is(err, io.EOF) {
			it.err = err
		}
		it.current = nil
		return false
	}
	it.current = e
	return true
}

func (it *entryIterator) Entry() *Entry {
	return it.current
}

func (it *entryIterator) Err() error {
	return it.err
}

func (it *entryIterator) Close() error {
	return it.reader.Close()
}
