package journal

import (
	"errors"
	"os"
	"sync"

	"github.com/segmentio/ksuid"
)

// Index maps capture ids to entry locations and keeps each stream's entries
// in append order.
type Index struct {
	entries  map[ksuid.KSUID]IndexEntry
	byStream map[uint32][]ksuid.KSUID
	mutex    sync.RWMutex
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		entries:  make(map[ksuid.KSUID]IndexEntry),
		byStream: make(map[uint32][]ksuid.KSUID),
	}
}

// Put records the location of an entry
func (idx *Index) Put(entry IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if _, exists := idx.entries[entry.ID]; !exists {
		idx.byStream[entry.StreamID] = append(idx.byStream[entry.StreamID], entry.ID)
	}
	idx.entries[entry.ID] = entry
}

// Lookup returns the location of a capture
func (idx *Index) Lookup(id ksuid.KSUID) (IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	e, ok := idx.entries[id]
	return e, ok
}

// ByStream returns a stream's entries oldest first, at most limit when limit > 0.
func (idx *Index) ByStream(streamID uint32, limit int) []IndexEntry {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	ids := idx.byStream[streamID]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]IndexEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.entries[id])
	}
	return out
}

// Streams returns the number of entries held per stream
func (idx *Index) Streams() map[uint32]int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	out := make(map[uint32]int, len(idx.byStream))
	for id, ids := range idx.byStream {
		out[id] = len(ids)
	}
	return out
}

// Size returns the number of indexed entries
func (idx *Index) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.entries)
}

// BuildFromLog scans the journal at path and indexes every valid entry. It
// stops at the first invalid entry and returns the offset where the valid
// prefix ends.
func (idx *Index) BuildFromLog(path string) (int64, error) {
	reader, err := NewReader(ReaderConfig{FilePath: path})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer reader.Close()

	for {
		start := reader.Offset()
		e, err := reader.Next()
		if err != nil {
			return start, ignoreEOF(err)
		}
		idx.Put(IndexEntry{
			ID:        e.ID,
			StreamID:  e.StreamID,
			Offset:    start,
			Size:      uint32(e.Size()),
			Timestamp: e.Timestamp,
		})
	}
}
