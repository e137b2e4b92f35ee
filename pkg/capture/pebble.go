package capture

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/driftframe/pkg/frame"
)

const keyPrefix = 'c'

// Store is a pebble-backed capture catalog. Keys are
// 'c' | stream id (big-endian) | KSUID, so a prefix scan yields one stream's
// captures in capture order.
type Store struct {
	db *pebble.DB
}

// Open opens or creates a capture store in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}
	return &Store{db: db}, nil
}

func captureKey(streamID uint32, id ksuid.KSUID) []byte {
	key := make([]byte, 1+4+len(ksuid.KSUID{}))
	key[0] = keyPrefix
	binary.BigEndian.PutUint32(key[1:5], streamID)
	copy(key[5:], id.Bytes())
	return key
}

func streamPrefix(streamID uint32) []byte {
	prefix := make([]byte, 5)
	prefix[0] = keyPrefix
	binary.BigEndian.PutUint32(prefix[1:5], streamID)
	return prefix
}

// Put stores frame under a new KSUID. The frame's header must carry streamID.
func (s *Store) Put(streamID uint32, data []byte) (Capture, error) {
	h, err := frame.ReadHeader(data)
	if err != nil {
		return Capture{}, err
	}
	if h.StreamID != streamID {
		return Capture{}, fmt.Errorf("%w: frame carries %d, want %d", frame.ErrStreamIDMismatch, h.StreamID, streamID)
	}

	id := ksuid.New()
	if err := s.db.Set(captureKey(streamID, id), data, pebble.NoSync); err != nil {
		return Capture{}, err
	}

	return Capture{ID: id, StreamID: streamID, Time: id.Time(), Frame: data}, nil
}

// Get returns one capture
func (s *Store) Get(streamID uint32, id ksuid.KSUID) (Capture, error) {
	data, closer, err := s.db.Get(captureKey(streamID, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Capture{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Capture{}, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return Capture{ID: id, StreamID: streamID, Time: id.Time(), Frame: out}, nil
}

// List returns a stream's captures oldest first.
func (s *Store) List(streamID uint32, limit int) ([]Capture, error) {
	prefix := streamPrefix(streamID)
	upper := streamPrefix(streamID + 1)
	if streamID == ^uint32(0) {
		upper = []byte{keyPrefix + 1}
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Capture
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			return nil, fmt.Errorf("capture: bad key %x: %w", iter.Key(), err)
		}
		data := make([]byte, len(iter.Value()))
		copy(data, iter.Value())
		out = append(out, Capture{ID: id, StreamID: streamID, Time: id.Time(), Frame: data})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

// Delete removes one capture
func (s *Store) Delete(streamID uint32, id ksuid.KSUID) error {
	return s.db.Delete(captureKey(streamID, id), pebble.NoSync)
}

// Close flushes and closes the underlying database
func (s *Store) Close() error {
	if err := s.db.Flush(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
