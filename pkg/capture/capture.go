// Package capture stores frames for later inspection. A capture is the frame
// exactly as received, tagged with its stream id and a time-ordered KSUID.
package capture

import (
	"errors"
	"time"

	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("capture: not found")

// Capture is one stored frame
type Capture struct {
	ID       ksuid.KSUID `json:"id"`
	StreamID uint32      `json:"stream_id"`
	Time     time.Time   `json:"time"`
	Frame    []byte      `json:"-"`
}

// Sink accepts frames for storage.
type Sink interface {
	Put(streamID uint32, frame []byte) (Capture, error)
	Close() error
}

// Source reads stored frames back. List returns captures oldest first, at most
// limit of them when limit > 0.
type Source interface {
	Get(streamID uint32, id ksuid.KSUID) (Capture, error)
	List(streamID uint32, limit int) ([]Capture, error)
}

// Backend is a capture store that can be both written and read
type Backend interface {
	Sink
	Source
}
