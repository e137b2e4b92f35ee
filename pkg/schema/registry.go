package schema

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

var (
	ErrDuplicateStream = errors.New("schema: stream already registered")
	ErrUnknownStream   = errors.New("schema: unknown stream")
)

// Stream binds a stream identifier to the schema both sides agree on.
type Stream struct {
	Name   string
	ID     uint32
	Schema *Schema
}

// Registry holds the streams known to this process.
type Registry struct {
	mu     sync.RWMutex
	byID   map[uint32]Stream
	byName map[string]uint32
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[uint32]Stream),
		byName: make(map[string]uint32),
	}
}

// Register adds a stream. Stream ids and names must be unique.
func (r *Registry) Register(s Stream) error {
	if s.Schema == nil {
		return fmt.Errorf("schema: stream %q has no schema", s.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[s.ID]; ok {
		return fmt.Errorf("%w: id %d (%s)", ErrDuplicateStream, s.ID, existing.Name)
	}
	if s.Name != "" {
		if id, ok := r.byName[s.Name]; ok {
			return fmt.Errorf("%w: name %q (id %d)", ErrDuplicateStream, s.Name, id)
		}
		r.byName[s.Name] = s.ID
	}
	r.byID[s.ID] = s
	return nil
}

// Lookup returns the stream registered under id.
func (r *Registry) Lookup(id uint32) (Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return Stream{}, fmt.Errorf("%w: id %d", ErrUnknownStream, id)
	}
	return s, nil
}

// ByName returns the stream registered under name.
func (r *Registry) ByName(name string) (Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return Stream{}, fmt.Errorf("%w: %q", ErrUnknownStream, name)
	}
	return r.byID[id], nil
}

// Resolve looks a stream up by name, then by decimal id.
func (r *Registry) Resolve(key string) (Stream, error) {
	if s, err := r.ByName(key); err == nil {
		return s, nil
	}
	id, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return Stream{}, fmt.Errorf("%w: %q", ErrUnknownStream, key)
	}
	return r.Lookup(uint32(id))
}

// Streams returns every registered stream ordered by id.
func (r *Registry) Streams() []Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Stream, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
