// Package schema describes where each logical field lives inside a fixed-size
// record, and which stream identifier a record type travels under.
package schema

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateFieldID      = errors.New("schema: duplicate field id")
	ErrDescriptorOutOfBounds = errors.New("schema: descriptor exceeds record size")
	ErrInvalidRecordSize     = errors.New("schema: invalid record size")
)

// FieldDescriptor locates one logical field inside a record's own memory image.
type FieldDescriptor struct {
	ID     uint32 // Stable, caller-assigned field identifier
	Offset uint16 // Byte offset within the record
	Size   uint16 // Field size in bytes
}

// End returns the offset one past the last byte of the field.
func (d FieldDescriptor) End() int {
	return int(d.Offset) + int(d.Size)
}

// Schema is the ordered, immutable descriptor table of one record type.
type Schema struct {
	descriptors []FieldDescriptor
	recordSize  int
}

// Build validates descriptors against recordSize and returns an immutable schema.
func Build(recordSize int, descriptors ...FieldDescriptor) (*Schema, error) {
	if recordSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecordSize, recordSize)
	}

	seen := make(map[uint32]struct{}, len(descriptors))
	for _, d := range descriptors {
		if _, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateFieldID, d.ID)
		}
		seen[d.ID] = struct{}{}

		if d.End() > recordSize {
			return nil, fmt.Errorf("%w: field %d ends at %d, record size %d",
				ErrDescriptorOutOfBounds, d.ID, d.End(), recordSize)
		}
	}

	owned := make([]FieldDescriptor, len(descriptors))
	copy(owned, descriptors)

	return &Schema{descriptors: owned, recordSize: recordSize}, nil
}

// Find returns the descriptor with the given id.
func (s *Schema) Find(id uint32) (FieldDescriptor, bool) {
	for _, d := range s.descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return FieldDescriptor{}, false
}

// At returns the i-th descriptor in declared order.
func (s *Schema) At(i int) FieldDescriptor {
	return s.descriptors[i]
}

// Len returns the number of described fields.
func (s *Schema) Len() int {
	return len(s.descriptors)
}

// RecordSize returns the total byte size of the record type.
func (s *Schema) RecordSize() int {
	return s.recordSize
}

// Descriptors returns a copy of the descriptor table in declared order.
func (s *Schema) Descriptors() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// Builder accumulates descriptors for a record type
type Builder struct {
	recordSize  int
	descriptors []FieldDescriptor
}

// NewBuilder starts a schema for a record of recordSize bytes.
func NewBuilder(recordSize int) *Builder {
	return &Builder{recordSize: recordSize}
}

// Field appends a descriptor. Omitting a field from the builder disables it.
func (b *Builder) Field(id uint32, offset, size uint16) *Builder {
	b.descriptors = append(b.descriptors, FieldDescriptor{ID: id, Offset: offset, Size: size})
	return b
}

// Build validates and freezes the accumulated descriptors.
func (b *Builder) Build() (*Schema, error) {
	return Build(b.recordSize, b.descriptors...)
}
