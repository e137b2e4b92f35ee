package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// TagName is the struct tag that assigns a field id, e.g. `frame:"3"`.
const TagName = "frame"

var (
	ErrNotStruct       = errors.New("schema: record type is not a struct")
	ErrUnsupportedKind = errors.New("schema: field kind cannot be carried in a raw record image")
	ErrInvalidTag      = errors.New("schema: invalid frame tag")
	ErrImplicitPadding = errors.New("schema: record type has implicit padding")
)

// Option adjusts struct schema derivation.
type Option func(*options)

type options struct {
	allowPadding bool
}

// AllowPadding accepts structs whose layout contains compiler-inserted padding.
// Encoder and decoder must then be built for the same target.
func AllowPadding() Option {
	return func(o *options) {
		o.allowPadding = true
	}
}

type cacheKey struct {
	t            reflect.Type
	allowPadding bool
}

type cacheEntry struct {
	schema *Schema
	err    error
}

var cache sync.Map

// FromStruct derives the schema of T from its `frame` tags.
func FromStruct[T any](opts ...Option) (*Schema, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// FromType derives a schema from a struct type. Tagged fields get a descriptor;
// untagged fields and fields tagged "-" still travel in the payload but cannot
// be matched by a decoder. Pointer types fail with ErrNotStruct.
func FromType(t reflect.Type, opts ...Option) (*Schema, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	key := cacheKey{t: t, allowPadding: o.allowPadding}
	if cached, ok := cache.Load(key); ok {
		e := cached.(cacheEntry)
		return e.schema, e.err
	}

	s, err := fromType(t, o)
	actual, _ := cache.LoadOrStore(key, cacheEntry{schema: s, err: err})
	e := actual.(cacheEntry)
	return e.schema, e.err
}

func fromType(t reflect.Type, o options) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	if err := checkKind(t, t.Name()); err != nil {
		return nil, err
	}
	if !o.allowPadding {
		if err := checkPacked(t, t.Name()); err != nil {
			return nil, err
		}
	}

	b := NewBuilder(int(t.Size()))
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		id, ok, err := parseTag(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if f.Offset > math.MaxUint16 || f.Type.Size() > math.MaxUint16 {
			return nil, fmt.Errorf("%w: field %s at %d size %d does not fit a descriptor",
				ErrDescriptorOutOfBounds, f.Name, f.Offset, f.Type.Size())
		}
		b.Field(id, uint16(f.Offset), uint16(f.Type.Size()))
	}

	return b.Build()
}

func parseTag(f reflect.StructField) (uint32, bool, error) {
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return 0, false, nil
	}
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(tag, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("%w: field %s: %q", ErrInvalidTag, f.Name, tag)
	}
	return uint32(id), true, nil
}

// checkKind rejects anything whose bytes are not the value itself.
func checkKind(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkKind(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if err := checkKind(f.Type, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s is %s", ErrUnsupportedKind, path, t.Kind())
	}
}

func checkPacked(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Array:
		return checkPacked(t.Elem(), path+"[]")
	case reflect.Struct:
	default:
		return nil
	}

	var next uintptr
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Offset != next {
			return fmt.Errorf("%w: %d bytes before %s.%s", ErrImplicitPadding, f.Offset-next, path, f.Name)
		}
		if err := checkPacked(f.Type, path+"."+f.Name); err != nil {
			return err
		}
		next = f.Offset + f.Type.Size()
	}
	if next != t.Size() {
		return fmt.Errorf("%w: %d trailing bytes in %s", ErrImplicitPadding, t.Size()-next, path)
	}
	return nil
}
