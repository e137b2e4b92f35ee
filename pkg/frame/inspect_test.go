package frame

import (
	"errors"
	"testing"

	"github.com/ssargent/driftframe/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s := stream1Schema(t)
	encoded, err := Marshal(stream1Record(42, "Hello, World!"), s, 1)
	require.NoError(t, err)

	v, err := Parse(encoded)
	require.NoError(t, err)
	assert.Equal(t, Header{StreamID: 1, FieldCount: 2}, v.Header)
	assert.Equal(t, s.Descriptors(), v.Meta)
	assert.Len(t, v.Payload, 24)

	raw, ok := v.Field(1)
	require.True(t, ok)
	assert.Equal(t, []byte{0x2a, 0, 0, 0}, raw)

	_, ok = v.Field(2)
	assert.False(t, ok)
}

func TestParse_Malformed(t *testing.T) {
	s := stream1Schema(t)
	encoded, err := Marshal(stream1Record(1, "x"), s, 1)
	require.NoError(t, err)

	for _, src := range [][]byte{encoded[:7], encoded[:23], encoded[:47]} {
		_, err := Parse(src)
		assert.True(t, errors.Is(err, ErrMalformedFrame), "len %d: got %v", len(src), err)
	}
}

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader([]byte{0x02, 0, 0, 0, 0x03, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Header{StreamID: 2, FieldCount: 3}, h)

	_, err = ReadHeader([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestParse_EmptySchema(t *testing.T) {
	s, err := schema.Build(4)
	require.NoError(t, err)
	encoded, err := Marshal([]byte{1, 2, 3, 4}, s, 9)
	require.NoError(t, err)

	v, err := Parse(encoded)
	require.NoError(t, err)
	assert.Empty(t, v.Meta)
	assert.Equal(t, []byte{1, 2, 3, 4}, v.Payload)
}
