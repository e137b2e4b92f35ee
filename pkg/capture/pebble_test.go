package capture

import (
	"errors"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/schema"
)

func testFrame(t *testing.T, streamID uint32, fill byte) []byte {
	t.Helper()
	s, err := schema.NewBuilder(4).Field(1, 0, 4).Build()
	require.NoError(t, err)
	encoded, err := frame.Marshal([]byte{fill, fill, fill, fill}, s, streamID)
	require.NoError(t, err)
	return encoded
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openStore(t)
	data := testFrame(t, 1, 0xAB)

	c, err := s.Put(1, data)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.StreamID)
	assert.False(t, c.ID.IsNil())

	got, err := s.Get(1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, data, got.Frame)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.ID.Time(), got.Time)
}

func TestStore_PutRejectsForeignFrames(t *testing.T) {
	s := openStore(t)

	_, err := s.Put(2, testFrame(t, 1, 0))
	assert.True(t, errors.Is(err, frame.ErrStreamIDMismatch))

	_, err = s.Put(1, []byte{1, 0, 0})
	assert.True(t, errors.Is(err, frame.ErrMalformedFrame))
}

func TestStore_GetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(1, ksuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ListIsolatesStreams(t *testing.T) {
	s := openStore(t)

	want := map[ksuid.KSUID]bool{}
	for i := 0; i < 3; i++ {
		c, err := s.Put(1, testFrame(t, 1, byte(i)))
		require.NoError(t, err)
		want[c.ID] = true
	}
	_, err := s.Put(2, testFrame(t, 2, 9))
	require.NoError(t, err)
	_, err = s.Put(^uint32(0), testFrame(t, ^uint32(0), 9))
	require.NoError(t, err)

	list, err := s.List(1, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, c := range list {
		assert.True(t, want[c.ID])
		assert.Equal(t, uint32(1), c.StreamID)
	}

	limited, err := s.List(1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	last, err := s.List(^uint32(0), 0)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	none, err := s.List(3, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Delete(t *testing.T) {
	s := openStore(t)
	c, err := s.Put(1, testFrame(t, 1, 1))
	require.NoError(t, err)

	require.NoError(t, s.Delete(1, c.ID))
	_, err = s.Get(1, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ReopenKeepsCaptures(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	c, err := s.Put(1, testFrame(t, 1, 7))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, testFrame(t, 1, 7), got.Frame)
}
