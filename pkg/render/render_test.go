package render

import (
	"encoding/binary"
	"testing"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	testCases := []struct {
		kind Kind
		raw  []byte
		want any
	}{
		{KindInt8, []byte{0xFF}, int8(-1)},
		{KindInt16, []byte{0xFE, 0xFF}, int16(-2)},
		{KindInt32, []byte{0x2a, 0, 0, 0}, int32(42)},
		{KindInt64, []byte{1, 0, 0, 0, 0, 0, 0, 0}, int64(1)},
		{KindUint8, []byte{200}, uint8(200)},
		{KindUint16, []byte{0x34, 0x12}, uint16(0x1234)},
		{KindUint32, []byte{0xEF, 0xBE, 0xAD, 0xDE}, uint32(0xDEADBEEF)},
		{KindUint64, []byte{2, 0, 0, 0, 0, 0, 0, 0}, uint64(2)},
		{KindFloat32, []byte{0, 0, 0x60, 0x40}, float32(3.5)},
		{KindFloat64, []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}, float64(1.5)},
		{KindBool, []byte{1}, true},
		{KindString, []byte("Hello\x00\x00junk"), "Hello"},
		{KindBytes, []byte{0xCA, 0xFE}, "cafe"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got, err := Value(tc.kind, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValue_Errors(t *testing.T) {
	_, err := Value(KindInt32, []byte{1, 2})
	assert.Error(t, err)

	_, err = Value(Kind("complex"), []byte{1})
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		text string
		size int
		want []byte
	}{
		{"int32", KindInt32, "42", 4, []byte{0x2a, 0, 0, 0}},
		{"negative int16", KindInt16, "-2", 2, []byte{0xFE, 0xFF}},
		{"hex uint32", KindUint32, "0xDEADBEEF", 4, []byte{0xEF, 0xBE, 0xAD, 0xDE}},
		{"float32", KindFloat32, "3.5", 4, []byte{0, 0, 0x60, 0x40}},
		{"bool", KindBool, "true", 1, []byte{1}},
		{"padded string", KindString, "Hi", 5, []byte{'H', 'i', 0, 0, 0}},
		{"bytes", KindBytes, "0xcafe", 3, []byte{0xCA, 0xFE, 0}},
		{"int in wider field", KindInt8, "-1", 4, []byte{0xFF, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseValue(tc.kind, tc.text, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseValue_Errors(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		text string
		size int
	}{
		{"overflow", KindInt8, "300", 1},
		{"not a number", KindUint32, "abc", 4},
		{"field too narrow", KindInt64, "1", 4},
		{"string too long", KindString, "Hello, World!", 5},
		{"bad hex", KindBytes, "zz", 2},
		{"unknown kind", Kind("decimal"), "1", 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseValue(tc.kind, tc.text, tc.size)
			assert.Error(t, err)
		})
	}
}

func TestRecordAndTransmitted(t *testing.T) {
	s, err := schema.NewBuilder(24).Field(1, 0, 4).Field(3, 4, 20).Build()
	require.NoError(t, err)
	layout := Layout{Stream: "stream1", Fields: []Field{
		{ID: 1, Name: "field1", Kind: KindInt32},
		{ID: 3, Name: "field3", Kind: KindString},
	}}

	rec := make([]byte, 24)
	binary.LittleEndian.PutUint32(rec, 42)
	copy(rec[4:], "Hello, World!")

	values, err := Record(rec, s, layout)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, FieldValue{ID: 1, Name: "field1", Kind: KindInt32, Offset: 0, Size: 4, Value: int32(42)}, values[0])
	assert.Equal(t, "Hello, World!", values[1].Value)

	encoded, err := frame.Marshal(rec, s, 1)
	require.NoError(t, err)
	view, err := frame.Parse(encoded)
	require.NoError(t, err)

	sent, err := Transmitted(view, Layout{})
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, KindBytes, sent[0].Kind)
	assert.Equal(t, "2a000000", sent[0].Value)
}

func TestJSON(t *testing.T) {
	out, err := JSON(FieldValue{ID: 1, Name: "field1", Kind: KindInt32, Size: 4, Value: int32(42)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"field1","kind":"int32","offset":0,"size":4,"value":42}`, string(out))
}

func TestHex(t *testing.T) {
	assert.Equal(t, "00000000  01 02 03\n", Hex([]byte{1, 2, 3}))
	assert.Equal(t, "", Hex(nil))
}
