// Package frame encodes fixed-layout records into self-describing binary frames
// and decodes them back, tolerating layout drift between encoder and decoder.
//
// # Frame Format
//
// All integers are little-endian:
//
//	[StreamID(4)][FieldCount(4)][FieldCount x Descriptor(8)][Payload]
//
// Descriptor:
//
//	[ID(4)][Offset(2)][Size(2)]
//
// Fields:
//   - StreamID: coarse compatibility guard, compared before any field matching
//   - FieldCount: number of descriptors in the meta table
//   - Descriptor: the encoder's (id, offset, size) for one field, in the
//     encoder's declared order
//   - Payload: the verbatim byte image of the encoded record, RecordSize bytes
//
// The total frame size is: 8 + 8*FieldCount + RecordSize. A frame carries no
// payload length of its own; storage envelopes (see package journal) delimit it.
//
// # Field Matching
//
// The decoder walks the transmitted meta table and looks each id up in its own
// schema. A match copies min(received size, local size) bytes from the received
// offset into the local offset. Unknown ids are skipped, which lets an old
// reader accept frames from a newer writer. Local fields that never arrive keep
// the value the destination held on entry, so readers that want defaults for
// fields added after the writer was built must pre-initialize the record.
//
// # Usage
//
//	s, err := schema.NewBuilder(24).
//	    Field(1, 0, 4).
//	    Field(3, 4, 20).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	buf := make([]byte, frame.EncodedSize(s))
//	if _, err := frame.Encode(buf, record, s, 1); err != nil {
//	    return err
//	}
//
//	out := make([]byte, s.RecordSize())
//	if err := frame.Decode(out, buf, s, 1); err != nil {
//	    return err
//	}
//
// Struct records can use the typed Codec, which derives the schema from
// `frame:"<id>"` tags and treats the struct's memory as the record image.
//
// # Host Representation
//
// The payload is the host representation of the record type. Encoder and
// decoder must agree on byte order and layout; schema.FromStruct rejects
// structs with implicit padding unless schema.AllowPadding is given.
//
// # Errors
//
//   - ErrStreamIDMismatch: the frame belongs to another stream; dst untouched
//   - ErrMalformedFrame: header, meta table or a matched field exceeds the frame
//   - ErrBufferTooSmall: dst cannot hold the frame or record
//   - ErrRecordSize: the record passed to Encode is not RecordSize bytes
//
// # Thread Safety
//
// Encode and Decode do not allocate and keep no state. A built schema is
// immutable and may be shared across goroutines; exclusive use of the buffers
// during a call is the caller's responsibility.
package frame
