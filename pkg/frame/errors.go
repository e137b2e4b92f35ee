package frame

import "errors"

var (
	ErrStreamIDMismatch = errors.New("frame: stream id mismatch")
	ErrBufferTooSmall   = errors.New("frame: buffer too small")
	ErrMalformedFrame   = errors.New("frame: malformed frame")
	ErrRecordSize       = errors.New("frame: record size does not match schema")
)
