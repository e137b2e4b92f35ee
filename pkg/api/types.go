package api

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/render"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind            string
	Port            int
	APIKey          string // When set, /api/v1 requires a matching X-API-Key header
	ShutdownTimeout time.Duration
	Logger          *zerolog.Logger
}

// StreamInfo describes one registered stream
type StreamInfo struct {
	Name       string      `json:"name"`
	ID         uint32      `json:"id"`
	RecordSize int         `json:"record_size"`
	Fields     []FieldInfo `json:"fields"`
}

// FieldInfo is one descriptor of a stream's local schema
type FieldInfo struct {
	ID     uint32      `json:"id"`
	Name   string      `json:"name,omitempty"`
	Kind   render.Kind `json:"kind,omitempty"`
	Offset uint16      `json:"offset"`
	Size   uint16      `json:"size"`
}

// CaptureSummary is a capture without its frame contents
type CaptureSummary struct {
	ID         ksuid.KSUID `json:"id"`
	StreamID   uint32      `json:"stream_id"`
	Time       time.Time   `json:"time"`
	Size       int         `json:"size"`
	FieldCount uint32      `json:"field_count"`
}

// CaptureDetail is a capture as sent and as the local schema decodes it
type CaptureDetail struct {
	CaptureSummary
	Transmitted []render.FieldValue `json:"transmitted"`
	Decoded     []render.FieldValue `json:"decoded,omitempty"`
	Report      *frame.Report       `json:"report,omitempty"`
	DecodeError string              `json:"decode_error,omitempty"`
}
