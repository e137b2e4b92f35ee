package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/driftframe/pkg/capture"
	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/metrics"
	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	streams := s.registry.Streams()
	out := make([]StreamInfo, 0, len(streams))
	for _, st := range streams {
		out = append(out, DescribeStream(st, s.layouts[st.ID]))
	}
	sendSuccess(w, out)
}

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStream(w, r)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	captures, err := s.source.List(st.ID, limit)
	if err != nil {
		s.log.Error().Err(err).Uint32("stream_id", st.ID).Msg("list captures failed")
		sendError(w, "Failed to list captures", http.StatusInternalServerError)
		return
	}

	out := make([]CaptureSummary, 0, len(captures))
	for _, c := range captures {
		out = append(out, Summarize(c))
	}
	sendSuccess(w, out)
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	st, ok := s.resolveStream(w, r)
	if !ok {
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid capture id", http.StatusBadRequest)
		return
	}

	c, err := s.source.Get(st.ID, id)
	if err != nil {
		if errors.Is(err, capture.ErrNotFound) {
			sendError(w, "Capture not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Uint32("stream_id", st.ID).Str("capture_id", id.String()).Msg("get capture failed")
		sendError(w, "Failed to read capture", http.StatusInternalServerError)
		return
	}

	detail, err := Inspect(c, st, s.layouts[st.ID], s.metrics)
	if err != nil {
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	sendSuccess(w, detail)
}

// Inspect renders a capture both as transmitted and as st's local schema
// decodes it into a zeroed record. A decode failure is reported in the detail,
// not as an error.
func Inspect(c capture.Capture, st schema.Stream, layout render.Layout, m *metrics.Metrics) (CaptureDetail, error) {
	detail := CaptureDetail{CaptureSummary: Summarize(c)}

	view, err := frame.Parse(c.Frame)
	if err != nil {
		return detail, err
	}
	detail.Transmitted, err = render.Transmitted(view, layout)
	if err != nil {
		return detail, err
	}

	record := make([]byte, st.Schema.RecordSize())
	report, err := m.Decode(record, c.Frame, st)
	if err != nil {
		detail.DecodeError = err.Error()
		return detail, nil
	}
	detail.Report = &report
	detail.Decoded, err = render.Record(record, st.Schema, layout)
	if err != nil {
		return detail, err
	}
	return detail, nil
}

// resolveStream accepts a stream name or numeric id
func (s *Server) resolveStream(w http.ResponseWriter, r *http.Request) (schema.Stream, bool) {
	key := chi.URLParam(r, "stream")

	st, err := s.registry.Resolve(key)
	if err != nil {
		sendError(w, "Unknown stream: "+key, http.StatusNotFound)
		return schema.Stream{}, false
	}
	return st, true
}

// DescribeStream lists a stream's local descriptors with their labels
func DescribeStream(st schema.Stream, layout render.Layout) StreamInfo {
	info := StreamInfo{
		Name:       st.Name,
		ID:         st.ID,
		RecordSize: st.Schema.RecordSize(),
		Fields:     make([]FieldInfo, 0, st.Schema.Len()),
	}
	for _, d := range st.Schema.Descriptors() {
		fi := FieldInfo{ID: d.ID, Offset: d.Offset, Size: d.Size}
		if label, ok := layout.Field(d.ID); ok {
			fi.Name = label.Name
			fi.Kind = label.Kind
		}
		info.Fields = append(info.Fields, fi)
	}
	return info
}

// Summarize describes a capture without decoding it
func Summarize(c capture.Capture) CaptureSummary {
	sum := CaptureSummary{
		ID:       c.ID,
		StreamID: c.StreamID,
		Time:     c.Time,
		Size:     len(c.Frame),
	}
	if h, err := frame.ReadHeader(c.Frame); err == nil {
		sum.FieldCount = h.FieldCount
	}
	return sum
}
