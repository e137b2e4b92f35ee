// Package metrics exposes Prometheus instrumentation for frame traffic,
// captures and the inspection API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/schema"
)

const (
	StatusOK             = "ok"
	StatusStreamMismatch = "stream_mismatch"
	StatusMalformed      = "malformed"
	StatusBuffer         = "buffer"
	StatusError          = "error"
)

// Metrics holds all Prometheus metrics for driftframe
type Metrics struct {
	// Frame metrics
	framesEncodedTotal *prometheus.CounterVec
	framesDecodedTotal *prometheus.CounterVec
	fieldsTotal        *prometheus.CounterVec
	decodeDuration     *prometheus.HistogramVec

	// Capture metrics
	capturesTotal *prometheus.CounterVec

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		framesEncodedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftframe_frames_encoded_total",
				Help: "Total number of frames encoded",
			},
			[]string{"stream", "status"},
		),

		framesDecodedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftframe_frames_decoded_total",
				Help: "Total number of frames decoded",
			},
			[]string{"stream", "status"},
		),

		fieldsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftframe_fields_total",
				Help: "Decoded fields by match outcome",
			},
			[]string{"stream", "outcome"},
		),

		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driftframe_decode_duration_seconds",
				Help:    "Frame decode duration in seconds",
				Buckets: []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
			},
			[]string{"stream"},
		),

		capturesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftframe_captures_total",
				Help: "Total number of frames stored by a capture backend",
			},
			[]string{"backend", "status"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftframe_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driftframe_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "driftframe_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "route"},
		),
	}
}

// Status maps an encode/decode/capture error to a metric label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, frame.ErrStreamIDMismatch):
		return StatusStreamMismatch
	case errors.Is(err, frame.ErrMalformedFrame):
		return StatusMalformed
	case errors.Is(err, frame.ErrBufferTooSmall), errors.Is(err, frame.ErrRecordSize):
		return StatusBuffer
	default:
		return StatusError
	}
}

// RecordEncode records one encode attempt
func (m *Metrics) RecordEncode(stream string, err error) {
	m.framesEncodedTotal.WithLabelValues(stream, Status(err)).Inc()
}

// RecordDecode records one decode attempt and its field outcomes.
func (m *Metrics) RecordDecode(stream string, report frame.Report, err error, duration time.Duration) {
	m.framesDecodedTotal.WithLabelValues(stream, Status(err)).Inc()
	m.decodeDuration.WithLabelValues(stream).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.fieldsTotal.WithLabelValues(stream, "matched").Add(float64(report.Matched))
	m.fieldsTotal.WithLabelValues(stream, "unknown").Add(float64(report.Unknown))
	m.fieldsTotal.WithLabelValues(stream, "narrowed").Add(float64(report.Narrowed))
	m.fieldsTotal.WithLabelValues(stream, "missing").Add(float64(report.Missing))
}

// RecordCapture records a capture write
func (m *Metrics) RecordCapture(backend string, err error) {
	m.capturesTotal.WithLabelValues(backend, Status(err)).Inc()
}

// Encode encodes record for stream st and records the outcome.
func (m *Metrics) Encode(dst, record []byte, st schema.Stream) (int, error) {
	n, err := frame.Encode(dst, record, st.Schema, st.ID)
	m.RecordEncode(st.Name, err)
	return n, err
}

// Decode decodes src for stream st into dst and records the outcome.
func (m *Metrics) Decode(dst, src []byte, st schema.Stream) (frame.Report, error) {
	start := time.Now()
	report, err := frame.DecodeReport(dst, src, st.Schema, st.ID)
	m.RecordDecode(st.Name, report, err, time.Since(start))
	return report, err
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, route)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, route, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
