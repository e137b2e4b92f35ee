package api

import (
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/driftframe/pkg/frame"
	"github.com/ssargent/driftframe/pkg/journal"
	"github.com/ssargent/driftframe/pkg/metrics"
	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	journal *journal.Journal
	sender  *schema.Schema
}

// setupTestServer registers stream1 {1:int32, 3:string[20]} and opens an
// empty journal. The returned sender schema is a newer layout of the same
// stream with a wider field 3 and an extra field 4.
func setupTestServer(t *testing.T, config ServerConfig) *testEnv {
	t.Helper()

	local, err := schema.NewBuilder(24).Field(1, 0, 4).Field(3, 4, 20).Build()
	require.NoError(t, err)
	sender, err := schema.NewBuilder(64).Field(1, 0, 4).Field(3, 4, 40).Field(4, 44, 20).Build()
	require.NoError(t, err)

	registry := schema.NewRegistry()
	require.NoError(t, registry.Register(schema.Stream{Name: "stream1", ID: 1, Schema: local}))

	layouts := map[uint32]render.Layout{
		1: {Stream: "stream1", Fields: []render.Field{
			{ID: 1, Name: "field1", Kind: render.KindInt32},
			{ID: 3, Name: "field3", Kind: render.KindString},
		}},
	}

	j, err := journal.Open(journal.Config{FilePath: filepath.Join(t.TempDir(), "captures.journal")})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	reg := prometheus.NewRegistry()
	server := NewServer(registry, layouts, j, metrics.New(reg), reg, config)

	return &testEnv{server: server, handler: server.Handler(), journal: j, sender: sender}
}

func (e *testEnv) captureV2(t *testing.T, value int32, text string) ksuid.KSUID {
	t.Helper()
	record := make([]byte, 64)
	binary.LittleEndian.PutUint32(record[0:4], uint32(value))
	copy(record[4:44], text)
	copy(record[44:64], "extra")

	data, err := frame.Marshal(record, e.sender, 1)
	require.NoError(t, err)
	c, err := e.journal.Put(1, data)
	require.NoError(t, err)
	return c.ID
}

func (e *testEnv) get(t *testing.T, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) (T, APIResponse) {
	t.Helper()
	var raw struct {
		Success bool   `json:"success"`
		Data    T      `json:"data"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	return raw.Data, APIResponse{Success: raw.Success, Error: raw.Error}
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	w := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	data, resp := decodeEnvelope[map[string]string](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])
}

func TestListStreams(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	w := env.get(t, "/api/v1/streams")
	require.Equal(t, http.StatusOK, w.Code)

	streams, _ := decodeEnvelope[[]StreamInfo](t, w)
	require.Len(t, streams, 1)
	assert.Equal(t, "stream1", streams[0].Name)
	assert.Equal(t, 24, streams[0].RecordSize)
	require.Len(t, streams[0].Fields, 2)
	assert.Equal(t, FieldInfo{ID: 3, Name: "field3", Kind: render.KindString, Offset: 4, Size: 20}, streams[0].Fields[1])
}

func TestListCaptures(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})
	first := env.captureV2(t, 1, "a")
	env.captureV2(t, 2, "b")

	t.Run("by name", func(t *testing.T) {
		w := env.get(t, "/api/v1/streams/stream1/captures")
		require.Equal(t, http.StatusOK, w.Code)
		list, _ := decodeEnvelope[[]CaptureSummary](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, first, list[0].ID)
		assert.Equal(t, uint32(3), list[0].FieldCount)
		assert.Equal(t, frame.HeaderSize+3*frame.DescriptorSize+64, list[0].Size)
	})

	t.Run("by id with limit", func(t *testing.T) {
		w := env.get(t, "/api/v1/streams/1/captures?limit=1")
		require.Equal(t, http.StatusOK, w.Code)
		list, _ := decodeEnvelope[[]CaptureSummary](t, w)
		assert.Len(t, list, 1)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := env.get(t, "/api/v1/streams/stream1/captures?limit=zero")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown stream", func(t *testing.T) {
		w := env.get(t, "/api/v1/streams/nope/captures")
		assert.Equal(t, http.StatusNotFound, w.Code)
		_, resp := decodeEnvelope[any](t, w)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "nope")
	})
}

func TestGetCapture_DecodesWithLocalSchema(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})
	id := env.captureV2(t, 42, "hello")

	w := env.get(t, "/api/v1/streams/stream1/captures/"+id.String())
	require.Equal(t, http.StatusOK, w.Code)

	detail, resp := decodeEnvelope[CaptureDetail](t, w)
	require.True(t, resp.Success)
	assert.Equal(t, id, detail.ID)
	assert.Empty(t, detail.DecodeError)

	require.Len(t, detail.Transmitted, 3)
	assert.Equal(t, uint32(4), detail.Transmitted[2].ID)
	assert.Equal(t, uint16(40), detail.Transmitted[1].Size)

	require.Len(t, detail.Decoded, 2)
	assert.Equal(t, float64(42), detail.Decoded[0].Value)
	assert.Equal(t, "hello", detail.Decoded[1].Value)

	require.NotNil(t, detail.Report)
	assert.Equal(t, frame.Report{Received: 3, Matched: 2, Unknown: 1, Narrowed: 1}, *detail.Report)
}

func TestGetCapture_Errors(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	w := env.get(t, "/api/v1/streams/stream1/captures/not-a-ksuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.get(t, "/api/v1/streams/stream1/captures/"+ksuid.New().String())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIKey(t *testing.T) {
	env := setupTestServer(t, ServerConfig{APIKey: "test-key"})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"valid API key", "test-key", http.StatusOK},
		{"missing API key header", "", http.StatusUnauthorized},
		{"invalid API key", "wrong-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []string
			if tt.header != "" {
				headers = []string{"X-API-Key", tt.header}
			}
			w := env.get(t, "/api/v1/streams", headers...)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	// health and metrics stay open for probes and scrapers
	assert.Equal(t, http.StatusOK, env.get(t, "/health").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/metrics").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})
	id := env.captureV2(t, 7, "x")

	env.get(t, "/api/v1/streams/stream1/captures/"+id.String())

	w := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "driftframe_http_requests_total"))
	assert.True(t, strings.Contains(body, `driftframe_frames_decoded_total{status="ok",stream="stream1"} 1`))
}

func TestAddr(t *testing.T) {
	s := NewServer(schema.NewRegistry(), nil, nil, metrics.New(prometheus.NewRegistry()), prometheus.NewRegistry(),
		ServerConfig{Bind: "127.0.0.1", Port: 9300})
	assert.Equal(t, "127.0.0.1:9300", s.Addr())
}
