package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Debug().Uint32("stream_id", 7).Msg("captured")
	assert.Contains(t, buf.String(), `"stream_id":7`)
	assert.Contains(t, buf.String(), `"message":"captured"`)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "WARN", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	require.NoError(t, err)

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}
