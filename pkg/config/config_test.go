package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./data", config.DataDir)
	assert.Equal(t, BackendJournal, config.Backend)
	assert.Equal(t, 9300, config.Port)
	assert.Equal(t, "127.0.0.1", config.Bind)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.Equal(t, 65536, config.Journal.BufferSize)
	require.Len(t, config.Streams, 1)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		expected := DefaultConfig()
		expected.DataDir = "/custom/data"
		expected.Backend = BackendPebble
		expected.Journal.FsyncInterval = 250 * time.Millisecond

		require.NoError(t, SaveConfig(expected, configPath))

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expected, loaded)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		yamlText := `
data_dir: /srv/frames
journal:
  fsync_interval: 2s
streams:
  - name: sensors
    id: 9
    record_size: 8
    fields:
      - {id: 1, name: temp, kind: float32, offset: 0, size: 4}
      - {id: 2, name: count, kind: uint32, offset: 4, size: 4}
`
		require.NoError(t, os.WriteFile(configPath, []byte(yamlText), 0600))

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "/srv/frames", loaded.DataDir)
		assert.Equal(t, 9300, loaded.Port)
		assert.Equal(t, BackendJournal, loaded.Backend)
		assert.Equal(t, 2*time.Second, loaded.Journal.FsyncInterval)
		assert.Equal(t, 65536, loaded.Journal.BufferSize)
		require.Len(t, loaded.Streams, 1)
		assert.Equal(t, "sensors", loaded.Streams[0].Name)
		assert.NoError(t, loaded.Validate())
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("port: [not"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSaveConfig_Permissions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(DefaultConfig(), configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.True(t, ConfigExists(configPath))
	assert.False(t, ConfigExists(configPath+".missing"))
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Contains(t, path, "driftframe")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"bad backend", func(c *Config) { c.Backend = "sqlite" }, ErrInvalidConfig},
		{"bad port", func(c *Config) { c.Port = 70000 }, ErrInvalidConfig},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidConfig},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidConfig},
		{"no data dir", func(c *Config) { c.DataDir = "" }, ErrInvalidConfig},
		{"unknown kind", func(c *Config) { c.Streams[0].Fields[0].Kind = "decimal" }, ErrInvalidConfig},
		{"kind width", func(c *Config) { c.Streams[0].Fields[0].Size = 2 }, ErrInvalidConfig},
		{"duplicate field id", func(c *Config) { c.Streams[0].Fields[1].ID = 1 }, schema.ErrDuplicateFieldID},
		{"field out of bounds", func(c *Config) { c.Streams[0].RecordSize = 20 }, schema.ErrDescriptorOutOfBounds},
		{"duplicate stream", func(c *Config) {
			c.Streams = append(c.Streams, Stream{Name: "other", ID: c.Streams[0].ID})
		}, schema.ErrDuplicateStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestRegistryAndLayouts(t *testing.T) {
	c := DefaultConfig()

	reg, err := c.Registry()
	require.NoError(t, err)
	st, err := reg.ByName("stream1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), st.ID)
	assert.Equal(t, 24, st.Schema.RecordSize())
	d, ok := st.Schema.Find(3)
	require.True(t, ok)
	assert.Equal(t, schema.FieldDescriptor{ID: 3, Offset: 4, Size: 20}, d)

	layouts := c.Layouts()
	l, ok := layouts[1]
	require.True(t, ok)
	assert.Equal(t, "stream1", l.Stream)
	f, ok := l.Field(3)
	require.True(t, ok)
	assert.Equal(t, render.KindString, f.Kind)
}
