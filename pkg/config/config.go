/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

const (
	BackendJournal = "journal"
	BackendPebble  = "pebble"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the driftframe configuration
type Config struct {
	DataDir string   `yaml:"data_dir"`
	Backend string   `yaml:"backend"`
	Port    int      `yaml:"port"`
	Bind    string   `yaml:"bind"`
	APIKey  string   `yaml:"api_key,omitempty"`
	Logging Logging  `yaml:"logging"`
	Journal Journal  `yaml:"journal"`
	Streams []Stream `yaml:"streams"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Journal tunes the file capture backend
type Journal struct {
	FsyncInterval time.Duration `yaml:"fsync_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// Stream declares one stream id and the record layout it carries
type Stream struct {
	Name       string  `yaml:"name"`
	ID         uint32  `yaml:"id"`
	RecordSize int     `yaml:"record_size"`
	Fields     []Field `yaml:"fields"`
}

// Field declares one field of a stream's record
type Field struct {
	ID     uint32      `yaml:"id"`
	Name   string      `yaml:"name"`
	Kind   render.Kind `yaml:"kind"`
	Offset uint16      `yaml:"offset"`
	Size   uint16      `yaml:"size"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Backend: BackendJournal,
		Port:    9300,
		Bind:    "127.0.0.1",
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Journal: Journal{
			BufferSize: 64 * 1024,
		},
		Streams: []Stream{
			{
				Name:       "stream1",
				ID:         1,
				RecordSize: 24,
				Fields: []Field{
					{ID: 1, Name: "field1", Kind: render.KindInt32, Offset: 0, Size: 4},
					{ID: 3, Name: "field3", Kind: render.KindString, Offset: 4, Size: 20},
				},
			},
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Streams = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./driftframe.yaml"
	}

	configDir := filepath.Join(homeDir, ".config", "driftframe")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// JournalPath is where the journal backend keeps its file
func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, "captures.journal")
}

// PebbleDir is where the pebble backend keeps its database
func (c *Config) PebbleDir() string {
	return filepath.Join(c.DataDir, "captures")
}

// Validate checks settings and every declared stream.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	}
	if c.Backend != BackendJournal && c.Backend != BackendPebble {
		return fmt.Errorf("%w: backend %q (want %s or %s)", ErrInvalidConfig, c.Backend, BackendJournal, BackendPebble)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Journal.BufferSize < 0 || c.Journal.FsyncInterval < 0 {
		return fmt.Errorf("%w: journal settings must not be negative", ErrInvalidConfig)
	}

	_, err := c.Registry()
	return err
}

// Registry builds the schema registry for the declared streams
func (c *Config) Registry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, st := range c.Streams {
		if st.Name == "" {
			return nil, fmt.Errorf("%w: stream %d has no name", ErrInvalidConfig, st.ID)
		}

		b := schema.NewBuilder(st.RecordSize)
		names := make(map[string]struct{}, len(st.Fields))
		for _, f := range st.Fields {
			if !f.Kind.Valid() {
				return nil, fmt.Errorf("%w: stream %s field %d: unknown kind %q", ErrInvalidConfig, st.Name, f.ID, f.Kind)
			}
			if w := f.Kind.Width(); w > 0 && int(f.Size) != w {
				return nil, fmt.Errorf("%w: stream %s field %d: %s is %d bytes, size is %d",
					ErrInvalidConfig, st.Name, f.ID, f.Kind, w, f.Size)
			}
			if f.Name != "" {
				if _, dup := names[f.Name]; dup {
					return nil, fmt.Errorf("%w: stream %s: duplicate field name %q", ErrInvalidConfig, st.Name, f.Name)
				}
				names[f.Name] = struct{}{}
			}
			b.Field(f.ID, f.Offset, f.Size)
		}

		s, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", st.Name, err)
		}
		if err := reg.Register(schema.Stream{Name: st.Name, ID: st.ID, Schema: s}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Layouts returns the field labels of every declared stream, keyed by stream id
func (c *Config) Layouts() map[uint32]render.Layout {
	out := make(map[uint32]render.Layout, len(c.Streams))
	for _, st := range c.Streams {
		l := render.Layout{Stream: st.Name, Fields: make([]render.Field, 0, len(st.Fields))}
		for _, f := range st.Fields {
			l.Fields = append(l.Fields, render.Field{ID: f.ID, Name: f.Name, Kind: f.Kind})
		}
		out[st.ID] = l
	}
	return out
}
