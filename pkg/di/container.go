// Package di provides dependency injection container
package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/ssargent/driftframe/pkg/api"
	"github.com/ssargent/driftframe/pkg/capture"
	"github.com/ssargent/driftframe/pkg/config"
	"github.com/ssargent/driftframe/pkg/journal"
	"github.com/ssargent/driftframe/pkg/metrics"
	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

// BackendFactory opens the capture backend a configuration names
type BackendFactory interface {
	OpenBackend(cfg *config.Config, log *zerolog.Logger) (capture.Backend, error)
}

// DefaultBackendFactory opens the journal or pebble backend
type DefaultBackendFactory struct{}

// OpenBackend opens the configured backend under cfg.DataDir
func (DefaultBackendFactory) OpenBackend(cfg *config.Config, log *zerolog.Logger) (capture.Backend, error) {
	switch cfg.Backend {
	case config.BackendJournal, "":
		return journal.Open(journal.Config{
			FilePath:      cfg.JournalPath(),
			FsyncInterval: cfg.Journal.FsyncInterval,
			BufferSize:    cfg.Journal.BufferSize,
			Logger:        log,
		})
	case config.BackendPebble:
		return capture.Open(cfg.PebbleDir())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Container holds all the dependencies for the application
type Container struct {
	config         *config.Config
	log            zerolog.Logger
	registry       *schema.Registry
	layouts        map[uint32]render.Layout
	promRegistry   *prometheus.Registry
	metrics        *metrics.Metrics
	backendFactory BackendFactory
}

// NewContainer validates cfg and builds the shared dependencies
func NewContainer(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Container{
		config:         cfg,
		log:            log,
		registry:       registry,
		layouts:        cfg.Layouts(),
		promRegistry:   promRegistry,
		metrics:        metrics.New(promRegistry),
		backendFactory: DefaultBackendFactory{},
	}, nil
}

// Config returns the configuration the container was built from
func (c *Container) Config() *config.Config { return c.config }

// Logger returns the root logger
func (c *Container) Logger() zerolog.Logger { return c.log }

// Registry returns the stream registry
func (c *Container) Registry() *schema.Registry { return c.registry }

// Layouts returns field labels keyed by stream id
func (c *Container) Layouts() map[uint32]render.Layout { return c.layouts }

// Metrics returns the instrumentation
func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

// Gatherer returns the Prometheus registry backing /metrics
func (c *Container) Gatherer() prometheus.Gatherer { return c.promRegistry }

// SetBackendFactory allows overriding the backend factory (for testing)
func (c *Container) SetBackendFactory(factory BackendFactory) {
	c.backendFactory = factory
}

// OpenBackend opens the configured capture backend, counting every Put.
func (c *Container) OpenBackend() (capture.Backend, error) {
	backend, err := c.backendFactory.OpenBackend(c.config, &c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", c.config.Backend, err)
	}
	c.log.Debug().Str("backend", c.config.Backend).Str("data_dir", c.config.DataDir).Msg("capture backend opened")
	return &instrumentedBackend{Backend: backend, name: c.config.Backend, metrics: c.metrics}, nil
}

// NewServer builds the inspection API over source
func (c *Container) NewServer(source capture.Source) *api.Server {
	return api.NewServer(c.registry, c.layouts, source, c.metrics, c.promRegistry, api.ServerConfig{
		Bind:   c.config.Bind,
		Port:   c.config.Port,
		APIKey: c.config.APIKey,
		Logger: &c.log,
	})
}

type instrumentedBackend struct {
	capture.Backend
	name    string
	metrics *metrics.Metrics
}

func (b *instrumentedBackend) Put(streamID uint32, frame []byte) (capture.Capture, error) {
	c, err := b.Backend.Put(streamID, frame)
	b.metrics.RecordCapture(b.name, err)
	return c, err
}
