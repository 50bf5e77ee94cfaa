package herdgate

import (
	"errors"

	"github.com/herdtrack/herdgate/credstore"
)

// Builder assembles an [Engine]. Builder instances are single-use: Build
// returns an error when called twice.
type Builder struct {
	config Config

	creds credstore.Store
	api   AuthAPI

	eventSink EventSink

	built bool
}

// New creates a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder configuration with a deep copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCredentialStore sets the credential store the engine persists the
// bearer token through. Required.
func (b *Builder) WithCredentialStore(store credstore.Store) *Builder {
	b.creds = store
	return b
}

// WithAPIClient sets the backend client used for the credential exchange,
// profile fetch, and registration calls. Required.
func (b *Builder) WithAPIClient(api AuthAPI) *Builder {
	b.api = api
	return b
}

// WithEventSink sets the sink that receives session lifecycle events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithTokenPreflight toggles the unverified expiry peek during Bootstrap.
func (b *Builder) WithTokenPreflight(enabled bool) *Builder {
	b.config.Session.TokenPreflight = enabled
	return b
}

// Build validates the configuration and collaborators and returns an
// immutable [Engine] in the logged-out, loading state. The caller is expected
// to invoke [Engine.Bootstrap] exactly once before gating any route.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.creds == nil {
		return nil, errors.New("credential store required")
	}

	if b.api == nil {
		return nil, errors.New("api client required")
	}

	engine := &Engine{
		config: cfg,
		creds:  b.creds,
		api:    b.api,
	}

	// Before bootstrap resolves, every guard must see loading=true so no
	// protected content can flash for an unverified visitor.
	engine.loading = true

	engine.events = newEventDispatcher(cfg.Events, b.eventSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
