package instance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"consent-manager/core/catalog"
	"consent-manager/core/consent"
	"consent-manager/core/events"

	"go.uber.org/zap"
)

const (
	// EventConfigsLoaded fires with the catalog before it is installed. A
	// handler returning events.Preempt keeps it from being installed.
	EventConfigsLoaded = "configs_loaded"
	// EventConfigsFailed fires with the error when a source load fails.
	EventConfigsFailed = "configs_failed"

	// DefaultConfigName is loaded when no name is given.
	DefaultConfigName = "default"
)

// ErrNotInitialized is returned when no catalog has been installed yet.
var ErrNotInitialized = errors.New("consent instance not initialized")

// Instance owns the active catalog and the event registry around it.
type Instance struct {
	mu     sync.RWMutex
	config *catalog.Config

	source Source
	events *events.Registry
	logger *zap.Logger
}

// New creates an instance. The source may be nil when catalogs are only
// installed directly.
func New(source Source, registry *events.Registry, logger *zap.Logger) *Instance {
	if registry == nil {
		registry = events.NewRegistry(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instance{source: source, events: registry, logger: logger}
}

// On registers an event handler, replaying past firings.
func (i *Instance) On(kind string, h events.Handler) {
	i.events.On(kind, h)
}

// Events returns the registry.
func (i *Instance) Events() *events.Registry {
	return i.events
}

// Config returns the active catalog, or nil.
func (i *Instance) Config() *catalog.Config {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.config
}

func (i *Instance) install(cfg *catalog.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	i.mu.Lock()
	i.config = cfg
	i.mu.Unlock()
	i.logger.Info("Catalog installed",
		zap.String("id", cfg.ID),
		zap.Int("services", len(cfg.Services)),
	)
	return nil
}

// InitializeWithConfig installs a catalog.
func (i *Instance) InitializeWithConfig(cfg *catalog.Config) error {
	return i.install(cfg)
}

// InitializeWithAPI announces a catalog received from a remote collaborator
// and installs it unless a handler preempts. It reports whether the catalog
// was installed.
func (i *Instance) InitializeWithAPI(cfg *catalog.Config) (bool, error) {
	if i.events.Fire(EventConfigsLoaded, cfg) {
		i.logger.Debug("Catalog installation preempted")
		return false, nil
	}
	if err := i.install(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// InitializeFromSource loads a named catalog from the source and hands it to
// InitializeWithAPI. Failures fire EventConfigsFailed.
func (i *Instance) InitializeFromSource(ctx context.Context, name string) (bool, error) {
	if i.source == nil {
		return false, fmt.Errorf("no catalog source configured")
	}
	if name == "" {
		name = DefaultConfigName
	}

	cfg, err := i.source.Load(ctx, name)
	if err != nil {
		i.logger.Error("Cannot load catalog", zap.String("name", name), zap.Error(err))
		i.events.Fire(EventConfigsFailed, err)
		return false, err
	}
	return i.InitializeWithAPI(cfg)
}

// NewManager builds a consent manager over the active catalog.
func (i *Instance) NewManager(ctx context.Context, opts ...consent.Option) (*consent.Manager, error) {
	cfg := i.Config()
	if cfg == nil {
		return nil, ErrNotInitialized
	}
	return consent.New(ctx, cfg, opts...)
}
