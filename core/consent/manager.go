package consent

import (
	"context"
	"fmt"
	"maps"

	"consent-manager/core/catalog"
	"consent-manager/core/cookies"
	"consent-manager/core/reconcile"
	"consent-manager/core/store"

	"go.uber.org/zap"
)

// DefaultSaveType is the save event type used when none is given.
const DefaultSaveType = "script"

// Manager tracks the consent state of one visitor and reconciles a document
// and a cookie jar with it.
//
// A Manager is not safe for concurrent use. ApplyConsents is also not
// reentrant: a handler that calls back into the manager while a pass is
// running can duplicate or reorder the reported change counts.
type Manager struct {
	config     *catalog.Config
	store      store.Store
	aux        store.Store
	doc        *reconcile.Document
	jar        cookies.Jar
	hostname   string
	logger     *zap.Logger
	reconciler *reconcile.Reconciler

	consents      map[string]bool
	savedConsents map[string]bool
	confirmed     bool
	changed       bool

	// states holds the last applied activation per service.
	states       map[string]bool
	initialized  map[string]bool
	executedOnce map[string]bool

	watchers  []Watcher
	skipApply bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the primary store. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithAuxiliaryStore sets the store used for bookkeeping outside the consent
// blob. Defaults to an in-memory store.
func WithAuxiliaryStore(s store.Store) Option {
	return func(m *Manager) { m.aux = s }
}

// WithDocument sets the document reconciled on apply.
func WithDocument(doc *reconcile.Document) Option {
	return func(m *Manager) { m.doc = doc }
}

// WithJar sets the cookie jar purged on withdrawal.
func WithJar(jar cookies.Jar) Option {
	return func(m *Manager) { m.jar = jar }
}

// WithHostname sets the host used for dotted-domain cookie deletion.
func WithHostname(hostname string) Option {
	return func(m *Manager) { m.hostname = hostname }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithWatcher registers a watcher before the initial load and apply.
func WithWatcher(w Watcher) Option {
	return func(m *Manager) { m.Watch(w) }
}

// SkipInitialApply leaves the document untouched during construction.
func SkipInitialApply() Option {
	return func(m *Manager) { m.skipApply = true }
}

// New creates a manager: defaults are computed, the persisted blob is loaded
// over them and the result is applied.
func New(ctx context.Context, cfg *catalog.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("consent manager needs a catalog")
	}

	m := &Manager{
		config:       cfg,
		states:       make(map[string]bool),
		initialized:  make(map[string]bool),
		executedOnce: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = store.NewMemoryStore()
	}
	if m.aux == nil {
		m.aux = store.NewMemoryStore()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	m.reconciler = reconcile.New(m.logger)

	m.consents = m.DefaultConsents()
	if _, err := m.LoadConsents(ctx); err != nil {
		return nil, err
	}
	if !m.skipApply {
		if _, err := m.ApplyConsents(ctx, ApplyOptions{}); err != nil {
			return nil, err
		}
	}
	m.savedConsents = maps.Clone(m.consents)
	return m, nil
}

// Config returns the catalog.
func (m *Manager) Config() *catalog.Config {
	return m.config
}

// Store returns the primary store.
func (m *Manager) Store() store.Store {
	return m.store
}

// AuxiliaryStore returns the bookkeeping store.
func (m *Manager) AuxiliaryStore() store.Store {
	return m.aux
}

// Document returns the reconciled document, if any.
func (m *Manager) Document() *reconcile.Document {
	return m.doc
}

// GetService returns the first service with the given name.
func (m *Manager) GetService(name string) *catalog.Service {
	return m.config.Service(name)
}

// Confirmed reports whether the visitor made a complete, explicit decision.
func (m *Manager) Confirmed() bool {
	return m.confirmed
}

// Changed reports whether the catalog gained services since the blob was saved.
func (m *Manager) Changed() bool {
	return m.changed
}

// Consents returns a copy of the consent mapping.
func (m *Manager) Consents() map[string]bool {
	return maps.Clone(m.consents)
}

// States returns a copy of the activation states.
func (m *Manager) States() map[string]bool {
	return maps.Clone(m.states)
}
