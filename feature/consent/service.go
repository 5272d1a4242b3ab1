package consent

import (
	"context"
	"fmt"
	"strings"

	"consent-manager/core/consent"
	"consent-manager/core/cookies"
	"consent-manager/core/instance"
	"consent-manager/core/metrics"
	"consent-manager/core/reconcile"
	"consent-manager/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// visitorCookieDays is the lifetime of the visitor id cookie.
const visitorCookieDays = 365

// WatcherFactory builds a watcher for one request.
type WatcherFactory func(c *fiber.Ctx, visitor string) consent.Watcher

// Service opens consent managers for HTTP requests.
type Service struct {
	instance  *instance.Instance
	cfg       instance.Config
	backends  store.Backends
	metrics   *metrics.Metrics
	factories []WatcherFactory
	logger    *zap.Logger
}

// NewService creates a service. The backends carry the key-value handles;
// the cookie jar is built per request. Metrics may be nil.
func NewService(inst *instance.Instance, cfg instance.Config, backends store.Backends, m *metrics.Metrics, logger *zap.Logger, factories ...WatcherFactory) *Service {
	return &Service{
		instance:  inst,
		cfg:       cfg,
		backends:  backends,
		metrics:   m,
		factories: factories,
		logger:    logger,
	}
}

// Session is a manager bound to a request.
type Session struct {
	Manager *consent.Manager
	Visitor string
}

// Open builds the manager for a request: the configured store is keyed by
// the visitor, the request cookies form the jar, and the registered watchers
// are attached before the initial load.
func (s *Service) Open(ctx context.Context, c *fiber.Ctx, opts ...consent.Option) (*Session, error) {
	method, err := store.ParseMethod(s.cfg.Store.Method)
	if err != nil {
		return nil, err
	}

	jar := newFiberJar(c)

	var visitor string
	if method != store.MethodCookie && method != store.MethodMemory {
		visitor = s.visitorID(jar)
	}
	key := s.cfg.Store.Key(visitor)

	backends := s.backends
	backends.Jar = jar
	st, err := store.New(method, backends, s.cfg.Store.Options(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open consent store: %w", err)
	}

	var aux store.Store = store.NewMemoryStore()
	if s.backends.Session != nil {
		aux = store.NewKeyValueStore(s.backends.Session, key+store.MetaSuffix)
	}

	all := []consent.Option{
		consent.WithStore(st),
		consent.WithAuxiliaryStore(aux),
		consent.WithJar(jar),
		consent.WithHostname(s.hostname(c)),
		consent.WithLogger(s.logger),
	}
	if s.metrics != nil {
		all = append(all, consent.WithWatcher(s.metrics))
	}
	for _, f := range s.factories {
		all = append(all, consent.WithWatcher(f(c, visitor)))
	}
	all = append(all, opts...)

	m, err := s.instance.NewManager(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Session{Manager: m, Visitor: visitor}, nil
}

// visitorID reads the visitor cookie, minting a new id when it is missing.
func (s *Service) visitorID(jar cookies.Jar) string {
	name := s.cfg.VisitorCookie
	if name == "" {
		name = "consent_visitor"
	}
	if c, ok := cookies.Get(jar, name); ok && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	cookies.Set(jar, name, id, visitorCookieDays, s.cfg.Store.CookieDomain, s.cfg.Store.CookiePath)
	return id
}

func (s *Service) hostname(c *fiber.Ctx) string {
	if s.cfg.Hostname != "" {
		return s.cfg.Hostname
	}
	host := c.Hostname()
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}

// Render reconciles an HTML document with the visitor's consents and returns
// the rendered document and the changed count.
func (s *Service) Render(ctx context.Context, c *fiber.Ctx, html []byte, opts consent.ApplyOptions) (string, int, error) {
	doc, err := reconcile.ParseString(string(html))
	if err != nil {
		return "", 0, err
	}

	session, err := s.Open(ctx, c, consent.WithDocument(doc), consent.SkipInitialApply())
	if err != nil {
		return "", 0, err
	}

	changed, err := session.Manager.ApplyConsents(ctx, opts)
	if err != nil {
		return "", 0, err
	}
	return doc.String(), changed, nil
}
