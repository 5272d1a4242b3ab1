package consent

import (
	"consent-manager/core/instance"
	"consent-manager/core/metrics"
	"consent-manager/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new consent feature.
func NewFeature(inst *instance.Instance, cfg instance.Config, backends store.Backends, m *metrics.Metrics, logger *zap.Logger, factories ...WatcherFactory) *Feature {
	svc := NewService(inst, cfg, backends, m, logger, factories...)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "consents"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
