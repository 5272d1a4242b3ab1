package receipts

import (
	"context"

	"consent-manager/core/consent"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	db      *gorm.DB
	service *Service
	handler *Handler
	logger  *zap.Logger
}

// NewFeature creates a new receipts feature. It is disabled without a database.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	svc := NewService(db, logger)
	return &Feature{db: db, service: svc, handler: NewHandler(svc), logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "receipts"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load migrates the receipts table and registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.repo.Migrate(context.Background()); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}

// Watcher returns a recorder for the visitor of a request. Its signature
// matches the consent feature's watcher factories.
func (f *Feature) Watcher(c *fiber.Ctx, visitor string) consent.Watcher {
	return NewRecorder(f.service.repo, visitor, c.Hostname(), f.logger)
}
