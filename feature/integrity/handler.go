package integrity

import (
	"errors"

	"consent-manager/core/logger"
	"consent-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/catalog", h.HandleCatalogCheck)
	group.Get("/database", h.HandleDatabaseCheck)
	group.Get("/redis", h.HandleRedisCheck)
}

// HandleIntegrityCheck runs every check.
// @Summary Run All Integrity Checks
// @Description Runs the structure, catalog, database and redis checks in parallel. Unconfigured backends are reported as skipped.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.CheckAll(c.Context())
	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes the bucket layout.
// @Summary Check Structure
// @Description Checks that the catalog and consent prefixes exist in the bucket. Optionally creates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	missing, err := h.service.CheckStructure(c.Context())
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "object storage not configured"})
	}
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleCatalogCheck loads and validates a catalog.
// @Summary Check Catalog
// @Description Loads a catalog from the configured source and validates it.
// @Tags integrity
// @Produce json
// @Param name query string false "Catalog name (defaults to the configured one)"
// @Success 200 {object} checks.CatalogReport "Catalog Report"
// @Failure 422 {object} checks.CatalogReport "Invalid or missing catalog"
// @Router /integrity/catalog [get]
func (h *Handler) HandleCatalogCheck(c *fiber.Ctx) error {
	report := h.service.CheckCatalog(c.Context(), c.Query("name"))
	if report.Status != "ok" {
		logger.WithRayID(h.service.logger, c).Warn("Catalog check failed",
			zap.String("name", report.Name), zap.String("error", report.Error))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(report)
	}
	return c.JSON(report)
}

// HandleDatabaseCheck checks the consent table schemas.
// @Summary Check Database Schema
// @Description Checks that the consent tables match their models.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.DatabaseReport "Database Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Database not configured"
// @Router /integrity/database [get]
func (h *Handler) HandleDatabaseCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckDatabase()
	if errors.Is(err, ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "database not configured"})
	}
	if err != nil {
		l.Error("Database schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleRedisCheck pings the session store.
// @Summary Check Redis
// @Description Pings the Redis session store.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]string "ok"
// @Failure 503 {object} map[string]string "Unavailable"
// @Router /integrity/redis [get]
func (h *Handler) HandleRedisCheck(c *fiber.Ctx) error {
	if err := h.service.CheckRedis(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(status(err))
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

