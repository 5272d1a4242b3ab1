package receipts

import (
	"consent-manager/core/logger"
	"consent-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for receipts.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the receipt routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/receipts")
	group.Get("/", h.HandleListReceipts)
}

// HandleListReceipts returns the newest consent receipts.
// @Summary List Receipts
// @Description List stored consent receipts, newest first.
// @Tags receipts
// @Produce json
// @Param visitor query string false "Only receipts of this visitor"
// @Param limit query int false "Page size (default 50, max 500)"
// @Success 200 {array} View "Receipts"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /receipts [get]
func (h *Handler) HandleListReceipts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := utils.ToInt(c.Query("limit"), DefaultLimit)
	views, err := h.service.List(c.Context(), c.Query("visitor"), limit)
	if err != nil {
		l.Error("Failed to list receipts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(views)
}
