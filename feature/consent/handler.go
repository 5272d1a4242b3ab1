package consent

import (
	"strconv"
	"time"

	"consent-manager/core/consent"
	"consent-manager/core/logger"
	"consent-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderChanged carries the number of services changed by a render.
const HeaderChanged = "X-Consent-Changed"

// State is the consent view returned by the API.
type State struct {
	Visitor   string          `json:"visitor,omitempty"`
	Consents  map[string]bool `json:"consents"`
	Confirmed bool            `json:"confirmed"`
	Changed   bool            `json:"changed"`
	// Applied is the number of services whose activation changed, if any ran.
	Applied int `json:"applied,omitempty"`
}

// UpdateRequest is the body of a single consent update.
type UpdateRequest struct {
	Consent any `json:"consent"`
}

// SaveRequest is the optional body of a save: consents to set first.
type SaveRequest struct {
	Consents map[string]any `json:"consents"`
}

// Handler handles HTTP requests for consents.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the consent routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/consents")
	group.Get("/", h.HandleGetConsents)
	group.Get("/plan", h.HandlePlan)
	group.Put("/:service", h.HandleUpdateConsent)
	group.Post("/accept-all", h.HandleAcceptAll)
	group.Post("/decline-all", h.HandleDeclineAll)
	group.Post("/save", h.HandleSave)
	group.Post("/render", h.HandleRender)
	group.Delete("/", h.HandleReset)
}

func (h *Handler) fail(c *fiber.Ctx, status int, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Debug(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func state(s *Session, applied int) State {
	return State{
		Visitor:   s.Visitor,
		Consents:  s.Manager.Consents(),
		Confirmed: s.Manager.Confirmed(),
		Changed:   s.Manager.Changed(),
		Applied:   applied,
	}
}

// HandleGetConsents returns the visitor's current consents.
// @Summary Get Consents
// @Description Get the consent mapping of the current visitor.
// @Tags consents
// @Produce json
// @Success 200 {object} State "Consent state"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents [get]
func (h *Handler) HandleGetConsents(c *fiber.Ctx) error {
	s, err := h.service.Open(c.Context(), c)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	return c.JSON(state(s, 0))
}

// HandlePlan returns the per-service decisions without applying them.
// @Summary Plan Consents
// @Description Compute the consent decision of every service without side effects.
// @Tags consents
// @Produce json
// @Param service query string false "Limit the plan to one service"
// @Success 200 {array} consent.Decision "Decisions"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	s, err := h.service.Open(c.Context(), c, consent.SkipInitialApply())
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	return c.JSON(s.Manager.Plan(consent.ApplyOptions{Service: c.Query("service")}))
}

// HandleUpdateConsent sets the consent of one service, then saves and
// applies with the "save" event type.
// @Summary Update Consent
// @Description Set the consent of a single service and save the decision.
// @Tags consents
// @Accept json
// @Produce json
// @Param service path string true "Service name"
// @Param request body UpdateRequest true "Consent value (bool, 0/1 or true/false string)"
// @Success 200 {object} State "Consent state"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown service"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/{service} [put]
func (h *Handler) HandleUpdateConsent(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fiber.StatusBadRequest, "Invalid consent body", err)
	}
	value, ok := utils.ParseBool(req.Consent)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "consent must be a boolean",
		})
	}

	s, err := h.service.Open(c.Context(), c)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	name := c.Params("service")
	if s.Manager.GetService(name) == nil {
		return unknownService(c, name)
	}
	s.Manager.UpdateConsent(name, value)
	applied, err := s.Manager.SaveAndApplyConsents(c.Context(), "save")
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to save consents", err)
	}
	return c.JSON(state(s, applied))
}

func unknownService(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "unknown service: " + name,
	})
}

// HandleAcceptAll accepts every service, saves and applies.
// @Summary Accept All
// @Description Accept every service and save the decision.
// @Tags consents
// @Produce json
// @Success 200 {object} State "Consent state"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/accept-all [post]
func (h *Handler) HandleAcceptAll(c *fiber.Ctx) error {
	return h.changeAll(c, true, "accept")
}

// HandleDeclineAll declines every optional service, saves and applies.
// @Summary Decline All
// @Description Decline every non-required service and save the decision.
// @Tags consents
// @Produce json
// @Success 200 {object} State "Consent state"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/decline-all [post]
func (h *Handler) HandleDeclineAll(c *fiber.Ctx) error {
	return h.changeAll(c, false, "decline")
}

func (h *Handler) changeAll(c *fiber.Ctx, value bool, eventType string) error {
	s, err := h.service.Open(c.Context(), c)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	s.Manager.ChangeAll(value)
	applied, err := s.Manager.SaveAndApplyConsents(c.Context(), eventType)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to save consents", err)
	}
	return c.JSON(state(s, applied))
}

// HandleSave sets the consents of the optional body, then saves and applies
// with the given event type.
// @Summary Save Consents
// @Description Save the consent mapping and apply it.
// @Tags consents
// @Accept json
// @Produce json
// @Param type query string false "Save event type (default script)"
// @Param request body SaveRequest false "Consents to set before saving"
// @Success 200 {object} State "Consent state"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown service"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/save [post]
func (h *Handler) HandleSave(c *fiber.Ctx) error {
	var req SaveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, fiber.StatusBadRequest, "Invalid save body", err)
		}
	}
	values := make(map[string]bool, len(req.Consents))
	for name, raw := range req.Consents {
		value, ok := utils.ParseBool(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "consent of " + name + " must be a boolean",
			})
		}
		values[name] = value
	}

	s, err := h.service.Open(c.Context(), c)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	for name, value := range values {
		if s.Manager.GetService(name) == nil {
			return unknownService(c, name)
		}
		s.Manager.UpdateConsent(name, value)
	}
	applied, err := s.Manager.SaveAndApplyConsents(c.Context(), c.Query("type", consent.DefaultSaveType))
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to save consents", err)
	}
	return c.JSON(state(s, applied))
}

// HandleReset forgets the visitor's decision.
// @Summary Reset Consents
// @Description Delete the stored decision and return to the defaults.
// @Tags consents
// @Produce json
// @Success 200 {object} State "Consent state"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents [delete]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	s, err := h.service.Open(c.Context(), c)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to open consent session", err)
	}
	if err := s.Manager.ResetConsents(c.Context()); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Failed to reset consents", err)
	}
	return c.JSON(state(s, 0))
}

// HandleRender reconciles the posted HTML with the visitor's consents.
// @Summary Render Document
// @Description Apply the visitor's consents to an HTML document.
// @Tags consents
// @Accept html
// @Produce html
// @Param dry_run query bool false "Only count the changes"
// @Param service query string false "Limit the pass to one service"
// @Success 200 {string} string "Rendered document"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consents/render [post]
func (h *Handler) HandleRender(c *fiber.Ctx) error {
	start := time.Now()
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "empty document",
		})
	}

	opts := consent.ApplyOptions{
		DryRun:  utils.ToBool(c.Query("dry_run")),
		Service: c.Query("service"),
	}
	out, changed, err := h.service.Render(c.Context(), c, body, opts)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, "Render failed", err)
	}
	if h.service.metrics != nil {
		h.service.metrics.ObserveRender(start)
	}

	c.Set(HeaderChanged, strconv.Itoa(changed))
	c.Type("html")
	return c.SendString(out)
}
