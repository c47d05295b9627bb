package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/service"
	"github.com/verdantlab/ecoquest-api/internal/utils"
)

// StudentHandler serves the student dashboard, task feed, and ledger endpoints.
type StudentHandler struct {
	profile service.StudentProfileService
	reviews service.ReviewService
	logger  zerolog.Logger
}

// NewStudentHandler builds a student handler instance.
func NewStudentHandler(profile service.StudentProfileService, reviews service.ReviewService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		profile: profile,
		reviews: reviews,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/tasks", h.tasks)
	router.Get("/ledger", h.ledger)
}

func (h *StudentHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.profile.Dashboard(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *StudentHandler) tasks(c *fiber.Ctx) error {
	feed, err := h.profile.TaskFeed(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "task feed retrieved", feed)
}

func (h *StudentHandler) ledger(c *fiber.Ctx) error {
	entries, err := h.reviews.Ledger(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "point ledger retrieved", entries)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	default:
		h.logger.Error().Err(err).Msg("student query failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "student query failed")
	}
}
