package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/service"
	"github.com/verdantlab/ecoquest-api/internal/utils"
)

// SchoolHandler manages directory endpoints.
type SchoolHandler struct {
	service service.SchoolService
	logger  zerolog.Logger
}

// NewSchoolHandler builds a school handler instance.
func NewSchoolHandler(service service.SchoolService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		service: service,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SchoolHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/cities", h.cities)
	router.Get("/states", h.states)
	router.Get("/:id", h.get)
	router.Post("", h.create)
}

func (h *SchoolHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := dto.SchoolFilter{
		City:   c.Query("city"),
		State:  c.Query("state"),
		Search: c.Query("search"),
		Limit:  limit,
	}

	schools, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "schools retrieved", schools)
}

func (h *SchoolHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	school, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "school retrieved", school)
}

func (h *SchoolHandler) create(c *fiber.Ctx) error {
	var payload dto.SchoolCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	school, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "school created", school)
}

func (h *SchoolHandler) cities(c *fiber.Ctx) error {
	cities, err := h.service.Cities(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cities retrieved", cities)
}

func (h *SchoolHandler) states(c *fiber.Ctx) error {
	states, err := h.service.States(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "states retrieved", states)
}

func (h *SchoolHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "school not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("school operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "school operation failed")
	}
}
