package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/service"
	"github.com/verdantlab/ecoquest-api/internal/utils"
)

// LeaderboardHandler serves the ranked standings endpoints.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler builds a leaderboard handler instance.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("", h.index)
	router.Get("/schools", h.schools)
	router.Get("/students", h.students)
}

// index dispatches on the scope query parameter and defaults to the
// school standings.
func (h *LeaderboardHandler) index(c *fiber.Ctx) error {
	switch c.Query("scope") {
	case "student":
		return h.students(c)
	case "school", "":
		return h.schools(c)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "scope must be school or student")
	}
}

func (h *LeaderboardHandler) schools(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.Schools(c.Context(), limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "school leaderboard retrieved", entries)
}

func (h *LeaderboardHandler) students(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	schoolID, err := parseQueryUint(c, "school_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	query := dto.LeaderboardQuery{
		SchoolID:  schoolID,
		ClassName: c.Query("class_name"),
		Limit:     limit,
	}

	entries, err := h.service.Students(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student leaderboard retrieved", entries)
}

func (h *LeaderboardHandler) handleError(c *fiber.Ctx, err error) error {
	if isValidationError(err) {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	h.logger.Error().Err(err).Msg("leaderboard query failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "leaderboard query failed")
}
