package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/verdantlab/ecoquest-api/internal/config"
	"github.com/verdantlab/ecoquest-api/internal/handler"
	"github.com/verdantlab/ecoquest-api/internal/middleware"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	SchoolHandler      *handler.SchoolHandler
	ChallengeHandler   *handler.ChallengeHandler
	SubmissionHandler  *handler.SubmissionHandler
	LeaderboardHandler *handler.LeaderboardHandler
	StudentHandler     *handler.StudentHandler
	AssignmentHandler  *handler.AssignmentHandler
	CoachHandler       *handler.CoachHandler
	ActivityHandler    *handler.ActivityHandler
	SeedHandler        *handler.SeedHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.SchoolHandler != nil {
		schools := api.Group("/schools")
		deps.SchoolHandler.Register(schools)
	}

	if deps.ChallengeHandler != nil {
		challenges := api.Group("/challenges")
		deps.ChallengeHandler.RegisterPublic(challenges)

		admin := api.Group("/challenges", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ChallengeHandler.RegisterAdmin(admin)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)

		review := api.Group("/submissions", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.SubmissionHandler.RegisterReview(review)
	}

	if deps.LeaderboardHandler != nil {
		leaderboard := api.Group("/leaderboard")
		deps.LeaderboardHandler.Register(leaderboard)
	}

	if deps.StudentHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.StudentHandler.Register(student)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.CoachHandler != nil {
		coach := api.Group("/coach", jwtMiddleware, middleware.RateLimit("coach", 60, time.Minute))
		deps.CoachHandler.Register(coach)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(activity)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
