package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/config"
	"github.com/verdantlab/ecoquest-api/internal/database"
	"github.com/verdantlab/ecoquest-api/internal/handler"
	"github.com/verdantlab/ecoquest-api/internal/middleware"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
	"github.com/verdantlab/ecoquest-api/internal/router"
	"github.com/verdantlab/ecoquest-api/internal/service"
	"github.com/verdantlab/ecoquest-api/pkg/ai"
	cloud "github.com/verdantlab/ecoquest-api/pkg/cloudinary"
	"github.com/verdantlab/ecoquest-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Challenge{},
		&models.Submission{},
		&models.PointLedgerEntry{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Assignment{},
		&models.ActivityLog{},
		&models.CoachMessage{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, coach fanout runs single-node")
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var analyzer ai.Analyzer
	var coach ai.Coach
	if cfg.OpenAIAPIKey != "" {
		client, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}
		analyzer = client
		coach = client
	} else {
		logger.Warn().Msg("openai key missing, submissions get no advisory analysis")
	}

	var notifier service.ReviewNotifier
	if cfg.MailEnabled() {
		mail, err := mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create mailer: %v", err)
		}
		notifier = mail
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	coachRepo := repository.NewCoachRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	schoolService := service.NewSchoolService(schoolRepo, validate, logger)
	challengeService := service.NewChallengeService(challengeRepo, validate, activityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, challengeRepo, validate, uploader, analyzer, cfg.AnalysisTimeout, logger)
	reviewService := service.NewReviewService(submissionRepo, userRepo, badgeRepo, ledgerRepo, validate, activityService, notifier, logger)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, redisClient, cfg.LeaderboardCacheTTL, validate, logger)
	profileService := service.NewStudentProfileService(userRepo, submissionRepo, challengeRepo, assignmentRepo, badgeRepo, redisClient, cfg.DashboardCacheTTL, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, challengeRepo, validate, logger)
	coachService := service.NewCoachService(coachRepo, coach, redisClient, "ecoquest", natsConn, validate, logger)
	seedService := service.NewSeedService(schoolRepo, challengeRepo, badgeRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coachService.Start(appCtx)

	deps := router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		SchoolHandler:      handler.NewSchoolHandler(schoolService, logger),
		ChallengeHandler:   handler.NewChallengeHandler(challengeService, logger),
		SubmissionHandler:  handler.NewSubmissionHandler(submissionService, reviewService, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, logger),
		StudentHandler:     handler.NewStudentHandler(profileService, reviewService, logger),
		AssignmentHandler:  handler.NewAssignmentHandler(assignmentService, logger),
		CoachHandler:       handler.NewCoachHandler(coachService, validate, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		SeedHandler:        handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancel()

	ctx, timeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeout()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
