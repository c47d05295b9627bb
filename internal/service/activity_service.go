package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/verdantlab/ecoquest-api/internal/middleware"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

// ActivityActor identifies who performed an audited action.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityEntry is one auditable event handed to the recorder.
type ActivityEntry struct {
	Actor      ActivityActor
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]interface{}
}

// ActivityRecorder persists audit entries. Recording is best effort and must
// never fail the operation being audited.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService records and lists audit entries.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	model := models.ActivityLog{
		ActorID:       entry.Actor.ID,
		ActorRole:     entry.Actor.Role,
		Action:        entry.Action,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		Metadata:      datatypes.JSONMap(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	return s.repo.List(ctx, filter)
}

func formatUint(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}
