package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

const dashboardRecentLimit = 5

// ErrStudentNotFound indicates the requested student account does not exist.
var ErrStudentNotFound = errors.New("student not found")

// StudentProfileService aggregates the student home screen and task feed.
type StudentProfileService interface {
	Dashboard(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error)
	TaskFeed(ctx context.Context, userID uint) ([]dto.TaskFeedItem, error)
}

type studentProfileService struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	challenges  repository.ChallengeRepository
	assignments repository.AssignmentRepository
	badges      repository.BadgeRepository
	redis       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStudentProfileService constructs a StudentProfileService instance.
func NewStudentProfileService(users repository.UserRepository, submissions repository.SubmissionRepository, challenges repository.ChallengeRepository, assignments repository.AssignmentRepository, badges repository.BadgeRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) StudentProfileService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &studentProfileService{
		users:       users,
		submissions: submissions,
		challenges:  challenges,
		assignments: assignments,
		badges:      badges,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "student_profile_service").Logger(),
	}
}

func (s *studentProfileService) Dashboard(ctx context.Context, userID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("ecoquest:dashboard:%d", userID)
	if s.redis != nil {
		if result, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached dto.StudentDashboardResponse
			if err := json.Unmarshal([]byte(result), &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn().Uint("user_id", userID).Msg("failed to unmarshal cached dashboard")
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDashboardResponse{}, ErrStudentNotFound
		}
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{UserID: &userID})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	summary := dto.SubmissionSummary{Total: len(submissions)}
	for _, submission := range submissions {
		switch submission.Status {
		case models.SubmissionStatusPending:
			summary.Pending++
		case models.SubmissionStatusApproved:
			summary.Approved++
		case models.SubmissionStatusRejected:
			summary.Rejected++
		}
	}

	recent := submissions
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}

	earned, err := s.badges.ListEarned(ctx, userID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	badges := make([]dto.BadgeResponse, 0, len(earned))
	for _, award := range earned {
		badges = append(badges, dto.NewBadgeResponse(award))
	}

	rank := 0
	if user.SchoolID != nil {
		above, err := s.users.CountAbovePoints(ctx, *user.SchoolID, user.Points)
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		rank = int(above) + 1
	}

	dashboard := dto.StudentDashboardResponse{
		Points:            user.Points,
		SchoolRank:        rank,
		Badges:            badges,
		Summary:           summary,
		RecentSubmissions: dto.NewSubmissionResponseSlice(recent),
	}

	if s.redis != nil {
		if payload, err := json.Marshal(dashboard); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to cache dashboard")
			}
		}
	}

	return dashboard, nil
}

// TaskFeed lists challenges the student has not attempted yet, marking the
// ones a teacher assigned to their class or school.
func (s *studentProfileService) TaskFeed(ctx context.Context, userID uint) ([]dto.TaskFeedItem, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	challenges, err := s.challenges.List(ctx)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}

	attempted := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		attempted[submission.ChallengeID] = struct{}{}
	}

	assignments, err := s.assignments.ListForStudent(ctx, user.SchoolID, user.ClassName)
	if err != nil {
		return nil, err
	}

	assigned := make(map[uint]*time.Time, len(assignments))
	for _, assignment := range assignments {
		assigned[assignment.ChallengeID] = assignment.DueDate
	}

	feed := make([]dto.TaskFeedItem, 0, len(challenges))
	for _, challenge := range challenges {
		if _, done := attempted[challenge.ID]; done {
			continue
		}

		item := dto.TaskFeedItem{Challenge: dto.NewChallengeResponse(challenge)}
		if due, ok := assigned[challenge.ID]; ok {
			item.Assigned = true
			item.DueDate = due
		}
		feed = append(feed, item)
	}

	return feed, nil
}
