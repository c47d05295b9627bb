package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/observability"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

// ErrReviewerNotAllowed indicates the acting account may not review submissions.
var ErrReviewerNotAllowed = errors.New("account is not allowed to review submissions")

// ErrSubmissionCorrupt indicates a submission whose challenge no longer resolves.
var ErrSubmissionCorrupt = errors.New("submission references a missing challenge")

// ReviewNotifier delivers a best-effort notification to the student.
type ReviewNotifier interface {
	Send(to []string, subject, html string) error
}

// ReviewService applies teacher verdicts and drives the one-time point credit.
type ReviewService interface {
	Review(ctx context.Context, submissionID string, payload dto.SubmissionReviewRequest, actor ActivityActor) (dto.ReviewResult, error)
	Ledger(ctx context.Context, userID uint) ([]models.PointLedgerEntry, error)
}

type reviewService struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	badges      repository.BadgeRepository
	ledger      repository.LedgerRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	notifier    ReviewNotifier
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReviewService constructs a ReviewService instance. The notifier is
// optional and failures there never affect the review outcome.
func NewReviewService(submissions repository.SubmissionRepository, users repository.UserRepository, badges repository.BadgeRepository, ledger repository.LedgerRepository, validate *validator.Validate, activity ActivityRecorder, notifier ReviewNotifier, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		users:       users,
		badges:      badges,
		ledger:      ledger,
		validator:   validate,
		activity:    activity,
		notifier:    notifier,
		tracer:      otel.Tracer("github.com/verdantlab/ecoquest-api/internal/service/review"),
		logger:      logger.With().Str("component", "review_service").Logger(),
		now:         time.Now,
	}
}

func (s *reviewService) Review(ctx context.Context, submissionID string, payload dto.SubmissionReviewRequest, actor ActivityActor) (dto.ReviewResult, error) {
	ctx, span := s.tracer.Start(ctx, "review.apply", trace.WithAttributes(
		attribute.String("review.submission_id", submissionID),
		attribute.Int64("review.actor_id", int64(actor.ID)),
		attribute.String("review.status", payload.Status),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ReviewResult{}, err
	}

	reviewer, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResult{}, ErrReviewerNotAllowed
		}
		span.RecordError(err)
		return dto.ReviewResult{}, err
	}

	if !reviewer.CanReview() {
		err := ErrReviewerNotAllowed
		span.RecordError(err)
		span.SetStatus(codes.Error, "reviewer_not_allowed")
		return dto.ReviewResult{}, err
	}

	outcome, err := s.submissions.Review(ctx, submissionID, repository.ReviewUpdate{
		Status:     payload.Status,
		ReviewerID: actor.ID,
		Notes:      payload.Notes,
		ReviewedAt: s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ReviewResult{}, ErrSubmissionNotFound
		case errors.Is(err, repository.ErrChallengeUnresolved):
			span.RecordError(err)
			span.SetStatus(codes.Error, "challenge_unresolved")
			return dto.ReviewResult{}, ErrSubmissionCorrupt
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "review_transaction_failed")
			return dto.ReviewResult{}, err
		}
	}

	span.SetAttributes(
		attribute.Bool("review.was_pending", outcome.WasPending),
		attribute.Bool("review.credited", outcome.Credited),
	)

	if outcome.WasPending {
		observability.Reviews().WithLabelValues(payload.Status).Inc()
	}

	if outcome.Credited {
		observability.PointsAwarded().Add(float64(outcome.Points))
		s.logger.Info().
			Str("submission_id", submissionID).
			Uint("user_id", outcome.Submission.UserID).
			Int("points", outcome.Points).
			Int("new_total", outcome.NewTotal).
			Msg("points credited")

		s.awardBadges(ctx, outcome.Submission.UserID, outcome.NewTotal)
	}

	s.recordReview(ctx, actor, outcome)
	s.notify(outcome)

	return dto.ReviewResult{
		Submission:    dto.NewSubmissionResponse(outcome.Submission),
		Credited:      outcome.Credited,
		PointsAwarded: outcome.Points,
	}, nil
}

// Ledger returns the student's append-only credit history.
func (s *reviewService) Ledger(ctx context.Context, userID uint) ([]models.PointLedgerEntry, error) {
	return s.ledger.ListByUser(ctx, userID)
}

func (s *reviewService) awardBadges(ctx context.Context, userID uint, totalPoints int) {
	awarded, err := s.badges.AwardUpTo(ctx, userID, totalPoints, s.now())
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("badge award pass failed")
		return
	}

	for _, badge := range awarded {
		s.logger.Info().Uint("user_id", userID).Str("badge", badge.Name).Msg("badge awarded")
	}
}

func (s *reviewService) recordReview(ctx context.Context, actor ActivityActor, outcome repository.ReviewOutcome) {
	if s.activity == nil {
		return
	}

	metadata := map[string]interface{}{
		"status":      outcome.Submission.Status,
		"student_id":  outcome.Submission.UserID,
		"was_pending": outcome.WasPending,
	}
	if outcome.Credited {
		metadata["points"] = outcome.Points
		metadata["new_total"] = outcome.NewTotal
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "submission.reviewed",
		EntityType: "submission",
		EntityID:   outcome.Submission.ID,
		Metadata:   metadata,
	})
}

func (s *reviewService) notify(outcome repository.ReviewOutcome) {
	if s.notifier == nil || !outcome.WasPending {
		return
	}

	student := outcome.Submission.User
	if student.Email == "" {
		return
	}

	subject := fmt.Sprintf("Your submission was %s", outcome.Submission.Status)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your evidence for <b>%s</b> was %s.</p>",
		student.Name, outcome.Submission.Challenge.Title, outcome.Submission.Status)
	if outcome.Credited {
		body += fmt.Sprintf("<p>You earned <b>%d points</b>. Your total is now %d.</p>",
			outcome.Points, outcome.NewTotal)
	}
	if outcome.Submission.Notes != "" {
		body += fmt.Sprintf("<p>Reviewer notes: %s</p>", outcome.Submission.Notes)
	}

	go func() {
		if err := s.notifier.Send([]string{student.Email}, subject, body); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", outcome.Submission.ID).Msg("review notification failed")
		}
	}()
}
