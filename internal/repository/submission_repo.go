package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

// ErrChallengeUnresolved indicates a submission references a challenge that no
// longer exists, making the point lookup impossible. This is a data-integrity
// failure and aborts the whole review transaction.
var ErrChallengeUnresolved = errors.New("submission challenge cannot be resolved")

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	UserID      *uint
	ChallengeID *uint
	SchoolID    *uint
	Status      *string
}

// ReviewUpdate carries the reviewer's verdict into the atomic transition.
type ReviewUpdate struct {
	Status     string
	ReviewerID uint
	Notes      *string
	ReviewedAt time.Time
}

// ReviewOutcome reports what the review transaction actually did.
type ReviewOutcome struct {
	Submission models.Submission
	WasPending bool
	Credited   bool
	Points     int
	NewTotal   int
}

// SubmissionRepository defines data operations for submissions and the point ledger.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	GetByUserAndChallenge(ctx context.Context, userID, challengeID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	SetAnalysis(ctx context.Context, id string, analysis string) error
	Review(ctx context.Context, id string, update ReviewUpdate) (ReviewOutcome, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Challenge").
		Preload("User").
		Preload("User.School")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.UserID != nil {
		query = query.Where("submissions.user_id = ?", *filter.UserID)
	}

	if filter.ChallengeID != nil {
		query = query.Where("submissions.challenge_id = ?", *filter.ChallengeID)
	}

	if filter.Status != nil {
		query = query.Where("submissions.status = ?", *filter.Status)
	}

	if filter.SchoolID != nil {
		query = query.
			Joins("JOIN users ON users.id = submissions.user_id").
			Where("users.school_id = ?", *filter.SchoolID)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, "submissions.id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByUserAndChallenge(ctx context.Context, userID, challengeID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("submissions.user_id = ?", userID).
		Where("submissions.challenge_id = ?", challengeID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusPending
	}

	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) SetAnalysis(ctx context.Context, id string, analysis string) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Update("ai_analysis", analysis).Error
}

// Review applies the reviewer's verdict atomically. The status transition is a
// conditional update fenced on status='pending': its affected-row count decides
// whether this call owns the one-time credit. The ledger insert, the cached
// counter increment, and the transition all commit or roll back together, so a
// losing concurrent reviewer observes a resolved row and never double-credits.
func (r *submissionRepository) Review(ctx context.Context, id string, update ReviewUpdate) (ReviewOutcome, error) {
	var outcome ReviewOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transition := map[string]interface{}{
			"status":      update.Status,
			"reviewed_by": update.ReviewerID,
			"reviewed_at": update.ReviewedAt,
		}
		if update.Notes != nil {
			transition["notes"] = *update.Notes
		}

		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.SubmissionStatusPending).
			Updates(transition)
		if result.Error != nil {
			return result.Error
		}
		outcome.WasPending = result.RowsAffected == 1

		if !outcome.WasPending {
			// Already resolved: reviewer and notes may still be corrected, but
			// the terminal status never changes and the credit never repeats.
			correction := map[string]interface{}{"reviewed_by": update.ReviewerID}
			if update.Notes != nil {
				correction["notes"] = *update.Notes
			}

			result = tx.Model(&models.Submission{}).Where("id = ?", id).Updates(correction)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		var submission models.Submission
		if err := tx.Preload("Challenge").Preload("User").Preload("User.School").
			First(&submission, "id = ?", id).Error; err != nil {
			return err
		}

		if outcome.WasPending && update.Status == models.SubmissionStatusApproved {
			if submission.Challenge.ID == 0 {
				return ErrChallengeUnresolved
			}

			entry := models.PointLedgerEntry{
				SubmissionID: submission.ID,
				UserID:       submission.UserID,
				ChallengeID:  submission.ChallengeID,
				Points:       submission.Challenge.Points,
				AwardedBy:    update.ReviewerID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.User{}).
				Where("id = ?", submission.UserID).
				UpdateColumn("points", gorm.Expr("points + ?", entry.Points)).Error; err != nil {
				return err
			}

			var total struct{ Points int }
			if err := tx.Model(&models.User{}).
				Select("points").
				Where("id = ?", submission.UserID).
				Scan(&total).Error; err != nil {
				return err
			}

			outcome.Credited = true
			outcome.Points = entry.Points
			outcome.NewTotal = total.Points
			submission.User.Points = total.Points
		}

		outcome.Submission = submission
		return nil
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	return outcome, nil
}
