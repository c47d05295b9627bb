package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

func seedReviewFixture(t *testing.T, db *gorm.DB) (models.User, models.Challenge, models.Submission) {
	t.Helper()

	student := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	challenge := models.Challenge{Title: "Plant a Sapling", Description: "Plant and photograph a sapling", Category: "greening", Points: 150}
	require.NoError(t, db.Create(&challenge).Error)

	repo := NewSubmissionRepository(db)
	submission := models.Submission{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "Planted a neem sapling near the school gate",
		ImageURL:    "https://cdn.example.com/sapling.jpg",
	}
	require.NoError(t, repo.Create(context.Background(), &submission))
	require.Equal(t, models.SubmissionStatusPending, submission.Status)
	require.NotEmpty(t, submission.ID)

	return student, challenge, submission
}

func TestReviewApprovalCreditsOnce(t *testing.T) {
	db := openTestDB(t)
	student, challenge, submission := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	update := ReviewUpdate{Status: models.SubmissionStatusApproved, ReviewerID: 99, ReviewedAt: time.Now()}

	first, err := repo.Review(context.Background(), submission.ID, update)
	require.NoError(t, err)
	require.True(t, first.WasPending)
	require.True(t, first.Credited)
	require.Equal(t, challenge.Points, first.Points)
	require.Equal(t, challenge.Points, first.NewTotal)
	require.Equal(t, models.SubmissionStatusApproved, first.Submission.Status)

	// A second approval must not credit again.
	second, err := repo.Review(context.Background(), submission.ID, update)
	require.NoError(t, err)
	require.False(t, second.WasPending)
	require.False(t, second.Credited)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Equal(t, challenge.Points, user.Points)

	var entries []models.PointLedgerEntry
	require.NoError(t, db.Where("user_id = ?", student.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, submission.ID, entries[0].SubmissionID)
	require.Equal(t, challenge.Points, entries[0].Points)
}

func TestReviewRejectionNeverCredits(t *testing.T) {
	db := openTestDB(t)
	student, _, submission := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	notes := "Photo does not show a planted sapling"
	outcome, err := repo.Review(context.Background(), submission.ID, ReviewUpdate{
		Status:     models.SubmissionStatusRejected,
		ReviewerID: 99,
		Notes:      &notes,
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, outcome.WasPending)
	require.False(t, outcome.Credited)
	require.Equal(t, models.SubmissionStatusRejected, outcome.Submission.Status)
	require.Equal(t, notes, outcome.Submission.Notes)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Zero(t, user.Points)

	var count int64
	require.NoError(t, db.Model(&models.PointLedgerEntry{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestReviewTerminalStatusNeverFlips(t *testing.T) {
	db := openTestDB(t)
	student, challenge, submission := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	_, err := repo.Review(context.Background(), submission.ID, ReviewUpdate{
		Status: models.SubmissionStatusApproved, ReviewerID: 99, ReviewedAt: time.Now(),
	})
	require.NoError(t, err)

	// A later rejection corrects notes and reviewer, nothing else.
	notes := "second opinion"
	outcome, err := repo.Review(context.Background(), submission.ID, ReviewUpdate{
		Status:     models.SubmissionStatusRejected,
		ReviewerID: 42,
		Notes:      &notes,
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	require.False(t, outcome.WasPending)
	require.False(t, outcome.Credited)
	require.Equal(t, models.SubmissionStatusApproved, outcome.Submission.Status)
	require.Equal(t, notes, outcome.Submission.Notes)
	require.Equal(t, uint(42), *outcome.Submission.ReviewedBy)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Equal(t, challenge.Points, user.Points)
}

func TestReviewSnapshotsPointsAtApproval(t *testing.T) {
	db := openTestDB(t)
	student, challenge, submission := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	_, err := repo.Review(context.Background(), submission.ID, ReviewUpdate{
		Status: models.SubmissionStatusApproved, ReviewerID: 99, ReviewedAt: time.Now(),
	})
	require.NoError(t, err)

	// Catalog edits after approval must not touch the credited value.
	require.NoError(t, db.Model(&models.Challenge{}).Where("id = ?", challenge.ID).Update("points", 10).Error)

	var entry models.PointLedgerEntry
	require.NoError(t, db.Where("submission_id = ?", submission.ID).First(&entry).Error)
	require.Equal(t, 150, entry.Points)

	ledger := NewLedgerRepository(db)
	total, err := ledger.SumByUser(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, 150, total)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Equal(t, total, user.Points)
}

func TestReviewMissingSubmission(t *testing.T) {
	db := openTestDB(t)
	repo := NewSubmissionRepository(db)

	_, err := repo.Review(context.Background(), "no-such-id", ReviewUpdate{
		Status: models.SubmissionStatusApproved, ReviewerID: 1, ReviewedAt: time.Now(),
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateEnforcesOneAttemptPerChallenge(t *testing.T) {
	db := openTestDB(t)
	student, challenge, _ := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	duplicate := models.Submission{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "second try",
		ImageURL:    "https://cdn.example.com/retry.jpg",
	}
	err := repo.Create(context.Background(), &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestReviewConcurrentApprovalsCreditOnce(t *testing.T) {
	db := openTestDB(t)
	student, challenge, submission := seedReviewFixture(t, db)
	repo := NewSubmissionRepository(db)

	update := ReviewUpdate{Status: models.SubmissionStatusApproved, ReviewerID: 99, ReviewedAt: time.Now()}

	outcomes := make([]ReviewOutcome, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = repo.Review(context.Background(), submission.ID, update)
		}(i)
	}
	wg.Wait()

	// The loser may fail on a busy database, but never with a second credit.
	credited := 0
	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			continue
		}
		if outcomes[i].Credited {
			credited++
		}
	}
	require.Equal(t, 1, credited)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Equal(t, challenge.Points, user.Points)

	var entries []models.PointLedgerEntry
	require.NoError(t, db.Where("user_id = ?", student.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, challenge.Points, entries[0].Points)
}
