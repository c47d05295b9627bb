package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

type recordedNotification struct {
	To      []string
	Subject string
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (s *stubNotifier) Send(to []string, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recordedNotification{To: to, Subject: subject})
	return nil
}

func seedReviewScenario(t *testing.T, db *gorm.DB) (models.User, models.User, models.Submission) {
	t.Helper()

	teacher := models.User{Name: "Mr Rao", Email: "rao@example.com", PasswordHash: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	challenge := models.Challenge{Title: "Plant a Sapling", Description: "Plant one", Category: "greening", Points: 150}
	require.NoError(t, db.Create(&challenge).Error)

	submissions := repository.NewSubmissionRepository(db)
	submission := models.Submission{
		UserID:      student.ID,
		ChallengeID: challenge.ID,
		Description: "Planted a sapling",
		ImageURL:    "https://cdn.example.com/sapling.jpg",
	}
	require.NoError(t, submissions.Create(context.Background(), &submission))

	return teacher, student, submission
}

func newReviewService(db *gorm.DB, notifier ReviewNotifier) ReviewService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := NewActivityService(repository.NewActivityLogRepository(db), testLogger())
	return NewReviewService(
		repository.NewSubmissionRepository(db),
		repository.NewUserRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewLedgerRepository(db),
		validate,
		activity,
		notifier,
		testLogger(),
	)
}

func TestReviewServiceApproveIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	teacher, student, submission := seedReviewScenario(t, db)
	svc := newReviewService(db, nil)
	actor := ActivityActor{ID: teacher.ID, Role: teacher.Role}

	first, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved}, actor)
	require.NoError(t, err)
	require.True(t, first.Credited)
	require.Equal(t, 150, first.PointsAwarded)

	second, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved}, actor)
	require.NoError(t, err)
	require.False(t, second.Credited)
	require.Equal(t, models.SubmissionStatusApproved, second.Submission.Status)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Equal(t, 150, user.Points)
}

func TestReviewServiceStudentCannotReview(t *testing.T) {
	db := openTestDB(t)
	_, student, submission := seedReviewScenario(t, db)
	svc := newReviewService(db, nil)

	_, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved}, ActivityActor{ID: student.ID, Role: student.Role})
	require.ErrorIs(t, err, ErrReviewerNotAllowed)

	var user models.User
	require.NoError(t, db.First(&user, student.ID).Error)
	require.Zero(t, user.Points)
}

func TestReviewServiceRejectsInvalidStatus(t *testing.T) {
	db := openTestDB(t)
	teacher, _, submission := seedReviewScenario(t, db)
	svc := newReviewService(db, nil)

	_, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: "maybe"}, ActivityActor{ID: teacher.ID, Role: teacher.Role})
	require.Error(t, err)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestReviewServiceAwardsBadgesOnCredit(t *testing.T) {
	db := openTestDB(t)
	teacher, student, submission := seedReviewScenario(t, db)

	badges := []models.Badge{
		{Name: "Seedling", Description: "First 100 points", PointsRequired: 100},
		{Name: "Forest Guardian", Description: "500 points", PointsRequired: 500},
	}
	for i := range badges {
		require.NoError(t, db.Create(&badges[i]).Error)
	}

	svc := newReviewService(db, nil)
	result, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved}, ActivityActor{ID: teacher.ID, Role: teacher.Role})
	require.NoError(t, err)
	require.True(t, result.Credited)

	var earned []models.UserBadge
	require.NoError(t, db.Where("user_id = ?", student.ID).Find(&earned).Error)
	require.Len(t, earned, 1)
	require.Equal(t, badges[0].ID, earned[0].BadgeID)
}

func TestReviewServiceRecordsActivity(t *testing.T) {
	db := openTestDB(t)
	teacher, _, submission := seedReviewScenario(t, db)
	svc := newReviewService(db, nil)

	notes := "Looks great"
	_, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved, Notes: &notes}, ActivityActor{ID: teacher.ID, Role: teacher.Role})
	require.NoError(t, err)

	var logs []models.ActivityLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "submission.reviewed", logs[0].Action)
	require.Equal(t, teacher.ID, logs[0].ActorID)
	require.Equal(t, submission.ID, logs[0].EntityID)
}

func TestReviewServiceNotifiesStudent(t *testing.T) {
	db := openTestDB(t)
	teacher, student, submission := seedReviewScenario(t, db)
	notifier := &stubNotifier{}
	svc := newReviewService(db, notifier)

	_, err := svc.Review(context.Background(), submission.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved}, ActivityActor{ID: teacher.ID, Role: teacher.Role})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.sent) == 1
	}, time.Second, 10*time.Millisecond)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Equal(t, []string{student.Email}, notifier.sent[0].To)
	require.Contains(t, notifier.sent[0].Subject, "approved")
}

func TestReviewServiceMissingSubmission(t *testing.T) {
	db := openTestDB(t)
	teacher, _, _ := seedReviewScenario(t, db)
	svc := newReviewService(db, nil)

	_, err := svc.Review(context.Background(), "does-not-exist", dto.SubmissionReviewRequest{Status: models.SubmissionStatusRejected}, ActivityActor{ID: teacher.ID, Role: teacher.Role})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
