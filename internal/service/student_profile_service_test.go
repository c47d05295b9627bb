package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

func newProfileService(db *gorm.DB, redisClient *redis.Client) StudentProfileService {
	return NewStudentProfileService(
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewChallengeRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewBadgeRepository(db),
		redisClient,
		time.Minute,
		testLogger(),
	)
}

func TestStudentDashboardAggregation(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t)

	school := models.School{Name: "Green Valley High", City: "Pune", State: "Maharashtra"}
	require.NoError(t, db.Create(&school).Error)

	asha := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &school.ID, Points: 150}
	require.NoError(t, db.Create(&asha).Error)
	bilal := models.User{Name: "Bilal", Email: "bilal@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &school.ID, Points: 300}
	require.NoError(t, db.Create(&bilal).Error)

	challenges := []models.Challenge{
		{Title: "Plant a Sapling", Description: "x", Category: "greening", Points: 150},
		{Title: "Waste Audit", Description: "x", Category: "waste", Points: 80},
	}
	for i := range challenges {
		require.NoError(t, db.Create(&challenges[i]).Error)
	}

	submissions := repository.NewSubmissionRepository(db)
	approved := models.Submission{UserID: asha.ID, ChallengeID: challenges[0].ID, Description: "done", ImageURL: "https://cdn.example.com/1.jpg", Status: models.SubmissionStatusApproved}
	require.NoError(t, submissions.Create(context.Background(), &approved))

	pending := models.Submission{UserID: asha.ID, ChallengeID: challenges[1].ID, Description: "in review", ImageURL: "https://cdn.example.com/2.jpg"}
	require.NoError(t, submissions.Create(context.Background(), &pending))

	svc := newProfileService(db, redisClient)

	dashboard, err := svc.Dashboard(context.Background(), asha.ID)
	require.NoError(t, err)
	require.Equal(t, 150, dashboard.Points)
	require.Equal(t, 2, dashboard.SchoolRank)
	require.Equal(t, 2, dashboard.Summary.Total)
	require.Equal(t, 1, dashboard.Summary.Pending)
	require.Equal(t, 1, dashboard.Summary.Approved)
	require.Len(t, dashboard.RecentSubmissions, 2)

	// Second read comes from cache.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", asha.ID).Update("points", 0).Error)
	cached, err := svc.Dashboard(context.Background(), asha.ID)
	require.NoError(t, err)
	require.Equal(t, 150, cached.Points)
}

func TestStudentTaskFeedExcludesAttempted(t *testing.T) {
	db := openTestDB(t)

	school := models.School{Name: "Green Valley High"}
	require.NoError(t, db.Create(&school).Error)

	teacher := models.User{Name: "Mrs Devi", Email: "devi@example.com", PasswordHash: "x", Role: models.RoleTeacher, SchoolID: &school.ID}
	require.NoError(t, db.Create(&teacher).Error)

	asha := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &school.ID, ClassName: "7A"}
	require.NoError(t, db.Create(&asha).Error)

	challenges := []models.Challenge{
		{Title: "Plant a Sapling", Description: "x", Category: "greening", Points: 150},
		{Title: "Waste Audit", Description: "x", Category: "waste", Points: 80},
		{Title: "Cycle to School", Description: "x", Category: "transport", Points: 60},
	}
	for i := range challenges {
		require.NoError(t, db.Create(&challenges[i]).Error)
	}

	submissions := repository.NewSubmissionRepository(db)
	done := models.Submission{UserID: asha.ID, ChallengeID: challenges[0].ID, Description: "done", ImageURL: "https://cdn.example.com/1.jpg"}
	require.NoError(t, submissions.Create(context.Background(), &done))

	due := time.Now().Add(72 * time.Hour)
	assignment := models.Assignment{TeacherID: teacher.ID, ChallengeID: challenges[1].ID, SchoolID: &school.ID, ClassName: "7A", DueDate: &due}
	require.NoError(t, db.Create(&assignment).Error)

	svc := newProfileService(db, nil)

	feed, err := svc.TaskFeed(context.Background(), asha.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	byTitle := map[string]bool{}
	for _, item := range feed {
		byTitle[item.Challenge.Title] = item.Assigned
	}
	require.NotContains(t, byTitle, "Plant a Sapling")
	require.True(t, byTitle["Waste Audit"])
	require.False(t, byTitle["Cycle to School"])
}
