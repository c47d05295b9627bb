package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

func seedLeaderboardScenario(t *testing.T, db *gorm.DB) (models.School, models.School) {
	t.Helper()

	green := models.School{Name: "Green Valley High", City: "Pune", State: "Maharashtra"}
	require.NoError(t, db.Create(&green).Error)
	river := models.School{Name: "Riverside School", City: "Chennai", State: "Tamil Nadu"}
	require.NoError(t, db.Create(&river).Error)

	students := []models.User{
		{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &green.ID, ClassName: "7A", Points: 150},
		{Name: "Bilal", Email: "bilal@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &green.ID, ClassName: "7B", Points: 90},
		{Name: "Chitra", Email: "chitra@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &river.ID, ClassName: "7A", Points: 200},
		{Name: "Mrs Devi", Email: "devi@example.com", PasswordHash: "x", Role: models.RoleTeacher, SchoolID: &river.ID, Points: 999},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
	}

	return green, river
}

func TestLeaderboardServiceSchoolRanking(t *testing.T) {
	db := openTestDB(t)
	green, river := seedLeaderboardScenario(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewLeaderboardService(repository.NewLeaderboardRepository(db), nil, time.Minute, validate, testLogger())

	entries, err := svc.Schools(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Teacher points never count toward school totals.
	require.Equal(t, green.ID, entries[0].SchoolID)
	require.Equal(t, 240, entries[0].Points)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, "Pune, Maharashtra", entries[0].Location)

	require.Equal(t, river.ID, entries[1].SchoolID)
	require.Equal(t, 200, entries[1].Points)
	require.Equal(t, 2, entries[1].Rank)
}

func TestLeaderboardServiceStudentRankingFilters(t *testing.T) {
	db := openTestDB(t)
	green, _ := seedLeaderboardScenario(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewLeaderboardService(repository.NewLeaderboardRepository(db), nil, time.Minute, validate, testLogger())

	entries, err := svc.Students(context.Background(), dto.LeaderboardQuery{SchoolID: &green.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Asha", entries[0].Name)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, "Green Valley High", entries[0].SchoolName)
	require.Equal(t, "Bilal", entries[1].Name)
	require.Equal(t, 2, entries[1].Rank)
}

func TestLeaderboardServiceServesFromCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t)
	seedLeaderboardScenario(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewLeaderboardService(repository.NewLeaderboardRepository(db), redisClient, time.Minute, validate, testLogger())

	first, err := svc.Schools(context.Background(), 10)
	require.NoError(t, err)

	// Database changes are invisible until the cache expires.
	require.NoError(t, db.Model(&models.User{}).Where("name = ?", "Asha").Update("points", 10000).Error)

	cached, err := svc.Schools(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, first, cached)

	mini.FastForward(2 * time.Minute)

	fresh, err := svc.Schools(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10090, fresh[0].Points)
}
