package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

func newSeedService(t *testing.T, enabled bool, token string) SeedService {
	t.Helper()
	db := openTestDB(t)
	return NewSeedService(
		repository.NewSchoolRepository(db),
		repository.NewChallengeRepository(db),
		repository.NewBadgeRepository(db),
		enabled,
		token,
		testLogger(),
	)
}

func TestSeedServiceDisabled(t *testing.T) {
	svc := newSeedService(t, false, "secret")

	_, err := svc.SeedSchools(context.Background(), "secret", []models.School{{Name: "Green Valley High"}})
	require.ErrorIs(t, err, ErrSeedDisabled)
}

func TestSeedServiceRejectsBadToken(t *testing.T) {
	svc := newSeedService(t, true, "secret")

	_, err := svc.SeedChallenges(context.Background(), "wrong", []models.Challenge{{Title: "Plant a Sapling", Description: "x", Category: "greening", Points: 150}})
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceUpsertsContent(t *testing.T) {
	svc := newSeedService(t, true, "secret")

	affected, err := svc.SeedBadges(context.Background(), "secret", []models.Badge{
		{Name: "Seedling", PointsRequired: 100},
		{Name: "Forest Guardian", PointsRequired: 500},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)
}
