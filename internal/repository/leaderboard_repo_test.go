package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

func TestSchoolTotalsBreaksTiesByName(t *testing.T) {
	db := openTestDB(t)
	repo := NewLeaderboardRepository(db)

	river := models.School{Name: "Riverside Academy", City: "Kochi", State: "Kerala"}
	require.NoError(t, db.Create(&river).Error)
	green := models.School{Name: "Green Valley High", City: "Pune", State: "Maharashtra"}
	require.NoError(t, db.Create(&green).Error)

	students := []models.User{
		{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &green.ID, Points: 120},
		{Name: "Bilal", Email: "bilal@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &green.ID, Points: 80},
		{Name: "Chitra", Email: "chitra@example.com", PasswordHash: "x", Role: models.RoleStudent, SchoolID: &river.ID, Points: 200},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
	}

	// Both schools sit at 200, so the order falls back to the name.
	totals, err := repo.SchoolTotals(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.Equal(t, "Green Valley High", totals[0].Name)
	require.Equal(t, 200, totals[0].Points)
	require.Equal(t, "Riverside Academy", totals[1].Name)
	require.Equal(t, 200, totals[1].Points)
}
