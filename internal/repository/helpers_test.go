package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/verdantlab/ecoquest-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Challenge{},
		&models.Submission{},
		&models.PointLedgerEntry{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Assignment{},
		&models.ActivityLog{},
		&models.CoachMessage{},
	))

	return db
}
