package database_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MadeByJay/ai-product-search/internal/database"
	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/testutil"
)

func TestWithTransactionCommits(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	err := database.WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Create(&models.User{ID: uuid.New(), Email: "commit@example.com"}).Error
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "commit@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	boom := errors.New("boom")

	err := database.WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{ID: uuid.New(), Email: "rollback@example.com"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "rollback@example.com").Count(&count)
	assert.Zero(t, count)
}

func TestRunMigrationsRejectsDimensionMismatch(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	err := database.RunMigrations(db, 768, testutil.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "768")
}
