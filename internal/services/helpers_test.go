package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/database"
	"github.com/example/unihome/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "unihome.db"), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Email: username + "@example.com", EmailVerified: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProperty(t *testing.T, db *gorm.DB, owner *models.User, p models.Property) *models.Property {
	t.Helper()

	p.UserID = owner.ID
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.Currency == "" {
		p.Currency = models.CurrencyCAD
	}
	if p.Country == "" {
		p.Country = "Canada"
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}
