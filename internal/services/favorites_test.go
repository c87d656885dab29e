package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/unihome/internal/models"
)

func TestFavoriteLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteService(db)
	user := createUser(t, db, "student")
	property := createProperty(t, db, user, models.Property{Name: "A", Location: "多伦多", Price: 700})

	favorite, err := svc.Add(user.ID, property.ID)
	require.NoError(t, err)
	assert.Equal(t, property.ID, favorite.PropertyID)

	_, err = svc.Add(user.ID, property.ID)
	assert.ErrorIs(t, err, ErrAlreadyFavorited)

	favorited, err := svc.IsFavorited(user.ID, property.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	list, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Property)
	assert.Equal(t, "A", list[0].Property.Name)

	require.NoError(t, svc.Remove(user.ID, property.ID))
	assert.ErrorIs(t, svc.Remove(user.ID, property.ID), ErrNotFavorited)
}

func TestFavoriteMissingProperty(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteService(db)
	user := createUser(t, db, "student")

	_, err := svc.Add(user.ID, 99)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestFavoriteUniqueIndexCatchesRace(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student")
	property := createProperty(t, db, user, models.Property{Name: "A", Location: "多伦多", Price: 700})

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, PropertyID: property.ID}).Error)
	err := db.Create(&models.Favorite{UserID: user.ID, PropertyID: property.ID}).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}
