package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
)

// FavoriteService manages per-user saved listings.
type FavoriteService struct {
	db *gorm.DB
}

// NewFavoriteService constructs FavoriteService.
func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add saves the property for the user. A second save of the same pair returns
// ErrAlreadyFavorited, including when two requests race past the pre-check.
func (s *FavoriteService) Add(userID, propertyID uint) (*models.Favorite, error) {
	var property models.Property
	if err := s.db.Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	favorited, err := s.IsFavorited(userID, propertyID)
	if err != nil {
		return nil, err
	}
	if favorited {
		return nil, ErrAlreadyFavorited
	}

	favorite := models.Favorite{UserID: userID, PropertyID: propertyID}
	if err := s.db.Create(&favorite).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	return &favorite, nil
}

// Remove deletes the saved pair or returns ErrNotFavorited.
func (s *FavoriteService) Remove(userID, propertyID uint) error {
	result := s.db.Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorited
	}
	return nil
}

// IsFavorited reports whether the pair exists.
func (s *FavoriteService) IsFavorited(userID, propertyID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}

// List returns the user's favorites newest first with their properties loaded.
// Favorites whose property no longer exists are skipped.
func (s *FavoriteService) List(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.Where("user_id = ?", userID).
		Preload("Property").
		Preload("Property.Owner").
		Preload("Property.Images", orderByID).
		Preload("Property.Videos", orderByID).
		Order("created_at desc, id desc").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	out := favorites[:0]
	for _, f := range favorites {
		if f.Property != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
