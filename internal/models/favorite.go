package models

import "time"

// Favorite links a user to a property they saved. The pair is unique.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:unique_user_property_favorite" json:"user_id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:unique_user_property_favorite;index" json:"property_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	User       *User     `json:"-"`
	Property   *Property `json:"-"`
}
