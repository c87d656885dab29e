package models

import (
	"time"
)

// DefaultAvatar is served when a user never uploaded one.
const DefaultAvatar = "static/images/icon_lg.png"

// User represents both public customers and administrators.
type User struct {
	BaseModel
	Username         string     `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"size:256" json:"-"`
	IsAdmin          bool       `gorm:"default:false" json:"is_admin"`
	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	EmailCode        string     `gorm:"size:10" json:"-"`
	EmailCodeExpires *time.Time `json:"-"`
	Phone            string     `gorm:"size:20" json:"phone"`
	Wechat           string     `gorm:"size:50" json:"wechat"`
	Avatar           string     `gorm:"size:200" json:"avatar"`
	DisplayName      string     `gorm:"size:100" json:"display_name"`
	Address          string     `gorm:"size:200" json:"address"`
	Properties       []Property `json:"-"`
}

// NameOrUsername prefers the display name for contact blocks.
func (u *User) NameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// EmailVerification keeps codes sent to addresses that have no account yet.
type EmailVerification struct {
	BaseModel
	Email     string     `gorm:"size:120;index" json:"email"`
	Code      string     `gorm:"size:10" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
