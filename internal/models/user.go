package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserPreferences holds per-user settings stored as a JSON column.
type UserPreferences struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	InAppNotifications bool   `json:"in_app_notifications"`
	WeeklyDigest       bool   `json:"weekly_digest"`
	ProfileVisibility  string `json:"profile_visibility"`
}

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:              "light",
		EmailNotifications: true,
		InAppNotifications: true,
		WeeklyDigest:       false,
		ProfileVisibility:  "private",
	}
}

type User struct {
	ID           uint64                              `gorm:"primarykey" json:"id"`
	Name         string                              `gorm:"type:varchar(100);not null" json:"name"`
	Email        string                              `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string                              `gorm:"type:varchar(255);not null" json:"-"`
	Bio          string                              `gorm:"type:text" json:"bio"`
	AvatarURL    string                              `gorm:"type:varchar(500)" json:"avatar_url"`
	Timezone     string                              `gorm:"type:varchar(64);not null" json:"timezone"`
	Preferences  datatypes.JSONType[UserPreferences] `json:"preferences"`
	LastLoginAt  *time.Time                          `json:"last_login_at"`
	CreatedAt    time.Time                           `json:"created_at"`
	UpdatedAt    time.Time                           `json:"updated_at"`
	DeletedAt    gorm.DeletedAt                      `gorm:"index" json:"-"`
}

// Location returns the user's time zone, falling back to UTC when unset or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
