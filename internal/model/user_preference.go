package model

import (
	"time"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ValidTheme reports whether s is an accepted theme value
func ValidTheme(s string) bool {
	return s == ThemeDark || s == ThemeLight
}

// UserPreference stores personal settings for one user
type UserPreference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Theme     string    `json:"theme" gorm:"type:varchar(10);default:'dark'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
