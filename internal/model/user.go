package model

import (
	"time"
)

// User represents a login account. A user belongs to at most one company
// through a UserCompany link.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);index"`
	FullName  string    `json:"full_name" gorm:"type:varchar(150)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	IsStaff   bool      `json:"is_staff" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
