package model

import (
	"time"
)

// UserCompany links a user to their company. The unique index on UserID
// keeps it one company per user. The owner link is created at signup and
// is never permission-restricted.
type UserCompany struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	IsOwner   bool      `json:"is_owner" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
}
