package model

import (
	"time"
)

// Capability names a permission-gated area of the application.
type Capability string

const (
	CapabilityContacts Capability = "contacts"
	CapabilityUsers    Capability = "users"
	CapabilityProducts Capability = "products"
	CapabilitySectors  Capability = "sectors"
)

// UserPermission holds the capability flags for one company membership.
// The owner bypasses these flags entirely; see middleware.RequireCapability.
type UserPermission struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserCompanyID     uint      `json:"user_company_id" gorm:"uniqueIndex;not null"`
	CanManageContacts bool      `json:"can_manage_contacts" gorm:"default:true"`
	CanManageUsers    bool      `json:"can_manage_users" gorm:"default:false"`
	CanManageProducts bool      `json:"can_manage_products" gorm:"default:false"`
	CanManageSectors  bool      `json:"can_manage_sectors" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Allows reports whether the stored flags grant the given capability.
// A missing permission record (nil receiver) grants nothing.
func (p *UserPermission) Allows(capability Capability) bool {
	if p == nil {
		return false
	}
	switch capability {
	case CapabilityContacts:
		return p.CanManageContacts
	case CapabilityUsers:
		return p.CanManageUsers
	case CapabilityProducts:
		return p.CanManageProducts
	case CapabilitySectors:
		return p.CanManageSectors
	default:
		return false
	}
}
