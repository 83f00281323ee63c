package model

import (
	"time"
)

// Contact is a company-scoped address book entry. The category flags are
// not exclusive: a contact can be a client and a seller at the same time.
type Contact struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CompanyID   uint   `json:"company_id" gorm:"index;not null"`
	Document    string `json:"document" gorm:"type:varchar(20)"`
	DisplayName string `json:"display_name" gorm:"type:varchar(255);not null"`
	LegalName   string `json:"legal_name" gorm:"type:varchar(255)"`
	Phone       string `json:"phone" gorm:"type:varchar(20)"`
	Email       string `json:"email" gorm:"type:varchar(255)"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`

	CEP      string `json:"cep" gorm:"type:varchar(9)"`
	Address  string `json:"address" gorm:"type:varchar(255)"`
	Number   string `json:"number" gorm:"type:varchar(20)"`
	District string `json:"district" gorm:"type:varchar(100)"`
	City     string `json:"city" gorm:"type:varchar(100)"`
	UF       string `json:"uf" gorm:"type:varchar(2)"`

	IsClient   bool `json:"is_client" gorm:"default:true"`
	IsSupplier bool `json:"is_supplier" gorm:"default:false"`
	IsPartner  bool `json:"is_partner" gorm:"default:false"`
	IsEmployee bool `json:"is_employee" gorm:"default:false"`
	IsOther    bool `json:"is_other" gorm:"default:false"`
	IsSeller   bool `json:"is_seller" gorm:"default:false"`

	Commission *float64 `json:"commission" gorm:"type:decimal(5,2)"`
	Notes      string   `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
