package model

import (
	"time"
)

// Company is the tenant root: every scoped record hangs off one of these.
type Company struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"type:varchar(255);not null"`
	CNPJ  string `json:"cnpj" gorm:"type:varchar(18)"`
	Email string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone string `json:"phone" gorm:"type:varchar(20)"`

	CEP      string `json:"cep" gorm:"type:varchar(9)"`
	Address  string `json:"address" gorm:"type:varchar(255)"`
	Number   string `json:"number" gorm:"type:varchar(20)"`
	District string `json:"district" gorm:"type:varchar(100)"`
	City     string `json:"city" gorm:"type:varchar(100)"`
	UF       string `json:"uf" gorm:"type:varchar(2)"`

	LogoPath               string `json:"logo_path" gorm:"type:varchar(255)"`
	WhatsappDefaultMessage string `json:"whatsapp_default_message" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Links    []UserCompany `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Contacts []Contact     `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Products []Product     `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Sectors  []Sector      `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}
