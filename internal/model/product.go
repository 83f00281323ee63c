package model

import (
	"time"
)

// Measurement units for products
const (
	UnitSquareMeter = "M2"
	UnitPiece       = "UN"
)

// ValidUnit reports whether s is an accepted measurement unit
func ValidUnit(s string) bool {
	return s == UnitSquareMeter || s == UnitPiece
}

// Product is a company-scoped catalog item
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Unit      string    `json:"unit" gorm:"type:varchar(3);default:'M2'"`
	Price     float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	CostPrice *float64  `json:"cost_price" gorm:"type:decimal(12,2)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfitValue returns price minus cost, or nil when no cost is recorded
func (p *Product) ProfitValue() *float64 {
	if p.CostPrice == nil {
		return nil
	}
	v := p.Price - *p.CostPrice
	return &v
}

// ProfitPercent returns the profit as a percentage of the sale price,
// or nil when no cost is recorded or the price is zero
func (p *Product) ProfitPercent() *float64 {
	if p.CostPrice == nil || p.Price == 0 {
		return nil
	}
	v := (p.Price - *p.CostPrice) / p.Price * 100
	return &v
}
