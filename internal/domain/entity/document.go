package entity

import (
	"github.com/shopspring/decimal"
)

// PricedDocument holds the fields shared by quotes, purchase orders and invoices.
// Totals are stored unrounded.
type PricedDocument struct {
	Number    string          `gorm:"size:32;not null;uniqueIndex" json:"number"`
	Discount  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"discount"`
	TaxRate   decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"tax_rate"`
	Subtotal  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"subtotal"`
	TaxAmount decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total"`
}

// LineItem is the priced row shape shared by every document item table
type LineItem struct {
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
}
