package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice represents a payment request, optionally converted from a quote
type Invoice struct {
	ID       uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ClientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	QuoteID  *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"quote_id,omitempty"`
	PricedDocument
	DueDate     time.Time          `gorm:"not null;index" json:"due_date"`
	DepositPaid decimal.Decimal    `gorm:"type:numeric;not null;default:0" json:"deposit_paid"`
	BalanceDue  decimal.Decimal    `gorm:"type:numeric;not null;default:0" json:"balance_due"`
	Status      enum.InvoiceStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// EffectiveStatus is Status with OVERDUE projected at read time
	EffectiveStatus enum.InvoiceStatus `gorm:"-" json:"effective_status"`

	// Relationships
	Client *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem represents a line item in an invoice
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	LineItem
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
