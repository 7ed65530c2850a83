package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote represents a priced offer sent to a client
type Quote struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	PricedDocument
	ValidUntil time.Time        `gorm:"not null" json:"valid_until"`
	Deposit    decimal.Decimal  `gorm:"type:numeric;not null;default:0" json:"deposit"`
	Status     enum.QuoteStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	Token      string           `gorm:"size:64;not null;uniqueIndex" json:"token"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Relationships
	Client *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []QuoteItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new quote
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem represents a line item in a quote
type QuoteItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`
	LineItem
}

// BeforeCreate generates a UUID before creating a new quote item
func (qi *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if qi.ID == uuid.Nil {
		qi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QuoteItem model
func (QuoteItem) TableName() string {
	return "quote_items"
}
