package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"gorm.io/gorm"
)

// PurchaseOrder represents an order confirmation addressed to a client
type PurchaseOrder struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	PricedDocument
	ValidUntil time.Time                `gorm:"not null" json:"valid_until"`
	Status     enum.PurchaseOrderStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`

	// Relationships
	Client *Client              `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new purchase order
func (po *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseOrder model
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	LineItem
}

// BeforeCreate generates a UUID before creating a new purchase order item
func (pi *PurchaseOrderItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseOrderItem model
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}
