package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SequenceRepository allocates document ordinals
type SequenceRepository interface {
	// Next atomically increments and returns the counter of (docType, year).
	// The first call for a scope returns 1.
	Next(ctx context.Context, docType enum.DocumentType, year int) (int64, error)
}

// DocumentFilterParams holds the list filters shared by every document type
type DocumentFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ClientID   *uuid.UUID
}

// QuoteFilterParams holds quote list filters
type QuoteFilterParams struct {
	DocumentFilterParams
	Status *enum.QuoteStatus
}

// QuoteRepository defines the interface for quote data operations.
// Get methods return nil, nil when the quote does not exist.
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Quote, error)
	GetByToken(ctx context.Context, token string) (*entity.Quote, error)
	// Update writes the priced fields and replaces the items
	Update(ctx context.Context, quote *entity.Quote) error
	// UpdateStatus writes to only when the stored status is still from
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.QuoteStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *QuoteFilterParams) ([]entity.Quote, int64, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Quote, error)
	Count(ctx context.Context) (int64, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

// PurchaseOrderFilterParams holds purchase order list filters
type PurchaseOrderFilterParams struct {
	DocumentFilterParams
	Status *enum.PurchaseOrderStatus
}

// PurchaseOrderRepository defines the interface for purchase order data operations
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.PurchaseOrderStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *PurchaseOrderFilterParams) ([]entity.PurchaseOrder, int64, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

// InvoiceFilterParams holds invoice list filters. Status OVERDUE selects
// sent invoices whose due date is before Now.
type InvoiceFilterParams struct {
	DocumentFilterParams
	Status *enum.InvoiceStatus
	Now    time.Time
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.InvoiceStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DetachQuote clears quote_id on the invoice converted from quoteID
	DetachQuote(ctx context.Context, quoteID uuid.UUID) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Invoice, error)
	Count(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}
