package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit("Client").Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db), "id = ?", id)
}

// GetByIDForUpdate locks the invoice row until the surrounding transaction ends
func (r *invoiceRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *invoiceRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*entity.Invoice, error) {
	return r.first(conn(ctx, r.db), "quote_id = ?", quoteID)
}

func (r *invoiceRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := db.Preload("Client").
		Preload("Items", orderedItems).
		Where(query, args...).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	db := conn(ctx, r.db)
	columns := append([]string{"due_date", "deposit_paid", "balance_due"}, pricedColumns...)
	if err := db.Model(invoice).Select(columns).Omit(clause.Associations).Updates(invoice).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		invoice.Items[i].ID = uuid.Nil
		invoice.Items[i].InvoiceID = invoice.ID
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	return db.Create(&invoice.Items).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.InvoiceStatus) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	return result.RowsAffected == 1, result.Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) DetachQuote(ctx context.Context, quoteID uuid.UUID) error {
	return conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("quote_id = ?", quoteID).
		Update("quote_id", nil).Error
}

func (r *invoiceRepository) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	db := conn(ctx, r.db)
	ids := db.Model(&entity.Invoice{}).Select("id").Where("client_id = ?", clientID)
	if err := db.Where("invoice_id IN (?)", ids).Delete(&entity.InvoiceItem{}).Error; err != nil {
		return err
	}
	return db.Where("client_id = ?", clientID).Delete(&entity.Invoice{}).Error
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&entity.Invoice{}).Scopes(documentFilters("invoices", params.DocumentFilterParams))
		if params.Status != nil {
			if *params.Status == enum.InvoiceStatusOverdue {
				db = db.Where("invoices.status = ? AND invoices.due_date < ?", enum.InvoiceStatusSent, params.Now)
			} else {
				db = db.Where("invoices.status = ?", *params.Status)
			}
		}
		return db
	}

	if err := conn(ctx, r.db).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := conn(ctx, r.db).Scopes(filter).
		Preload("Client").
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("invoices.created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) ListRecent(ctx context.Context, limit int) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := conn(ctx, r.db).Preload("Client").
		Order("created_at DESC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Invoice{}).Count(&total).Error
	return total, err
}

func (r *invoiceRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("status = ? AND due_date < ?", enum.InvoiceStatusSent, now).
		Count(&total).Error
	return total, err
}

// SumPaidBetween adds up totals of PAID invoices created in [from, to).
// Amounts are summed as decimals rather than in SQL.
func (r *invoiceRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("status = ? AND created_at >= ? AND created_at < ?", enum.InvoiceStatusPaid, from, to).
		Pluck("total", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}
