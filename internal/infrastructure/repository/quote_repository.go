package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billing-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pricedColumns are written on document edits
var pricedColumns = []string{"client_id", "discount", "tax_rate", "subtotal", "tax_amount", "total", "updated_at"}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) domainRepo.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return conn(ctx, r.db).Omit("Client").Create(quote).Error
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return r.first(conn(ctx, r.db), "quotes.id = ?", id)
}

// GetByIDForUpdate locks the quote row until the surrounding transaction ends
func (r *quoteRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return r.first(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), "quotes.id = ?", id)
}

func (r *quoteRepository) GetByToken(ctx context.Context, token string) (*entity.Quote, error) {
	return r.first(conn(ctx, r.db), "quotes.token = ?", token)
}

func (r *quoteRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Quote, error) {
	var quote entity.Quote
	err := db.Preload("Client").
		Preload("Items", orderedItems).
		Where(query, args...).
		First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) Update(ctx context.Context, quote *entity.Quote) error {
	db := conn(ctx, r.db)
	columns := append([]string{"valid_until", "deposit"}, pricedColumns...)
	if err := db.Model(quote).Select(columns).Omit(clause.Associations).Updates(quote).Error; err != nil {
		return err
	}
	if err := db.Where("quote_id = ?", quote.ID).Delete(&entity.QuoteItem{}).Error; err != nil {
		return err
	}
	for i := range quote.Items {
		quote.Items[i].ID = uuid.Nil
		quote.Items[i].QuoteID = quote.ID
	}
	if len(quote.Items) == 0 {
		return nil
	}
	return db.Create(&quote.Items).Error
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.QuoteStatus) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	return result.RowsAffected == 1, result.Error
}

func (r *quoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("quote_id = ?", id).Delete(&entity.QuoteItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.Quote{}, "id = ?", id).Error
}

func (r *quoteRepository) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	db := conn(ctx, r.db)
	ids := db.Model(&entity.Quote{}).Select("id").Where("client_id = ?", clientID)
	if err := db.Where("quote_id IN (?)", ids).Delete(&entity.QuoteItem{}).Error; err != nil {
		return err
	}
	return db.Where("client_id = ?", clientID).Delete(&entity.Quote{}).Error
}

func (r *quoteRepository) List(ctx context.Context, params *domainRepo.QuoteFilterParams) ([]entity.Quote, int64, error) {
	var quotes []entity.Quote
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&entity.Quote{}).Scopes(documentFilters("quotes", params.DocumentFilterParams))
		if params.Status != nil {
			db = db.Where("quotes.status = ?", *params.Status)
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
		Order("quotes.created_at DESC").
		Find(&quotes).Error

	return quotes, total, err
}

func (r *quoteRepository) ListRecent(ctx context.Context, limit int) ([]entity.Quote, error) {
	var quotes []entity.Quote
	err := conn(ctx, r.db).Preload("Client").
		Order("created_at DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Quote{}).Count(&total).Error
	return total, err
}

// documentFilters applies the client and search filters shared by every
// document list. Search matches the number and the client name.
func documentFilters(table string, params domainRepo.DocumentFilterParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.ClientID != nil {
			db = db.Where(table+".client_id = ?", *params.ClientID)
		}
		if params.Search != "" {
			like := containsFold(params.Search)
			db = db.Joins("LEFT JOIN clients ON clients.id = "+table+".client_id").
				Where("LOWER("+table+".number) LIKE ? OR LOWER(clients.name) LIKE ?", like, like)
		}
		return db
	}
}
