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

type purchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *gorm.DB) domainRepo.PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	return conn(ctx, r.db).Omit("Client").Create(order).Error
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error) {
	return r.first(conn(ctx, r.db), id)
}

// GetByIDForUpdate locks the purchase order row until the surrounding transaction ends
func (r *purchaseOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error) {
	return r.first(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *purchaseOrderRepository) first(db *gorm.DB, id uuid.UUID) (*entity.PurchaseOrder, error) {
	var order entity.PurchaseOrder
	err := db.Preload("Client").
		Preload("Items", orderedItems).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	db := conn(ctx, r.db)
	columns := append([]string{"valid_until"}, pricedColumns...)
	if err := db.Model(order).Select(columns).Omit(clause.Associations).Updates(order).Error; err != nil {
		return err
	}
	if err := db.Where("purchase_order_id = ?", order.ID).Delete(&entity.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.Nil
		order.Items[i].PurchaseOrderID = order.ID
	}
	if len(order.Items) == 0 {
		return nil
	}
	return db.Create(&order.Items).Error
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enum.PurchaseOrderStatus) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	return result.RowsAffected == 1, result.Error
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", id).Delete(&entity.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.PurchaseOrder{}, "id = ?", id).Error
}

func (r *purchaseOrderRepository) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	db := conn(ctx, r.db)
	ids := db.Model(&entity.PurchaseOrder{}).Select("id").Where("client_id = ?", clientID)
	if err := db.Where("purchase_order_id IN (?)", ids).Delete(&entity.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("client_id = ?", clientID).Delete(&entity.PurchaseOrder{}).Error
}

func (r *purchaseOrderRepository) List(ctx context.Context, params *domainRepo.PurchaseOrderFilterParams) ([]entity.PurchaseOrder, int64, error) {
	var orders []entity.PurchaseOrder
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&entity.PurchaseOrder{}).Scopes(documentFilters("purchase_orders", params.DocumentFilterParams))
		if params.Status != nil {
			db = db.Where("purchase_orders.status = ?", *params.Status)
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
		Order("purchase_orders.created_at DESC").
		Find(&orders).Error

	return orders, total, err
}
