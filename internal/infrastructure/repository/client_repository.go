package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/pkg/pagination"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return conn(ctx, r.db).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := conn(ctx, r.db).First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return conn(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Client{}, "id = ?", id).Error
}

func (r *clientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&entity.Client{})
		if search != "" {
			like := containsFold(search)
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company_name) LIKE ?", like, like, like)
		}
		return db
	}

	if err := conn(ctx, r.db).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := conn(ctx, r.db).Scopes(filter).
		Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&clients).Error

	return clients, total, err
}

func (r *clientRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Client{}).Count(&total).Error
	return total, err
}

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service catalog repository
func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Create(service).Error
}

func (r *serviceRepository) List(ctx context.Context, category string) ([]entity.Service, error) {
	var services []entity.Service
	query := conn(ctx, r.db).Model(&entity.Service{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("category ASC, name ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&entity.Service{}).Count(&total).Error
	return total, err
}
