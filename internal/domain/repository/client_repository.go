package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)
	Count(ctx context.Context) (int64, error)
}

// ServiceRepository defines the interface for the service catalog
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	List(ctx context.Context, category string) ([]entity.Service, error)
	Count(ctx context.Context) (int64, error)
}
