package service

import (
	"context"
	"strings"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CatalogService handles the billable service catalog
type CatalogService struct {
	serviceRepo repository.ServiceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(serviceRepo repository.ServiceRepository) *CatalogService {
	return &CatalogService{serviceRepo: serviceRepo}
}

// CreateServiceInput represents the create service input
type CreateServiceInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Duration    int
	Description *string
}

// CreateService adds a service to the catalog
func (s *CatalogService) CreateService(ctx context.Context, input *CreateServiceInput) (*entity.Service, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(input.Category) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "category", Message: "is required"})
	}
	if input.Price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if input.Duration < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "duration", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	svc := &entity.Service{
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		Duration:    input.Duration,
		Description: input.Description,
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices lists the catalog, optionally restricted to one category
func (s *CatalogService) ListServices(ctx context.Context, category string) ([]entity.Service, error) {
	services, err := s.serviceRepo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []entity.Service{}
	}
	return services, nil
}
