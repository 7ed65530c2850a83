package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	tx          repository.Transactor
	clientRepo  repository.ClientRepository
	quoteRepo   repository.QuoteRepository
	orderRepo   repository.PurchaseOrderRepository
	invoiceRepo repository.InvoiceRepository
}

// NewClientService creates a new client service
func NewClientService(
	tx repository.Transactor,
	clientRepo repository.ClientRepository,
	quoteRepo repository.QuoteRepository,
	orderRepo repository.PurchaseOrderRepository,
	invoiceRepo repository.InvoiceRepository,
) *ClientService {
	return &ClientService{
		tx:          tx,
		clientRepo:  clientRepo,
		quoteRepo:   quoteRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
	}
}

// ClientInput represents the create and update client input
type ClientInput struct {
	Name        string
	CompanyName *string
	Email       string
	Phone       *string
	Address     *string
}

func (in *ClientInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	client := &entity.Client{
		Name:        strings.TrimSpace(input.Name),
		CompanyName: input.CompanyName,
		Email:       strings.TrimSpace(input.Email),
		Phone:       input.Phone,
		Address:     input.Address,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists clients, optionally filtered by name, company or email
func (s *ClientService) ListClients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(clients, params, total), nil
}

// UpdateClient replaces the client fields
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(input.Name)
	client.CompanyName = input.CompanyName
	client.Email = strings.TrimSpace(input.Email)
	client.Phone = input.Phone
	client.Address = input.Address

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient deletes a client together with its invoices, quotes and
// purchase orders
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.DeleteByClient(ctx, id); err != nil {
			return err
		}
		if err := s.quoteRepo.DeleteByClient(ctx, id); err != nil {
			return err
		}
		if err := s.orderRepo.DeleteByClient(ctx, id); err != nil {
			return err
		}
		return s.clientRepo.Delete(ctx, id)
	})
}
