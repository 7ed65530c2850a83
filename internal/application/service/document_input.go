package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DocumentInput holds the priced fields common to every document type
type DocumentInput struct {
	ClientID uuid.UUID
	Items    []billing.Item
	Discount decimal.Decimal
	TaxRate  decimal.Decimal
}

func (in *DocumentInput) validate(extra ...apperror.FieldError) error {
	var fieldErrors []apperror.FieldError
	if in.ClientID == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "client_id", Message: "is required"})
	}
	if err := billing.Validate(in.Items, in.Discount, in.TaxRate); err != nil {
		fieldErrors = append(fieldErrors, apperror.GetAppError(err).Errors...)
	}
	fieldErrors = append(fieldErrors, extra...)
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func requireDate(field string, t time.Time) []apperror.FieldError {
	if t.IsZero() {
		return []apperror.FieldError{{Field: field, Message: "is required"}}
	}
	return nil
}

func nonNegative(field string, d decimal.Decimal) []apperror.FieldError {
	if d.IsNegative() {
		return []apperror.FieldError{{Field: field, Message: "must not be negative"}}
	}
	return nil
}

// documentNumbers allocates numbers for one document type
type documentNumbers struct {
	clientRepo   repository.ClientRepository
	sequenceRepo repository.SequenceRepository
	docType      enum.DocumentType
}

// requireClient fails with NotFound when the client does not exist
func (d documentNumbers) requireClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := d.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// next must run inside the creating transaction
func (d documentNumbers) next(ctx context.Context, now time.Time) (string, error) {
	ordinal, err := d.sequenceRepo.Next(ctx, d.docType, now.Year())
	if err != nil {
		return "", apperror.FromStoreError(err, "Document number allocation conflicted, retry")
	}
	return billing.FormatNumber(d.docType, now.Year(), ordinal), nil
}
