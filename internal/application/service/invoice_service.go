package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice operations
type InvoiceService struct {
	tx          repository.Transactor
	invoiceRepo repository.InvoiceRepository
	numbers     documentNumbers
	notifier    *Notifier
	now         Clock
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	tx repository.Transactor,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	sequenceRepo repository.SequenceRepository,
	notifier *Notifier,
) *InvoiceService {
	return &InvoiceService{
		tx:          tx,
		invoiceRepo: invoiceRepo,
		numbers:     documentNumbers{clientRepo: clientRepo, sequenceRepo: sequenceRepo, docType: enum.DocumentTypeInvoice},
		notifier:    notifier,
		now:         utcNow,
	}
}

// InvoiceInput represents the create and update invoice input. A zero
// DueDate means now plus the payment term.
type InvoiceInput struct {
	DocumentInput
	DueDate     time.Time
	DepositPaid decimal.Decimal
}

func invoiceItems(lines []entity.LineItem) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, len(lines))
	for i, line := range lines {
		items[i] = entity.InvoiceItem{LineItem: line}
	}
	return items
}

func (s *InvoiceService) project(invoice *entity.Invoice) *entity.Invoice {
	invoice.EffectiveStatus = billing.EffectiveInvoiceStatus(invoice.Status, invoice.DueDate, s.now())
	return invoice
}

// CreateInvoice creates a DRAFT invoice with the next FAC number
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *InvoiceInput) (*entity.Invoice, error) {
	if err := input.validate(nonNegative("deposit_paid", input.DepositPaid)...); err != nil {
		return nil, err
	}

	now := s.now()
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = now.Add(billing.InvoicePaymentTerm)
	}
	invoice := &entity.Invoice{
		ClientID:    input.ClientID,
		DueDate:     dueDate,
		DepositPaid: input.DepositPaid,
		Status:      enum.InvoiceStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	invoice.Items = invoiceItems(billing.Price(&invoice.PricedDocument, input.Items, input.Discount, input.TaxRate))
	invoice.BalanceDue = invoice.Total.Sub(invoice.DepositPaid)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}
		number, err := s.numbers.next(ctx, now)
		if err != nil {
			return err
		}
		invoice.Number = number
		return apperror.FromStoreError(s.invoiceRepo.Create(ctx, invoice), "Invoice number already taken")
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("invoices").Info().Str("number", invoice.Number).Msg("Invoice created")
	return s.GetInvoice(ctx, invoice.ID)
}

// GetInvoice retrieves an invoice with its client and items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return s.project(invoice), nil
}

// ListInvoices lists invoices, newest first. Status OVERDUE filters on the
// projected status.
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	params.Now = s.now()
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		s.project(&invoices[i])
	}
	return pagination.NewPaginatedResult(invoices, params.Pagination, total), nil
}

// UpdateInvoice reprices a DRAFT invoice and replaces its items
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, input *InvoiceInput) (*entity.Invoice, error) {
	if err := input.validate(nonNegative("deposit_paid", input.DepositPaid)...); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if err := billing.InvoiceLifecycle.CheckEditable(invoice.Status); err != nil {
			return err
		}
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}

		invoice.ClientID = input.ClientID
		if !input.DueDate.IsZero() {
			invoice.DueDate = input.DueDate
		}
		invoice.DepositPaid = input.DepositPaid
		invoice.UpdatedAt = s.now()
		invoice.Items = invoiceItems(billing.Price(&invoice.PricedDocument, input.Items, input.Discount, input.TaxRate))
		invoice.BalanceDue = invoice.Total.Sub(invoice.DepositPaid)
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// ChangeInvoiceStatus applies a manual status transition. OVERDUE is derived
// from the due date and cannot be set.
func (s *InvoiceService) ChangeInvoiceStatus(ctx context.Context, id uuid.UUID, target enum.InvoiceStatus) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	switch target {
	case enum.InvoiceStatusOverdue:
		return nil, apperror.NewInvalidTransitionError("OVERDUE is derived from the due date and cannot be set")
	case enum.InvoiceStatusSent:
		return nil, apperror.NewInvalidTransitionError("invoices are sent through the send action only")
	}
	if err := billing.InvoiceLifecycle.Check(invoice.Status, target); err != nil {
		return nil, err
	}

	ok, err := s.invoiceRepo.UpdateStatus(ctx, id, invoice.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewConflictError("Invoice status changed concurrently")
	}
	return s.GetInvoice(ctx, id)
}

// SendInvoice emails the invoice. A DRAFT invoice becomes SENT once the email
// is delivered. Cancelled invoices cannot be sent.
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == enum.InvoiceStatusCancelled {
		return nil, apperror.NewInvalidTransitionError("cannot send a CANCELLED invoice")
	}

	if err := s.notifier.SendInvoice(ctx, invoice); err != nil {
		logger.WithComponent("invoices").Error().Err(err).Str("number", invoice.Number).Msg("Failed to send invoice")
		return nil, err
	}

	if invoice.Status == enum.InvoiceStatusDraft {
		ok, err := s.invoiceRepo.UpdateStatus(ctx, id, enum.InvoiceStatusDraft, enum.InvoiceStatusSent)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.WithComponent("invoices").Warn().Str("number", invoice.Number).Msg("Invoice status changed while sending")
			return nil, apperror.NewConflictError("Invoice status changed while it was being sent")
		}
	}
	return s.GetInvoice(ctx, id)
}

// DeleteInvoice deletes an invoice and its items
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// InvoicePDF renders the invoice
func (s *InvoiceService) InvoicePDF(ctx context.Context, id uuid.UUID) (*email.Attachment, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.notifier.InvoicePDF(invoice)
}
