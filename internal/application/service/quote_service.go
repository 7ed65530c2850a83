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

// QuoteService handles quote-related operations
type QuoteService struct {
	tx          repository.Transactor
	quoteRepo   repository.QuoteRepository
	invoiceRepo repository.InvoiceRepository
	numbers     documentNumbers
	invoices    documentNumbers
	notifier    *Notifier
	now         Clock
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	tx repository.Transactor,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	sequenceRepo repository.SequenceRepository,
	notifier *Notifier,
) *QuoteService {
	return &QuoteService{
		tx:          tx,
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		numbers:     documentNumbers{clientRepo: clientRepo, sequenceRepo: sequenceRepo, docType: enum.DocumentTypeQuote},
		invoices:    documentNumbers{clientRepo: clientRepo, sequenceRepo: sequenceRepo, docType: enum.DocumentTypeInvoice},
		notifier:    notifier,
		now:         utcNow,
	}
}

// QuoteInput represents the create and update quote input
type QuoteInput struct {
	DocumentInput
	ValidUntil time.Time
	Deposit    decimal.Decimal
}

func (in *QuoteInput) validate() error {
	extra := append(requireDate("valid_until", in.ValidUntil), nonNegative("deposit", in.Deposit)...)
	return in.DocumentInput.validate(extra...)
}

func quoteItems(lines []entity.LineItem) []entity.QuoteItem {
	items := make([]entity.QuoteItem, len(lines))
	for i, line := range lines {
		items[i] = entity.QuoteItem{LineItem: line}
	}
	return items
}

// CreateQuote creates a DRAFT quote with the next DEV number of the year
func (s *QuoteService) CreateQuote(ctx context.Context, input *QuoteInput) (*entity.Quote, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	quote := &entity.Quote{
		ClientID:   input.ClientID,
		ValidUntil: input.ValidUntil,
		Deposit:    input.Deposit,
		Status:     enum.QuoteStatusDraft,
		Token:      uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	quote.Items = quoteItems(billing.Price(&quote.PricedDocument, input.Items, input.Discount, input.TaxRate))

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}
		number, err := s.numbers.next(ctx, now)
		if err != nil {
			return err
		}
		quote.Number = number
		return apperror.FromStoreError(s.quoteRepo.Create(ctx, quote), "Quote number already taken")
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("quotes").Info().Str("number", quote.Number).Msg("Quote created")
	return s.GetQuote(ctx, quote.ID)
}

// GetQuote retrieves a quote with its client and items
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	return quote, nil
}

// GetQuoteByToken retrieves a quote through its public token
func (s *QuoteService) GetQuoteByToken(ctx context.Context, token string) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	return quote, nil
}

// ListQuotes lists quotes, newest first
func (s *QuoteService) ListQuotes(ctx context.Context, params *repository.QuoteFilterParams) (*pagination.PaginatedResult[entity.Quote], error) {
	quotes, total, err := s.quoteRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(quotes, params.Pagination, total), nil
}

// UpdateQuote reprices a DRAFT quote and replaces its items
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, input *QuoteInput) (*entity.Quote, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return apperror.NewNotFoundError("Quote")
		}
		if err := billing.QuoteLifecycle.CheckEditable(quote.Status); err != nil {
			return err
		}
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}

		quote.ClientID = input.ClientID
		quote.ValidUntil = input.ValidUntil
		quote.Deposit = input.Deposit
		quote.UpdatedAt = s.now()
		quote.Items = quoteItems(billing.Price(&quote.PricedDocument, input.Items, input.Discount, input.TaxRate))
		return s.quoteRepo.Update(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuote(ctx, id)
}

// ChangeQuoteStatus applies a manual status transition. CONVERTED is only
// reachable through ConvertToInvoice.
func (s *QuoteService) ChangeQuoteStatus(ctx context.Context, id uuid.UUID, target enum.QuoteStatus) (*entity.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	switch target {
	case enum.QuoteStatusConverted:
		return nil, apperror.NewInvalidTransitionError("quotes are converted through the convert action only")
	case enum.QuoteStatusSent:
		return nil, apperror.NewInvalidTransitionError("quotes are sent through the send action only")
	}
	if err := billing.QuoteLifecycle.Check(quote.Status, target); err != nil {
		return nil, err
	}

	ok, err := s.quoteRepo.UpdateStatus(ctx, id, quote.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewConflictError("Quote status changed concurrently")
	}
	return s.GetQuote(ctx, id)
}

// SendQuote emails the quote to its client. A DRAFT quote becomes SENT once
// the email is delivered; on failure the status is left unchanged.
func (s *QuoteService) SendQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendQuote(ctx, quote); err != nil {
		logger.WithComponent("quotes").Error().Err(err).Str("number", quote.Number).Msg("Failed to send quote")
		return nil, err
	}

	if quote.Status == enum.QuoteStatusDraft {
		ok, err := s.quoteRepo.UpdateStatus(ctx, id, enum.QuoteStatusDraft, enum.QuoteStatusSent)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.WithComponent("quotes").Warn().Str("number", quote.Number).Msg("Quote status changed while sending")
			return nil, apperror.NewConflictError("Quote status changed while it was being sent")
		}
	}
	return s.GetQuote(ctx, id)
}

// RespondToQuote records the client's decision taken from the public page
// and notifies the administrator
func (s *QuoteService) RespondToQuote(ctx context.Context, token string, action enum.QuoteStatus) (*entity.Quote, error) {
	if action != enum.QuoteStatusAccepted && action != enum.QuoteStatusRejected {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "action", Message: "must be ACCEPTED or REJECTED"},
		})
	}

	quote, err := s.GetQuoteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if quote.Status != enum.QuoteStatusDraft && quote.Status != enum.QuoteStatusSent {
		return nil, apperror.NewInvalidTransitionError("Quote already processed")
	}

	ok, err := s.quoteRepo.UpdateStatus(ctx, quote.ID, quote.Status, action)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewInvalidTransitionError("Quote already processed")
	}
	quote.Status = action

	if err := s.notifier.NotifyQuoteResponse(ctx, quote, action); err != nil {
		logger.WithComponent("quotes").Error().Err(err).Str("number", quote.Number).Msg("Failed to notify quote response")
		return nil, err
	}
	return s.GetQuote(ctx, quote.ID)
}

// ConvertToInvoice turns an ACCEPTED quote into a SENT invoice and marks the
// quote CONVERTED, in one transaction
func (s *QuoteService) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	now := s.now()
	var invoiceID uuid.UUID

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return apperror.NewNotFoundError("Quote")
		}

		existing, err := s.invoiceRepo.GetByQuoteID(ctx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewInvalidTransitionError("Quote already converted to invoice " + existing.Number)
		}
		if err := billing.QuoteLifecycle.Check(quote.Status, enum.QuoteStatusConverted); err != nil {
			return err
		}

		number, err := s.invoices.next(ctx, now)
		if err != nil {
			return err
		}
		invoice, err := billing.InvoiceFromQuote(quote, number, now)
		if err != nil {
			return err
		}
		invoice.UpdatedAt = now
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return apperror.FromStoreError(err, "Quote already converted")
		}

		ok, err := s.quoteRepo.UpdateStatus(ctx, id, enum.QuoteStatusAccepted, enum.QuoteStatusConverted)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewConflictError("Quote status changed concurrently")
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	invoice.EffectiveStatus = billing.EffectiveInvoiceStatus(invoice.Status, invoice.DueDate, s.now())
	logger.WithComponent("quotes").Info().Str("invoice", invoice.Number).Str("quote_id", id.String()).Msg("Quote converted")
	return invoice, nil
}

// DeleteQuote deletes a quote. An invoice converted from it is kept and
// detached.
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetQuote(ctx, id); err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.DetachQuote(ctx, id); err != nil {
			return err
		}
		return s.quoteRepo.Delete(ctx, id)
	})
}

// QuotePDF renders the quote
func (s *QuoteService) QuotePDF(ctx context.Context, id uuid.UUID) (*email.Attachment, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.notifier.QuotePDF(quote)
}
