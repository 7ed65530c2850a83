package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuoteComputesTotalsAndNumber(t *testing.T) {
	f := newFixture(t)

	quote := f.createQuote(t)

	assert.Equal(t, "DEV-2025-0001", quote.Number)
	assert.Equal(t, enum.QuoteStatusDraft, quote.Status)
	assert.NotEmpty(t, quote.Token)
	requireDecimal(t, 100, quote.Subtotal)
	requireDecimal(t, 18, quote.TaxAmount)
	requireDecimal(t, 108, quote.Total)
	require.Len(t, quote.Items, 1)
	requireDecimal(t, 100, quote.Items[0].Total)
	require.NotNil(t, quote.Client)
	assert.Equal(t, "Alice Martin", quote.Client.Name)

	second := f.createQuote(t)
	assert.Equal(t, "DEV-2025-0002", second.Number)
}

func TestCreateQuoteValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.quotes.CreateQuote(ctx, &QuoteInput{})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
	fields := map[string]bool{}
	for _, fe := range apperror.GetAppError(err).Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["client_id"])
	assert.True(t, fields["items"])
	assert.True(t, fields["valid_until"])

	input := &QuoteInput{DocumentInput: f.sampleInput(), ValidUntil: fixedNow}
	input.ClientID = uuid.New()
	_, err = f.quotes.CreateQuote(ctx, input)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	var count int64
	require.NoError(t, f.db.Model(&entity.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSendAcceptConvertScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	sent, err := f.quotes.SendQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusSent, sent.Status)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@example.com", msgs[0].To)
	assert.Equal(t, "Votre devis DEV-2025-0001", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "https://billing.example.com/quote/"+quote.Token)
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "DevAliceMartin-2025-03-10.pdf", msgs[0].Attachments[0].Filename)
	assert.True(t, strings.HasPrefix(string(msgs[0].Attachments[0].Content), "%PDF-"))

	accepted, err := f.quotes.RespondToQuote(ctx, quote.Token, enum.QuoteStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusAccepted, accepted.Status)

	msgs = f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "admin@example.com", msgs[1].To)
	assert.Equal(t, "Devis DEV-2025-0001 Accepté", msgs[1].Subject)
	assert.Contains(t, msgs[1].HTML, "108.00")

	invoice, err := f.quotes.ConvertToInvoice(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-0001", invoice.Number)
	assert.Equal(t, enum.InvoiceStatusSent, invoice.Status)
	assert.Equal(t, enum.InvoiceStatusSent, invoice.EffectiveStatus)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.WithinDuration(t, fixedNow.Add(billing.InvoicePaymentTerm), invoice.DueDate, time.Second)
	requireDecimal(t, 108, invoice.Total)
	requireDecimal(t, 18, invoice.TaxAmount)
	requireDecimal(t, 30, invoice.DepositPaid)
	requireDecimal(t, 78, invoice.BalanceDue)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Diagnostic informatique", invoice.Items[0].Description)

	converted, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusConverted, converted.Status)
}

func TestConvertTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)
	_, err = f.quotes.ConvertToInvoice(ctx, quote.ID)
	require.NoError(t, err)

	_, err = f.quotes.ConvertToInvoice(ctx, quote.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	var count int64
	require.NoError(t, f.db.Model(&entity.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConvertDraftQuoteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ConvertToInvoice(ctx, quote.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	var count int64
	require.NoError(t, f.db.Model(&entity.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)

	reloaded, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusDraft, reloaded.Status)

	// a failed conversion does not consume an invoice number
	invoice, err := f.invoices.CreateInvoice(ctx, &InvoiceInput{DocumentInput: f.sampleInput()})
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-0001", invoice.Number)
}

func TestManualConvertedStatusRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)

	_, err = f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusConverted)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	_, err = f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestUpdateQuoteOnlyWhileDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	input := &QuoteInput{DocumentInput: f.sampleInput(), ValidUntil: fixedNow.AddDate(0, 2, 0)}
	input.Items = append(input.Items, billing.Item{
		Description: "Installation",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(40),
	})
	input.Discount = decimal.Zero

	updated, err := f.quotes.UpdateQuote(ctx, quote.ID, input)
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Installation", updated.Items[1].Description)
	requireDecimal(t, 140, updated.Subtotal)
	requireDecimal(t, 168, updated.Total)
	assert.Equal(t, quote.Number, updated.Number)

	_, err = f.quotes.SendQuote(ctx, quote.ID)
	require.NoError(t, err)

	_, err = f.quotes.UpdateQuote(ctx, quote.ID, &QuoteInput{DocumentInput: f.sampleInput(), ValidUntil: fixedNow})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	reloaded, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 2)
	requireDecimal(t, 168, reloaded.Total)
}

func TestSendFailureLeavesStatusUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)
	f.sender.err = errors.New("dial tcp: connection refused")

	_, err := f.quotes.SendQuote(ctx, quote.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDependency))

	reloaded, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusDraft, reloaded.Status)
}

func TestResendKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)

	sent, err := f.quotes.SendQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusAccepted, sent.Status)
	assert.Len(t, f.sender.messages(), 1)
}

func TestRespondToQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.RespondToQuote(ctx, quote.Token, enum.QuoteStatusConverted)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.quotes.RespondToQuote(ctx, "unknown-token", enum.QuoteStatusAccepted)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	rejected, err := f.quotes.RespondToQuote(ctx, quote.Token, enum.QuoteStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusRejected, rejected.Status)

	_, err = f.quotes.RespondToQuote(ctx, quote.Token, enum.QuoteStatusAccepted)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestRespondNotificationFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)
	f.sender.err = errors.New("smtp: 554")

	_, err := f.quotes.RespondToQuote(ctx, quote.Token, enum.QuoteStatusAccepted)
	assert.True(t, apperror.IsKind(err, apperror.KindDependency))

	reloaded, err := f.quotes.GetQuoteByToken(ctx, quote.Token)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusAccepted, reloaded.Status)
}

func TestDeleteQuoteDetachesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)
	invoice, err := f.quotes.ConvertToInvoice(ctx, quote.ID)
	require.NoError(t, err)

	require.NoError(t, f.quotes.DeleteQuote(ctx, quote.ID))

	_, err = f.quotes.GetQuote(ctx, quote.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	kept, err := f.invoices.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.QuoteID)
	assert.Equal(t, invoice.Number, kept.Number)
}

func TestQuotePDF(t *testing.T) {
	f := newFixture(t)
	quote := f.createQuote(t)

	attachment, err := f.quotes.QuotePDF(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "DevAliceMartin-2025-03-10.pdf", attachment.Filename)
	assert.True(t, strings.HasPrefix(string(attachment.Content), "%PDF-"))

	_, err = f.quotes.QuotePDF(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestConcurrentConvertCreatesSingleInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.quotes.ConvertToInvoice(context.Background(), quote.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t,
			apperror.IsKind(err, apperror.KindInvalidTransition) || apperror.IsKind(err, apperror.KindConflict),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, f.db.Model(&entity.Invoice{}).Where("quote_id = ?", quote.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	converted, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusConverted, converted.Status)
}

func TestManualSentStatusRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusSent)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	assert.Empty(t, f.sender.messages())

	reloaded, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusDraft, reloaded.Status)
}

func TestSendQuoteReportsStatusChangedDuringDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	// the client declines while the email is on its way
	f.sender.onSend = func() {
		f.db.Model(&entity.Quote{}).Where("id = ?", quote.ID).Update("status", enum.QuoteStatusRejected)
	}

	_, err := f.quotes.SendQuote(ctx, quote.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.Len(t, f.sender.messages(), 1)

	reloaded, err := f.quotes.GetQuote(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusRejected, reloaded.Status)
}

type missingInvoiceRepo struct {
	repository.InvoiceRepository
}

func (missingInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return nil, nil
}

func TestConvertReportsInvoiceGoneAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t)

	_, err := f.quotes.ChangeQuoteStatus(ctx, quote.ID, enum.QuoteStatusAccepted)
	require.NoError(t, err)

	svc := *f.quotes
	svc.invoiceRepo = missingInvoiceRepo{f.quotes.invoiceRepo}

	invoice, err := svc.ConvertToInvoice(ctx, quote.ID)
	assert.Nil(t, invoice)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
