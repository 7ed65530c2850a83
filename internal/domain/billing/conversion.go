package billing

import (
	"time"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
)

// InvoicePaymentTerm is the due delay of invoices created without a due date
const InvoicePaymentTerm = 30 * 24 * time.Hour

// InvoiceFromQuote builds the invoice for an accepted quote. Items and totals
// are copied as stored, without recomputation. The caller allocates the
// number and persists both records in one transaction.
func InvoiceFromQuote(quote *entity.Quote, number string, now time.Time) (*entity.Invoice, error) {
	if err := QuoteLifecycle.Check(quote.Status, enum.QuoteStatusConverted); err != nil {
		return nil, err
	}

	quoteID := quote.ID
	invoice := &entity.Invoice{
		ClientID: quote.ClientID,
		QuoteID:  &quoteID,
		PricedDocument: entity.PricedDocument{
			Number:    number,
			Discount:  quote.Discount,
			TaxRate:   quote.TaxRate,
			Subtotal:  quote.Subtotal,
			TaxAmount: quote.TaxAmount,
			Total:     quote.Total,
		},
		DueDate:     now.Add(InvoicePaymentTerm),
		DepositPaid: quote.Deposit,
		BalanceDue:  quote.Total.Sub(quote.Deposit),
		Status:      enum.InvoiceStatusSent,
		CreatedAt:   now,
	}

	invoice.Items = make([]entity.InvoiceItem, len(quote.Items))
	for i, item := range quote.Items {
		invoice.Items[i] = entity.InvoiceItem{LineItem: item.LineItem}
	}
	return invoice, nil
}
