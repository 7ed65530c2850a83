package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/billing-api/internal/config"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pdf"
	"github.com/shopspring/decimal"
)

// Renderer turns a document view into PDF bytes
type Renderer interface {
	Render(doc pdf.Document) ([]byte, error)
}

// NotifierConfig holds the issuer identity and the addresses used in emails
type NotifierConfig struct {
	Company    config.CompanyConfig
	PublicURL  string
	AdminEmail string
}

// Notifier renders documents and emails them to clients and the administrator
type Notifier struct {
	renderer Renderer
	sender   email.Sender
	config   NotifierConfig
	now      Clock
}

// NewNotifier creates a new notifier
func NewNotifier(renderer Renderer, sender email.Sender, cfg NotifierConfig) *Notifier {
	return &Notifier{
		renderer: renderer,
		sender:   sender,
		config:   cfg,
		now:      utcNow,
	}
}

// QuotePDF renders the quote as a named attachment
func (n *Notifier) QuotePDF(quote *entity.Quote) (*email.Attachment, error) {
	lines := make([]entity.LineItem, len(quote.Items))
	for i, item := range quote.Items {
		lines[i] = item.LineItem
	}
	rows := totalRows(quote.PricedDocument)
	if quote.Deposit.IsPositive() {
		rows = append(rows, pdf.Row{Label: "Acompte", Value: money(quote.Deposit)})
	}
	view := n.view("DEVIS", quote.Number, quote.CreatedAt, "Valable jusqu'au", quote.ValidUntil, quote.Client, lines, rows)
	return n.render(enum.DocumentTypeQuote, quote.Client, view)
}

// PurchaseOrderPDF renders the purchase order as a named attachment
func (n *Notifier) PurchaseOrderPDF(order *entity.PurchaseOrder) (*email.Attachment, error) {
	lines := make([]entity.LineItem, len(order.Items))
	for i, item := range order.Items {
		lines[i] = item.LineItem
	}
	view := n.view("BON DE COMMANDE", order.Number, order.CreatedAt, "Valable jusqu'au", order.ValidUntil, order.Client, lines, totalRows(order.PricedDocument))
	return n.render(enum.DocumentTypePurchaseOrder, order.Client, view)
}

// InvoicePDF renders the invoice as a named attachment
func (n *Notifier) InvoicePDF(invoice *entity.Invoice) (*email.Attachment, error) {
	lines := make([]entity.LineItem, len(invoice.Items))
	for i, item := range invoice.Items {
		lines[i] = item.LineItem
	}
	rows := totalRows(invoice.PricedDocument)
	if invoice.DepositPaid.IsPositive() {
		rows = append(rows, pdf.Row{Label: "Acompte versé", Value: money(invoice.DepositPaid)})
	}
	rows = append(rows, pdf.Row{Label: "Reste à payer", Value: money(invoice.BalanceDue), Bold: true})
	view := n.view("FACTURE", invoice.Number, invoice.CreatedAt, "Échéance", invoice.DueDate, invoice.Client, lines, rows)
	return n.render(enum.DocumentTypeInvoice, invoice.Client, view)
}

// SendQuote emails the quote with its PDF and public link
func (n *Notifier) SendQuote(ctx context.Context, quote *entity.Quote) error {
	attachment, err := n.QuotePDF(quote)
	if err != nil {
		return err
	}
	body, err := email.RenderQuote(email.DocumentData{
		ClientName:  quote.Client.Name,
		Number:      quote.Number,
		Total:       billing.Display(quote.Total),
		CompanyName: n.config.Company.Name,
		Link:        n.QuoteLink(quote),
	})
	if err != nil {
		return apperror.NewDependencyError("Email rendering", err)
	}
	return n.deliver(ctx, email.Message{
		To:          quote.Client.Email,
		Subject:     "Votre devis " + quote.Number,
		HTML:        body,
		Attachments: []email.Attachment{*attachment},
	})
}

// SendPurchaseOrder emails the purchase order with its PDF
func (n *Notifier) SendPurchaseOrder(ctx context.Context, order *entity.PurchaseOrder) error {
	attachment, err := n.PurchaseOrderPDF(order)
	if err != nil {
		return err
	}
	body, err := email.RenderPurchaseOrder(email.DocumentData{
		ClientName:  order.Client.Name,
		Number:      order.Number,
		Total:       billing.Display(order.Total),
		CompanyName: n.config.Company.Name,
	})
	if err != nil {
		return apperror.NewDependencyError("Email rendering", err)
	}
	return n.deliver(ctx, email.Message{
		To:          order.Client.Email,
		Subject:     "Votre Bon de Commande " + order.Number,
		HTML:        body,
		Attachments: []email.Attachment{*attachment},
	})
}

// SendInvoice emails the invoice with its PDF and due date
func (n *Notifier) SendInvoice(ctx context.Context, invoice *entity.Invoice) error {
	attachment, err := n.InvoicePDF(invoice)
	if err != nil {
		return err
	}
	body, err := email.RenderInvoice(email.DocumentData{
		ClientName:  invoice.Client.Name,
		Number:      invoice.Number,
		Total:       billing.Display(invoice.Total),
		CompanyName: n.config.Company.Name,
		DueDate:     invoice.DueDate.Format("02/01/2006"),
	})
	if err != nil {
		return apperror.NewDependencyError("Email rendering", err)
	}
	return n.deliver(ctx, email.Message{
		To:          invoice.Client.Email,
		Subject:     "Votre facture " + invoice.Number,
		HTML:        body,
		Attachments: []email.Attachment{*attachment},
	})
}

// NotifyQuoteResponse tells the administrator that a client answered a quote
func (n *Notifier) NotifyQuoteResponse(ctx context.Context, quote *entity.Quote, decision enum.QuoteStatus) error {
	label := "Refusé"
	if decision == enum.QuoteStatusAccepted {
		label = "Accepté"
	}
	clientName := ""
	if quote.Client != nil {
		clientName = quote.Client.Name
	}
	body, err := email.RenderResponse(email.ResponseData{
		Number:     quote.Number,
		Decision:   strings.ToLower(label),
		ClientName: clientName,
		Total:      billing.Display(quote.Total),
	})
	if err != nil {
		return apperror.NewDependencyError("Email rendering", err)
	}
	return n.deliver(ctx, email.Message{
		To:      n.config.AdminEmail,
		Subject: fmt.Sprintf("Devis %s %s", quote.Number, label),
		HTML:    body,
	})
}

// QuoteLink is the public page where the client answers the quote
func (n *Notifier) QuoteLink(quote *entity.Quote) string {
	return n.config.PublicURL + "/quote/" + quote.Token
}

func (n *Notifier) deliver(ctx context.Context, msg email.Message) error {
	if err := n.sender.Send(ctx, msg); err != nil {
		return apperror.NewDependencyError("Email delivery", err)
	}
	return nil
}

func (n *Notifier) render(docType enum.DocumentType, client *entity.Client, view pdf.Document) (*email.Attachment, error) {
	content, err := n.renderer.Render(view)
	if err != nil {
		return nil, apperror.NewDependencyError("PDF rendering", err)
	}
	return &email.Attachment{
		Filename: attachmentName(docType, client, n.now()),
		Content:  content,
	}, nil
}

func (n *Notifier) view(title, number string, issuedAt time.Time, dateLabel string, date time.Time, client *entity.Client, lines []entity.LineItem, rows []pdf.Row) pdf.Document {
	doc := pdf.Document{
		Title:     title,
		Number:    number,
		IssuedAt:  issuedAt,
		DateLabel: dateLabel,
		Date:      date,
		Issuer: pdf.Party{
			Name:    n.config.Company.Name,
			Address: n.config.Company.Address,
			Email:   n.config.Company.Email,
			Phone:   n.config.Company.Phone,
		},
		Totals: rows,
	}
	if client != nil {
		doc.Client = pdf.Party{
			Name:    client.Name,
			Company: deref(client.CompanyName),
			Email:   client.Email,
			Phone:   deref(client.Phone),
			Address: deref(client.Address),
		}
	}
	doc.Lines = make([]pdf.Line, len(lines))
	for i, line := range lines {
		doc.Lines[i] = pdf.Line{
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   billing.Display(line.UnitPrice),
			Total:       billing.Display(line.Total),
		}
	}
	return doc
}

func totalRows(doc entity.PricedDocument) []pdf.Row {
	rows := []pdf.Row{{Label: "Sous-total", Value: money(doc.Subtotal)}}
	if doc.Discount.IsPositive() {
		rows = append(rows,
			pdf.Row{Label: "Remise", Value: "-" + money(doc.Discount)},
			pdf.Row{Label: "Total HT", Value: money(billing.TaxableAmount(doc))},
		)
	}
	rows = append(rows,
		pdf.Row{Label: fmt.Sprintf("TVA (%s%%)", doc.TaxRate.String()), Value: money(doc.TaxAmount)},
		pdf.Row{Label: "Total TTC", Value: money(doc.Total), Bold: true},
	)
	return rows
}

// attachmentName is {Dev|BC|Fact}{ClientName without whitespace}-{YYYY-MM-DD}.pdf
func attachmentName(docType enum.DocumentType, client *entity.Client, now time.Time) string {
	prefix := map[enum.DocumentType]string{
		enum.DocumentTypeQuote:         "Dev",
		enum.DocumentTypePurchaseOrder: "BC",
		enum.DocumentTypeInvoice:       "Fact",
	}[docType]
	name := ""
	if client != nil {
		name = strings.Join(strings.Fields(client.Name), "")
	}
	return fmt.Sprintf("%s%s-%s.pdf", prefix, name, now.Format("2006-01-02"))
}

func money(amount decimal.Decimal) string {
	return billing.Display(amount) + " €"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
