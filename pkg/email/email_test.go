package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutHostSkips(t *testing.T) {
	sender := NewSMTPSender(Config{})
	err := sender.Send(context.Background(), Message{To: "client@example.com", Subject: "Devis"})
	assert.NoError(t, err)
}

func TestBuildMessageCarriesAttachment(t *testing.T) {
	sender := NewSMTPSender(Config{SMTPHost: "smtp.example.com", SMTPPort: 587, FromName: "Billing", FromEmail: "billing@example.com"})
	m := sender.buildMessage(Message{
		To:          "client@example.com",
		Subject:     "Quote DEV-2025-0001",
		HTML:        "<p>Hello</p>",
		Attachments: []Attachment{{Filename: "DevAlice-2025-01-02.pdf", Content: []byte("%PDF-1.3")}},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Quote DEV-2025-0001")
	assert.Contains(t, raw, "To: client@example.com")
	assert.Contains(t, raw, `filename="DevAlice-2025-01-02.pdf"`)
}

func TestRenderQuoteEscapesAndLinks(t *testing.T) {
	body, err := RenderQuote(DocumentData{
		ClientName:  "Alice <script>",
		Number:      "DEV-2025-0001",
		CompanyName: "JimmyTech",
		Link:        "https://billing.example.com/quote/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "DEV-2025-0001")
	assert.Contains(t, body, `href="https://billing.example.com/quote/abc"`)
	assert.NotContains(t, body, "<script>")
}

func TestRenderInvoiceAndResponse(t *testing.T) {
	body, err := RenderInvoice(DocumentData{ClientName: "Bob", Number: "FAC-2025-0003", Total: "108.00", DueDate: "14/02/2025"})
	require.NoError(t, err)
	assert.Contains(t, body, "108.00 €")
	assert.Contains(t, body, "14/02/2025")

	notice, err := RenderResponse(ResponseData{Number: "DEV-2025-0001", Decision: "ACCEPTÉ", ClientName: "Bob", Total: "108.00"})
	require.NoError(t, err)
	assert.Contains(t, notice, "ACCEPTÉ")
}
