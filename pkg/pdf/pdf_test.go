package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	doc := Document{
		Title:     "DEVIS",
		Number:    "DEV-2025-0001",
		IssuedAt:  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		DateLabel: "Valable jusqu'au",
		Date:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Issuer:    Party{Name: "JimmyTech", Email: "contact@example.com"},
		Client:    Party{Name: "Élodie Martin", Address: "1 rue de la Paix\n75002 Paris"},
		Lines: []Line{
			{Description: "Diagnostic informatique", Quantity: "2", UnitPrice: "50.00", Total: "100.00"},
		},
		Totals: []Row{
			{Label: "Sous-total", Value: "100.00 €"},
			{Label: "Total TTC", Value: "108.00 €", Bold: true},
		},
		Footer: "Merci pour votre confiance.",
	}

	out, err := NewRenderer().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderManyLinesPaginates(t *testing.T) {
	lines := make([]Line, 80)
	for i := range lines {
		lines[i] = Line{Description: "Ligne", Quantity: "1", UnitPrice: "1.00", Total: "1.00"}
	}

	out, err := NewRenderer().Render(Document{Title: "FACTURE", Number: "FAC-2025-0001", Lines: lines})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
