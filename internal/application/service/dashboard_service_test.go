package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createQuote(t)
	paid, err := f.invoices.CreateInvoice(ctx, &InvoiceInput{DocumentInput: f.sampleInput()})
	require.NoError(t, err)
	_, err = f.invoices.ChangeInvoiceStatus(ctx, paid.ID, enum.InvoiceStatusPaid)
	require.NoError(t, err)

	late, err := f.invoices.CreateInvoice(ctx, &InvoiceInput{
		DocumentInput: f.sampleInput(),
		DueDate:       fixedNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = f.invoices.SendInvoice(ctx, late.ID)
	require.NoError(t, err)

	stats, err := f.dashboard.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalQuotes)
	assert.Equal(t, int64(2), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(1), stats.OverdueCount)
	requireDecimal(t, 108, stats.YearRevenue)
	assert.Len(t, stats.RecentQuotes, 1)
	require.Len(t, stats.RecentInvoices, 2)

	effective := map[enum.InvoiceStatus]bool{}
	for _, inv := range stats.RecentInvoices {
		effective[inv.EffectiveStatus] = true
	}
	assert.True(t, effective[enum.InvoiceStatusPaid])
	assert.True(t, effective[enum.InvoiceStatusOverdue])
}
