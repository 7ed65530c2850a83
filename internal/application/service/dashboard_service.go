package service

import (
	"context"
	"time"

	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const recentDocuments = 5

// DashboardService provides dashboard statistics
type DashboardService struct {
	clientRepo  repository.ClientRepository
	quoteRepo   repository.QuoteRepository
	invoiceRepo repository.InvoiceRepository
	now         Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	clientRepo repository.ClientRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
) *DashboardService {
	return &DashboardService{
		clientRepo:  clientRepo,
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		now:         utcNow,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalQuotes    int64            `json:"total_quotes"`
	TotalInvoices  int64            `json:"total_invoices"`
	TotalClients   int64            `json:"total_clients"`
	YearRevenue    decimal.Decimal  `json:"year_revenue"`
	OverdueCount   int64            `json:"overdue_count"`
	RecentQuotes   []entity.Quote   `json:"recent_quotes"`
	RecentInvoices []entity.Invoice `json:"recent_invoices"`
}

// GetDashboardStats returns dashboard statistics. Revenue is the sum of
// PAID invoices created during the current calendar year.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	stats := &DashboardStats{}
	var err error

	if stats.TotalQuotes, err = s.quoteRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalInvoices, err = s.invoiceRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalClients, err = s.clientRepo.Count(ctx); err != nil {
		return nil, err
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if stats.YearRevenue, err = s.invoiceRepo.SumPaidBetween(ctx, yearStart, yearStart.AddDate(1, 0, 0)); err != nil {
		return nil, err
	}
	if stats.OverdueCount, err = s.invoiceRepo.CountOverdue(ctx, now); err != nil {
		return nil, err
	}

	if stats.RecentQuotes, err = s.quoteRepo.ListRecent(ctx, recentDocuments); err != nil {
		return nil, err
	}
	if stats.RecentInvoices, err = s.invoiceRepo.ListRecent(ctx, recentDocuments); err != nil {
		return nil, err
	}
	for i := range stats.RecentInvoices {
		inv := &stats.RecentInvoices[i]
		inv.EffectiveStatus = billing.EffectiveInvoiceStatus(inv.Status, inv.DueDate, now)
	}
	if stats.RecentQuotes == nil {
		stats.RecentQuotes = []entity.Quote{}
	}
	if stats.RecentInvoices == nil {
		stats.RecentInvoices = []entity.Invoice{}
	}

	return stats, nil
}
