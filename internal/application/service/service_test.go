package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/billing-api/internal/config"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/billing-api/internal/infrastructure/repository"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type fakeSender struct {
	mu     sync.Mutex
	sent   []email.Message
	err    error
	onSend func()
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.Message(nil), f.sent...)
}

type fixture struct {
	db        *gorm.DB
	sender    *fakeSender
	clients   *ClientService
	catalog   *CatalogService
	quotes    *QuoteService
	orders    *PurchaseOrderService
	invoices  *InvoiceService
	dashboard *DashboardService
	client    *entity.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:svc_" + name + "?mode=memory&cache=shared",
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clock := func() time.Time { return fixedNow }
	tx := infraRepo.NewTransactor(db)
	clientRepo := infraRepo.NewClientRepository(db)
	quoteRepo := infraRepo.NewQuoteRepository(db)
	orderRepo := infraRepo.NewPurchaseOrderRepository(db)
	invoiceRepo := infraRepo.NewInvoiceRepository(db)
	sequenceRepo := infraRepo.NewSequenceRepository(db)

	sender := &fakeSender{}
	notifier := NewNotifier(pdf.NewRenderer(), sender, NotifierConfig{
		Company:    config.CompanyConfig{Name: "JimmyTech"},
		PublicURL:  "https://billing.example.com",
		AdminEmail: "admin@example.com",
	})
	notifier.now = clock

	f := &fixture{
		db:        db,
		sender:    sender,
		clients:   NewClientService(tx, clientRepo, quoteRepo, orderRepo, invoiceRepo),
		catalog:   NewCatalogService(infraRepo.NewServiceRepository(db)),
		quotes:    NewQuoteService(tx, quoteRepo, invoiceRepo, clientRepo, sequenceRepo, notifier),
		orders:    NewPurchaseOrderService(tx, orderRepo, clientRepo, sequenceRepo, notifier),
		invoices:  NewInvoiceService(tx, invoiceRepo, clientRepo, sequenceRepo, notifier),
		dashboard: NewDashboardService(clientRepo, quoteRepo, invoiceRepo),
	}
	f.quotes.now = clock
	f.orders.now = clock
	f.invoices.now = clock
	f.dashboard.now = clock

	f.client, err = f.clients.CreateClient(context.Background(), &ClientInput{Name: "Alice Martin", Email: "alice@example.com"})
	require.NoError(t, err)
	return f
}

// sampleInput is 2 x 50 with a discount of 10 and 20% tax: 100 / 90 / 18 / 108
func (f *fixture) sampleInput() DocumentInput {
	return DocumentInput{
		ClientID: f.client.ID,
		Items: []billing.Item{{
			Description: "Diagnostic informatique",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(50),
		}},
		Discount: decimal.NewFromInt(10),
		TaxRate:  decimal.NewFromInt(20),
	}
}

func (f *fixture) createQuote(t *testing.T) *entity.Quote {
	t.Helper()
	quote, err := f.quotes.CreateQuote(context.Background(), &QuoteInput{
		DocumentInput: f.sampleInput(),
		ValidUntil:    fixedNow.AddDate(0, 1, 0),
		Deposit:       decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	return quote
}

func requireDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}
