package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/config"
	"github.com/sangkips/billing-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/billing-api/internal/infrastructure/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/handler"
	"github.com/sangkips/billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pdf"
	"github.com/sangkips/billing-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Send(ctx context.Context, msg email.Message) error { return nil }

type testServer struct {
	router *gin.Engine
	token  string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type documentBody struct {
	ID     string          `json:"id"`
	Number string          `json:"number"`
	Status string          `json:"status"`
	Token  string          `json:"token"`
	Total  decimal.Decimal `json:"total"`
}

func newTestServer(t *testing.T, limiter *middleware.IPRateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:routes_" + name + "?mode=memory&cache=shared",
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tx := infraRepo.NewTransactor(db)
	clientRepo := infraRepo.NewClientRepository(db)
	quoteRepo := infraRepo.NewQuoteRepository(db)
	orderRepo := infraRepo.NewPurchaseOrderRepository(db)
	invoiceRepo := infraRepo.NewInvoiceRepository(db)
	sequenceRepo := infraRepo.NewSequenceRepository(db)

	notifier := service.NewNotifier(pdf.NewRenderer(), nopSender{}, service.NotifierConfig{
		Company:    config.CompanyConfig{Name: "JimmyTech"},
		PublicURL:  "https://billing.example.com",
		AdminEmail: "admin@example.com",
	})
	quoteService := service.NewQuoteService(tx, quoteRepo, invoiceRepo, clientRepo, sequenceRepo, notifier)

	handlers := &Handlers{
		Client:        handler.NewClientHandler(service.NewClientService(tx, clientRepo, quoteRepo, orderRepo, invoiceRepo)),
		Service:       handler.NewServiceHandler(service.NewCatalogService(infraRepo.NewServiceRepository(db))),
		Quote:         handler.NewQuoteHandler(quoteService),
		PublicQuote:   handler.NewPublicQuoteHandler(quoteService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(service.NewPurchaseOrderService(tx, orderRepo, clientRepo, sequenceRepo, notifier)),
		Invoice:       handler.NewInvoiceHandler(service.NewInvoiceService(tx, invoiceRepo, clientRepo, sequenceRepo, notifier)),
		Dashboard:     handler.NewDashboardHandler(service.NewDashboardService(clientRepo, quoteRepo, invoiceRepo)),
	}

	jwtManager := utils.NewJWTManager("routes-test-secret", time.Hour)
	token, err := jwtManager.GenerateToken("admin", "admin@example.com")
	require.NoError(t, err)

	router := Setup(handlers, &Deps{
		JWTManager:      jwtManager,
		Cfg:             &config.Config{App: config.AppConfig{Name: "billing-api"}},
		IdempotencyRepo: infraRepo.NewIdempotencyRepository(db),
		RateLimiter:     limiter,
	})
	return &testServer{router: router, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) createClient(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/clients", gin.H{"name": "Alice Martin", "email": "alice@example.com"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var client struct {
		ID string `json:"id"`
	}
	decode(t, rec, &client)
	return client.ID
}

func quoteBody(clientID string) gin.H {
	return gin.H{
		"client_id":   clientID,
		"items":       []gin.H{{"description": "Diagnostic informatique", "quantity": 2, "unit_price": 50}},
		"discount":    10,
		"tax_rate":    20,
		"valid_until": "2030-01-31",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "billing-api")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/quotes", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuoteToInvoiceOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	clientID := s.createClient(t)

	rec := s.do(t, http.MethodPost, "/api/v1/quotes", quoteBody(clientID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var quote documentBody
	decode(t, rec, &quote)
	assert.Equal(t, "DRAFT", quote.Status)
	assert.True(t, strings.HasPrefix(quote.Number, "DEV-"))
	assert.True(t, decimal.NewFromInt(108).Equal(quote.Total))

	// converting before acceptance is refused
	rec = s.do(t, http.MethodPost, "/api/v1/quotes/"+quote.ID+"/convert", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	publicPath := "/api/v1/public/quotes/" + quote.Token
	rec = s.do(t, http.MethodGet, publicPath, nil, map[string]string{"Authorization": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, publicPath+"/respond", gin.H{"action": "ACCEPTED"}, map[string]string{"Authorization": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var accepted documentBody
	decode(t, rec, &accepted)
	assert.Equal(t, "ACCEPTED", accepted.Status)

	rec = s.do(t, http.MethodPost, publicPath+"/respond", gin.H{"action": "REJECTED"}, map[string]string{"Authorization": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/quotes/"+quote.ID+"/convert", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var invoice documentBody
	decode(t, rec, &invoice)
	assert.True(t, strings.HasPrefix(invoice.Number, "FAC-"))
	assert.Equal(t, "SENT", invoice.Status)
	assert.True(t, decimal.NewFromInt(108).Equal(invoice.Total))

	rec = s.do(t, http.MethodGet, "/api/v1/quotes/"+quote.ID, nil, nil)
	var converted documentBody
	decode(t, rec, &converted)
	assert.Equal(t, "CONVERTED", converted.Status)
}

func TestValidationAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	clientID := s.createClient(t)

	body := quoteBody(clientID)
	body["items"] = []gin.H{}
	rec := s.do(t, http.MethodPost, "/api/v1/quotes", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)

	rec = s.do(t, http.MethodPost, "/api/v1/clients", gin.H{"name": "Bob", "email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/quotes/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/invoices/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/public/quotes/unknown-token", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotePDFDownload(t *testing.T) {
	s := newTestServer(t, nil)
	clientID := s.createClient(t)

	rec := s.do(t, http.MethodPost, "/api/v1/quotes", quoteBody(clientID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var quote documentBody
	decode(t, rec, &quote)

	rec = s.do(t, http.MethodGet, "/api/v1/quotes/"+quote.ID+"/pdf", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "DevAliceMartin-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestIdempotentCreateIsReplayed(t *testing.T) {
	s := newTestServer(t, nil)
	headers := map[string]string{middleware.IdempotencyKeyHeader: "create-client-1"}
	body := gin.H{"name": "Alice Martin", "email": "alice@example.com"}

	first := s.do(t, http.MethodPost, "/api/v1/clients", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Replayed"))

	second := s.do(t, http.MethodPost, "/api/v1/clients", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rec := s.do(t, http.MethodGet, "/api/v1/clients", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Items, 1)
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		EntryTTL:          time.Minute,
	})
	s := newTestServer(t, limiter)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/v1/public/quotes/unknown", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/v1/public/quotes/unknown", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// protected routes are not limited
	rec = s.do(t, http.MethodGet, "/api/v1/dashboard", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
