package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/infrastructure/database"
	"github.com/sangkips/billing-api/internal/infrastructure/repository"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/sangkips/billing-api/internal/presentation/http/handler"
	"github.com/sangkips/billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/billing-api/internal/presentation/http/routes"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pdf"
	"github.com/sangkips/billing-api/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("server")

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := database.SeedServices(db); err != nil {
		log.Warn().Err(err).Msg("failed to seed service catalog")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	clientRepo := repository.NewClientRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	sender := email.NewSMTPSender(email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPass,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	notifier := service.NewNotifier(pdf.NewRenderer(), sender, service.NotifierConfig{
		Company:    cfg.Company,
		PublicURL:  cfg.App.PublicURL,
		AdminEmail: cfg.Email.AdminEmail,
	})

	// Initialize services
	clientService := service.NewClientService(tx, clientRepo, quoteRepo, orderRepo, invoiceRepo)
	catalogService := service.NewCatalogService(serviceRepo)
	quoteService := service.NewQuoteService(tx, quoteRepo, invoiceRepo, clientRepo, sequenceRepo, notifier)
	orderService := service.NewPurchaseOrderService(tx, orderRepo, clientRepo, sequenceRepo, notifier)
	invoiceService := service.NewInvoiceService(tx, invoiceRepo, clientRepo, sequenceRepo, notifier)
	dashboardService := service.NewDashboardService(clientRepo, quoteRepo, invoiceRepo)

	handlers := &routes.Handlers{
		Client:        handler.NewClientHandler(clientService),
		Service:       handler.NewServiceHandler(catalogService),
		Quote:         handler.NewQuoteHandler(quoteService),
		PublicQuote:   handler.NewPublicQuoteHandler(quoteService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}

	limiterConfig := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimit.Requests > 0 {
		limiterConfig.RequestsPerSecond = cfg.RateLimit.RateLimitPerSecond()
		limiterConfig.BurstSize = cfg.RateLimit.Requests
	}
	limiter := middleware.NewIPRateLimiter(limiterConfig)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     limiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go limiter.Run(5*time.Minute, ctx.Done())

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("app", cfg.App.Name).
			Str("env", cfg.App.Env).
			Str("port", cfg.App.Port).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
