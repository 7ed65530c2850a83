package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/config"
	domainRepo "github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/handler"
	"github.com/sangkips/billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/billing-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Client        *handler.ClientHandler
	Service       *handler.ServiceHandler
	Quote         *handler.QuoteHandler
	PublicQuote   *handler.PublicQuoteHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Invoice       *handler.InvoiceHandler
	Dashboard     *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.IPRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes, rate limited per client IP
		public := v1.Group("/public")
		if deps.RateLimiter != nil {
			public.Use(deps.RateLimiter.Middleware())
		}
		registerPublicRoutes(public, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))
		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerPublicRoutes(public *gin.RouterGroup, h *Handlers) {
	public.GET("/quotes/:token", h.PublicQuote.Get)
	public.POST("/quotes/:token/respond", h.PublicQuote.Respond)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/dashboard", h.Dashboard.GetStats)

	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}

	services := protected.Group("/services")
	{
		services.GET("", h.Service.List)
		services.POST("", h.Service.Create)
	}

	quotes := protected.Group("/quotes")
	{
		quotes.GET("", h.Quote.List)
		quotes.POST("", h.Quote.Create)
		quotes.GET("/:id", h.Quote.Get)
		quotes.PUT("/:id", h.Quote.Update)
		quotes.DELETE("/:id", h.Quote.Delete)
		quotes.PATCH("/:id/status", h.Quote.UpdateStatus)
		quotes.POST("/:id/send", h.Quote.Send)
		quotes.POST("/:id/convert", h.Quote.Convert)
		quotes.GET("/:id/pdf", h.Quote.PDF)
	}

	orders := protected.Group("/purchase-orders")
	{
		orders.GET("", h.PurchaseOrder.List)
		orders.POST("", h.PurchaseOrder.Create)
		orders.GET("/:id", h.PurchaseOrder.Get)
		orders.PUT("/:id", h.PurchaseOrder.Update)
		orders.DELETE("/:id", h.PurchaseOrder.Delete)
		orders.PATCH("/:id/status", h.PurchaseOrder.UpdateStatus)
		orders.POST("/:id/send", h.PurchaseOrder.Send)
		orders.GET("/:id/pdf", h.PurchaseOrder.PDF)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.PATCH("/:id/status", h.Invoice.UpdateStatus)
		invoices.POST("/:id/send", h.Invoice.Send)
		invoices.GET("/:id/pdf", h.Invoice.PDF)
	}
}
