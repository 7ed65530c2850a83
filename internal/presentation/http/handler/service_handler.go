package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// ServiceHandler handles the service catalog HTTP requests
type ServiceHandler struct {
	catalogService *service.CatalogService
}

// NewServiceHandler creates a new service catalog handler
func NewServiceHandler(catalogService *service.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: catalogService}
}

// CreateServiceRequest represents the create service request body
type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration"`
	Description *string         `json:"description"`
}

// List handles listing the catalog, optionally by category
func (h *ServiceHandler) List(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Services retrieved successfully", services)
}

// Create handles adding a service to the catalog
func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), &service.CreateServiceInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Service created successfully", svc)
}
