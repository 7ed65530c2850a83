package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billing-api/pkg/pagination"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// ClientRequest represents the create and update client request body
type ClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	CompanyName *string `json:"company_name"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

func (r *ClientRequest) toInput() *service.ClientInput {
	return &service.ClientInput{
		Name:        r.Name,
		CompanyName: r.CompanyName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
	}
}

// List handles listing clients
// @Summary List Clients
// @Tags clients
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Name, company or email"
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))

	result, err := h.clientService.ListClients(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Clients retrieved successfully", result)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Create handles creating a client
// @Summary Create Client
// @Tags clients
// @Security BearerAuth
// @Param request body ClientRequest true "Client data"
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Update handles replacing a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client and its documents
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client deleted successfully", nil)
}
