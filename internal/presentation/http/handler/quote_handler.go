package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// QuoteHandler handles quote-related HTTP requests
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// QuoteRequest represents the create and update quote request body
type QuoteRequest struct {
	DocumentRequest
	ValidUntil string          `json:"valid_until"`
	Deposit    decimal.Decimal `json:"deposit"`
}

func (r *QuoteRequest) toInput() (*service.QuoteInput, error) {
	doc, err := r.DocumentRequest.toInput()
	if err != nil {
		return nil, err
	}
	validUntil, err := parseDate("valid_until", r.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &service.QuoteInput{DocumentInput: doc, ValidUntil: validUntil, Deposit: r.Deposit}, nil
}

// List handles listing quotes
// @Summary List Quotes
// @Description Get quotes with pagination, search on number or client name, and status filter
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query string false "DRAFT, SENT, ACCEPTED, REJECTED or CONVERTED"
// @Param client_id query string false "Client ID"
// @Success 200 {object} response.APIResponse
// @Router /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	filters, err := documentFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := &repository.QuoteFilterParams{DocumentFilterParams: filters}
	if s := c.Query("status"); s != "" {
		status, err := enum.ParseQuoteStatus(s)
		if err != nil {
			response.Error(c, fieldError("status", err.Error()))
			return
		}
		params.Status = &status
	}

	result, err := h.quoteService.ListQuotes(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Quotes retrieved successfully", result)
}

// Get handles getting a single quote
// @Summary Get Quote
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Router /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

// Create handles creating a quote
// @Summary Create Quote
// @Description Create a DRAFT quote; the DEV number is allocated by the server
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote data"
// @Success 201 {object} response.APIResponse
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote created successfully", quote)
}

// Update handles editing a DRAFT quote
// @Summary Update Quote
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Param request body QuoteRequest true "Quote data"
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote updated successfully", quote)
}

// UpdateStatus handles a manual status change
// @Summary Update Quote Status
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Param request body StatusRequest true "Target status"
// @Router /quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := enum.ParseQuoteStatus(req.Status)
	if err != nil {
		response.Error(c, fieldError("status", err.Error()))
		return
	}

	quote, err := h.quoteService.ChangeQuoteStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote status updated successfully", quote)
}

// Send handles emailing a quote to its client
// @Summary Send Quote
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.SendQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote sent successfully", quote)
}

// Convert handles turning an ACCEPTED quote into an invoice
// @Summary Convert Quote
// @Tags quotes
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 201 {object} response.APIResponse
// @Router /quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	invoice, err := h.quoteService.ConvertToInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote converted to invoice successfully", invoice)
}

// Delete handles deleting a quote
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote deleted successfully", nil)
}

// PDF handles downloading a quote as PDF
func (h *QuoteHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "quote")
	if !ok {
		return
	}

	attachment, err := h.quoteService.QuotePDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.PDF(c, attachment.Filename, attachment.Content)
}
