package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceRequest represents the create and update invoice request body.
// due_date defaults to 30 days after creation.
type InvoiceRequest struct {
	DocumentRequest
	DueDate     string          `json:"due_date"`
	DepositPaid decimal.Decimal `json:"deposit_paid"`
}

func (r *InvoiceRequest) toInput() (*service.InvoiceInput, error) {
	doc, err := r.DocumentRequest.toInput()
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return nil, err
	}
	return &service.InvoiceInput{DocumentInput: doc, DueDate: dueDate, DepositPaid: r.DepositPaid}, nil
}

// List handles listing invoices
// @Summary List Invoices
// @Description status=OVERDUE selects sent invoices past their due date
// @Tags invoices
// @Security BearerAuth
// @Param status query string false "DRAFT, SENT, PAID, OVERDUE or CANCELLED"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filters, err := documentFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := &repository.InvoiceFilterParams{DocumentFilterParams: filters}
	if s := c.Query("status"); s != "" {
		status, err := enum.ParseInvoiceStatus(s)
		if err != nil {
			response.Error(c, fieldError("status", err.Error()))
			return
		}
		params.Status = &status
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Invoices retrieved successfully", result)
}

// Get handles getting a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Create handles creating an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req InvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Update handles editing a DRAFT invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req InvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// UpdateStatus handles a manual status change
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := enum.ParseInvoiceStatus(req.Status)
	if err != nil {
		response.Error(c, fieldError("status", err.Error()))
		return
	}

	invoice, err := h.invoiceService.ChangeInvoiceStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice status updated successfully", invoice)
}

// Send handles emailing an invoice to its client
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice sent successfully", invoice)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice deleted successfully", nil)
}

// PDF handles downloading an invoice as PDF
func (h *InvoiceHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	attachment, err := h.invoiceService.InvoicePDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.PDF(c, attachment.Filename, attachment.Content)
}
