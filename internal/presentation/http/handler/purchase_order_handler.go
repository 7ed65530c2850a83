package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
)

// PurchaseOrderHandler handles purchase order HTTP requests
type PurchaseOrderHandler struct {
	orderService *service.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(orderService *service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// PurchaseOrderRequest represents the create and update purchase order request body
type PurchaseOrderRequest struct {
	DocumentRequest
	ValidUntil string `json:"valid_until"`
}

func (r *PurchaseOrderRequest) toInput() (*service.PurchaseOrderInput, error) {
	doc, err := r.DocumentRequest.toInput()
	if err != nil {
		return nil, err
	}
	validUntil, err := parseDate("valid_until", r.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &service.PurchaseOrderInput{DocumentInput: doc, ValidUntil: validUntil}, nil
}

// List handles listing purchase orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filters, err := documentFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := &repository.PurchaseOrderFilterParams{DocumentFilterParams: filters}
	if s := c.Query("status"); s != "" {
		status, err := enum.ParsePurchaseOrderStatus(s)
		if err != nil {
			response.Error(c, fieldError("status", err.Error()))
			return
		}
		params.Status = &status
	}

	result, err := h.orderService.ListPurchaseOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Purchase orders retrieved successfully", result)
}

// Get handles getting a single purchase order
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	order, err := h.orderService.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase order retrieved successfully", order)
}

// Create handles creating a purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req PurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderService.CreatePurchaseOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase order created successfully", order)
}

// Update handles editing a DRAFT purchase order
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	var req PurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderService.UpdatePurchaseOrder(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase order updated successfully", order)
}

// UpdateStatus handles a manual status change
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := enum.ParsePurchaseOrderStatus(req.Status)
	if err != nil {
		response.Error(c, fieldError("status", err.Error()))
		return
	}

	order, err := h.orderService.ChangePurchaseOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase order status updated successfully", order)
}

// Send handles emailing a purchase order to its client
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	order, err := h.orderService.SendPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase order sent successfully", order)
}

// Delete handles deleting a purchase order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	if err := h.orderService.DeletePurchaseOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase order deleted successfully", nil)
}

// PDF handles downloading a purchase order as PDF
func (h *PurchaseOrderHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "purchase order")
	if !ok {
		return
	}

	attachment, err := h.orderService.PurchaseOrderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.PDF(c, attachment.Filename, attachment.Content)
}
