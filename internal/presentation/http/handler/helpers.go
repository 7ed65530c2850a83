package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// dateLayouts are accepted for date fields, most specific first
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ItemRequest represents a line item in a document request
type ItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// DocumentRequest holds the priced fields of every document request
type DocumentRequest struct {
	ClientID string          `json:"client_id"`
	Items    []ItemRequest   `json:"items"`
	Discount decimal.Decimal `json:"discount"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
}

func (r *DocumentRequest) toInput() (service.DocumentInput, error) {
	input := service.DocumentInput{
		Items:    make([]billing.Item, len(r.Items)),
		Discount: r.Discount,
		TaxRate:  r.TaxRate,
	}
	if r.ClientID != "" {
		id, err := uuid.Parse(r.ClientID)
		if err != nil {
			return input, fieldError("client_id", "must be a valid UUID")
		}
		input.ClientID = id
	}
	for i, item := range r.Items {
		input.Items[i] = billing.Item{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return input, nil
}

// StatusRequest represents a status change request body
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func fieldError(field, message string) error {
	return apperror.NewValidationError([]apperror.FieldError{{Field: field, Message: message}})
}

// parseDate accepts RFC 3339 timestamps and plain dates. An empty value is
// the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fieldError(field, "must be a date (YYYY-MM-DD)")
}

// parseID reads the :id path parameter, answering 400 when malformed
func parseID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("Invalid %s ID", resource))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// documentFilters reads the page, search and client_id query parameters
func documentFilters(c *gin.Context) (repository.DocumentFilterParams, error) {
	params := repository.DocumentFilterParams{
		Pagination: pagination.FromQuery(c.Query("page"), c.Query("per_page")),
		Search:     c.Query("search"),
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, fieldError("client_id", "must be a valid UUID")
		}
		params.ClientID = &id
	}
	return params, nil
}
