package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billing-api/internal/application/service"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/presentation/http/dto/response"
)

// PublicQuoteHandler serves the quote page opened from the emailed link
type PublicQuoteHandler struct {
	quoteService *service.QuoteService
}

// NewPublicQuoteHandler creates a new public quote handler
func NewPublicQuoteHandler(quoteService *service.QuoteService) *PublicQuoteHandler {
	return &PublicQuoteHandler{quoteService: quoteService}
}

// RespondRequest represents the client's decision
type RespondRequest struct {
	Action string `json:"action" binding:"required"`
}

// Get handles reading a quote by its public token
func (h *PublicQuoteHandler) Get(c *gin.Context) {
	quote, err := h.quoteService.GetQuoteByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

// Respond handles accepting or rejecting a quote
// @Summary Respond to Quote
// @Tags public
// @Param token path string true "Quote token"
// @Param request body RespondRequest true "ACCEPTED or REJECTED"
// @Router /public/quotes/{token}/respond [post]
func (h *PublicQuoteHandler) Respond(c *gin.Context) {
	var req RespondRequest
	if !bindJSON(c, &req) {
		return
	}
	action, err := enum.ParseQuoteStatus(req.Action)
	if err != nil {
		response.Error(c, fieldError("action", "must be ACCEPTED or REJECTED"))
		return
	}

	quote, err := h.quoteService.RespondToQuote(c.Request.Context(), c.Param("token"), action)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Response recorded successfully", quote)
}
