package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardrail/cardrail-api/internal/services"
)

// ExecutionHandler handles delegated execution and quote operations
type ExecutionHandler struct {
	common *CommonServices
}

// NewExecutionHandler creates a new ExecutionHandler instance
func NewExecutionHandler(common *CommonServices) *ExecutionHandler {
	return &ExecutionHandler{common: common}
}

// ExecuteRequest represents the request body for a delegated execution
type ExecuteRequest struct {
	CardID            string `json:"card_id,omitempty"`
	StackID           string `json:"stack_id,omitempty"`
	SubCardID         string `json:"sub_card_id,omitempty"`
	SourceToken       string `json:"source_token,omitempty"`
	TargetToken       string `json:"target_token,omitempty"`
	Amount            string `json:"amount,omitempty"`
	RecipientOverride string `json:"recipient_override,omitempty"`
	UserEmail         string `json:"user_email,omitempty"`
	Atomic            bool   `json:"atomic,omitempty"`
}

func parseOptionalUUID(c *gin.Context, value, field string) (uuid.UUID, bool) {
	if value == "" {
		return uuid.Nil, true
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid "+field, err)
		return uuid.Nil, false
	}
	return parsed, true
}

// Execute godoc
// @Summary Execute a delegated transfer and optional swap
// @Description Runs the transfer → quote → swap flow under a signed card. The response reports whatever was achieved: a failed swap after a landed transfer still carries the transfer hash.
// @Tags execute
// @Accept json
// @Produce json
// @Param request body ExecuteRequest true "Execution request"
// @Success 200 {object} types.ExecutionResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /execute [post]
func (h *ExecutionHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cardID, ok := parseOptionalUUID(c, req.CardID, "card ID")
	if !ok {
		return
	}
	stackID, ok := parseOptionalUUID(c, req.StackID, "stack ID")
	if !ok {
		return
	}
	subCardID, ok := parseOptionalUUID(c, req.SubCardID, "sub-card ID")
	if !ok {
		return
	}
	if cardID == uuid.Nil && stackID == uuid.Nil {
		sendError(c, http.StatusBadRequest, "Either card_id or stack_id is required", nil)
		return
	}
	if req.RecipientOverride != "" && !IsAddressValid(req.RecipientOverride) {
		sendError(c, http.StatusBadRequest, "Invalid recipient override", nil)
		return
	}

	params := services.ExecuteParams{
		CardID:            cardID,
		StackID:           stackID,
		SubCardID:         subCardID,
		SourceToken:       req.SourceToken,
		TargetToken:       req.TargetToken,
		Amount:            req.Amount,
		RecipientOverride: req.RecipientOverride,
		UserEmail:         req.UserEmail,
	}

	execute := h.common.executor.Execute
	if req.Atomic {
		execute = h.common.executor.ExecuteAtomic
	}
	result, err := execute(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// QuoteRequest represents the request body for a standalone quote
type QuoteRequest struct {
	ChainID           int64  `json:"chain_id" binding:"required"`
	SourceToken       string `json:"source_token" binding:"required"`
	TargetToken       string `json:"target_token" binding:"required"`
	Amount            string `json:"amount" binding:"required"`
	AmountInBaseUnits bool   `json:"amount_in_base_units"`
	SlippageBps       int64  `json:"slippage_bps,omitempty"`
	Owner             string `json:"owner" binding:"required"`
	Recipient         string `json:"recipient,omitempty"`
}

// QuoteResponse is the API shape of an aggregated quote.
type QuoteResponse struct {
	Venue        string `json:"venue"`
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	MinAmountOut string `json:"min_amount_out"`
	CallCount    int    `json:"call_count"`
}

// GetQuote godoc
// @Summary Get the best swap quote across venues
// @Tags execute
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote request"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /quote [post]
func (h *ExecutionHandler) GetQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !IsAddressValid(req.Owner) {
		sendError(c, http.StatusBadRequest, "Invalid owner address", nil)
		return
	}

	quote, err := h.common.quotes.GetQuote(c.Request.Context(), services.QuoteParams{
		ChainID:           req.ChainID,
		SourceToken:       req.SourceToken,
		TargetToken:       req.TargetToken,
		Amount:            req.Amount,
		AmountInBaseUnits: req.AmountInBaseUnits,
		SlippageBps:       req.SlippageBps,
		Owner:             req.Owner,
		Recipient:         req.Recipient,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, QuoteResponse{
		Venue:        quote.Best.VenueID,
		AmountIn:     quote.Best.AmountIn.String(),
		AmountOut:    quote.Best.AmountOut.String(),
		MinAmountOut: quote.MinAmountOut.String(),
		CallCount:    len(quote.Calls),
	})
}
