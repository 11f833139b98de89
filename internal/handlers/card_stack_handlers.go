package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/services"
)

// CardStackHandler handles budget-envelope (card stack) operations
type CardStackHandler struct {
	common *CommonServices
}

// NewCardStackHandler creates a new CardStackHandler instance
func NewCardStackHandler(common *CommonServices) *CardStackHandler {
	return &CardStackHandler{common: common}
}

// SubCardRequest is one strategy allocation in a stack creation request.
type SubCardRequest struct {
	Strategy            string `json:"strategy" binding:"required"`
	AllocationPercent   int32  `json:"allocation_percent" binding:"required"`
	DailyLimit          string `json:"daily_limit,omitempty"`
	TargetTokenOverride string `json:"target_token_override,omitempty"`
	AmountPerExecution  string `json:"amount_per_execution,omitempty"`
	IntervalSeconds     int64  `json:"interval_seconds" binding:"required"`
}

// CreateCardStackRequest represents the request body for creating a stack
type CreateCardStackRequest struct {
	UserID             string           `json:"user_id" binding:"required"`
	ChainID            int64            `json:"chain_id" binding:"required"`
	Name               string           `json:"name" binding:"required"`
	TotalBudget        string           `json:"total_budget" binding:"required"`
	PeriodSeconds      int64            `json:"period_seconds" binding:"required"`
	ExpiresAt          *time.Time       `json:"expires_at,omitempty"`
	SourceTokenAddress string           `json:"source_token_address" binding:"required"`
	TargetTokenAddress string           `json:"target_token_address,omitempty"`
	AmountPerExecution string           `json:"amount_per_execution" binding:"required"`
	CardID             string           `json:"card_id,omitempty"`
	SubCards           []SubCardRequest `json:"sub_cards,omitempty"`
}

// SubCardResponse represents one strategy allocation.
type SubCardResponse struct {
	ID                  string `json:"id"`
	Strategy            string `json:"strategy"`
	AllocationPercent   int32  `json:"allocation_percent"`
	DailyLimit          string `json:"daily_limit,omitempty"`
	TargetTokenOverride string `json:"target_token_override,omitempty"`
	AmountPerExecution  string `json:"amount_per_execution,omitempty"`
	IntervalSeconds     int64  `json:"interval_seconds"`
	CurrentSpent        string `json:"current_spent"`
	TotalSpent          string `json:"total_spent"`
	NextExecutionAt     *int64 `json:"next_execution_at,omitempty"`
	Active              bool   `json:"active"`
}

// CardStackResponse represents the standardized API response for stacks
type CardStackResponse struct {
	ID                 string            `json:"id"`
	Object             string            `json:"object"`
	UserID             string            `json:"user_id"`
	ChainID            int64             `json:"chain_id"`
	Name               string            `json:"name"`
	TotalBudget        string            `json:"total_budget"`
	PeriodSeconds      int64             `json:"period_seconds"`
	SourceTokenAddress string            `json:"source_token_address"`
	TargetTokenAddress string            `json:"target_token_address,omitempty"`
	AmountPerExecution string            `json:"amount_per_execution"`
	CardID             string            `json:"card_id,omitempty"`
	Status             string            `json:"status"`
	ExpiresAt          *int64            `json:"expires_at,omitempty"`
	CreatedAt          int64             `json:"created_at"`
	SubCards           []SubCardResponse `json:"sub_cards,omitempty"`
}

func toSubCardResponse(subCard db.SubCard) SubCardResponse {
	resp := SubCardResponse{
		ID:                subCard.ID.String(),
		Strategy:          subCard.Strategy,
		AllocationPercent: subCard.AllocationPercent,
		IntervalSeconds:   subCard.IntervalSeconds,
		CurrentSpent:      subCard.CurrentSpent,
		TotalSpent:        subCard.TotalSpent,
		Active:            subCard.Active,
	}
	if subCard.DailyLimit.Valid {
		resp.DailyLimit = subCard.DailyLimit.String
	}
	if subCard.TargetTokenOverride.Valid {
		resp.TargetTokenOverride = subCard.TargetTokenOverride.String
	}
	if subCard.AmountPerExecution.Valid {
		resp.AmountPerExecution = subCard.AmountPerExecution.String
	}
	if subCard.NextExecutionAt.Valid {
		next := subCard.NextExecutionAt.Time.Unix()
		resp.NextExecutionAt = &next
	}
	return resp
}

func toCardStackResponse(stack db.CardStack, subCards []db.SubCard) CardStackResponse {
	resp := CardStackResponse{
		ID:                 stack.ID.String(),
		Object:             "card_stack",
		UserID:             stack.UserID.String(),
		ChainID:            stack.ChainID,
		Name:               stack.Name,
		TotalBudget:        stack.TotalBudget,
		PeriodSeconds:      stack.PeriodSeconds,
		SourceTokenAddress: stack.SourceTokenAddress,
		AmountPerExecution: stack.AmountPerExecution,
		Status:             stack.Status,
		CreatedAt:          stack.CreatedAt.Unix(),
	}
	if stack.TargetTokenAddress.Valid {
		resp.TargetTokenAddress = stack.TargetTokenAddress.String
	}
	if stack.CardID.Valid {
		resp.CardID = uuid.UUID(stack.CardID.Bytes).String()
	}
	if stack.ExpiresAt.Valid {
		expires := stack.ExpiresAt.Time.Unix()
		resp.ExpiresAt = &expires
	}
	for _, subCard := range subCards {
		resp.SubCards = append(resp.SubCards, toSubCardResponse(subCard))
	}
	return resp
}

// CreateCardStack godoc
// @Summary Create a card stack
// @Description Creates a budget envelope with strategy sub-cards. Sibling allocations must not exceed 100%.
// @Tags card-stacks
// @Accept json
// @Produce json
// @Param request body CreateCardStackRequest true "Stack creation request"
// @Success 201 {object} CardStackResponse
// @Failure 400 {object} ErrorResponse
// @Router /card-stacks [post]
func (h *CardStackHandler) CreateCardStack(c *gin.Context) {
	var req CreateCardStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	var cardID uuid.UUID
	if req.CardID != "" {
		cardID, err = uuid.Parse(req.CardID)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid card ID", err)
			return
		}
	}

	subCards := make([]services.SubCardInput, 0, len(req.SubCards))
	for _, sub := range req.SubCards {
		subCards = append(subCards, services.SubCardInput{
			Strategy:            sub.Strategy,
			AllocationPercent:   sub.AllocationPercent,
			DailyLimit:          sub.DailyLimit,
			TargetTokenOverride: sub.TargetTokenOverride,
			AmountPerExecution:  sub.AmountPerExecution,
			IntervalSeconds:     sub.IntervalSeconds,
		})
	}

	created, err := h.common.stacks.CreateCardStack(c.Request.Context(), services.CreateCardStackParams{
		UserID:             userID,
		ChainID:            req.ChainID,
		Name:               req.Name,
		TotalBudget:        req.TotalBudget,
		PeriodSeconds:      req.PeriodSeconds,
		ExpiresAt:          req.ExpiresAt,
		SourceTokenAddress: req.SourceTokenAddress,
		TargetTokenAddress: req.TargetTokenAddress,
		AmountPerExecution: req.AmountPerExecution,
		CardID:             cardID,
		SubCards:           subCards,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, toCardStackResponse(created.Stack, created.SubCards))
}

// GetCardStack godoc
// @Summary Get a card stack with its sub-cards
// @Tags card-stacks
// @Produce json
// @Param stack_id path string true "Stack ID"
// @Success 200 {object} CardStackResponse
// @Failure 404 {object} ErrorResponse
// @Router /card-stacks/{stack_id} [get]
func (h *CardStackHandler) GetCardStack(c *gin.Context) {
	stackID, err := uuid.Parse(c.Param("stack_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid stack ID", err)
		return
	}

	stack, err := h.common.stacks.GetCardStack(c.Request.Context(), stackID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toCardStackResponse(stack.Stack, stack.SubCards))
}

// ListCardStacks godoc
// @Summary List a user's card stacks
// @Tags card-stacks
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{user_id}/card-stacks [get]
func (h *CardStackHandler) ListCardStacks(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	stacks, err := h.common.stacks.ListCardStacks(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]CardStackResponse, 0, len(stacks))
	for _, stack := range stacks {
		responses = append(responses, toCardStackResponse(stack, nil))
	}
	sendList(c, responses)
}
