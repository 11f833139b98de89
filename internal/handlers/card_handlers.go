package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/services"
	"github.com/cardrail/cardrail-api/internal/types"
)

// CardHandler handles smart card lifecycle operations
type CardHandler struct {
	common *CommonServices
}

// NewCardHandler creates a new CardHandler instance
func NewCardHandler(common *CommonServices) *CardHandler {
	return &CardHandler{common: common}
}

// SpendingLimitRequest is one per-token daily cap in a card creation request.
type SpendingLimitRequest struct {
	TokenAddress string `json:"token_address" binding:"required"`
	DailyLimit   string `json:"daily_limit" binding:"required"`
}

// CreateCardRequest represents the request body for creating a card
type CreateCardRequest struct {
	UserID           string                 `json:"user_id" binding:"required"`
	ChainID          int64                  `json:"chain_id" binding:"required"`
	CardType         string                 `json:"card_type" binding:"required"`
	DelegatorAddress string                 `json:"delegator_address" binding:"required"`
	ExpiresAt        *time.Time             `json:"expires_at,omitempty"`
	SpendingLimits   []SpendingLimitRequest `json:"spending_limits,omitempty"`
}

// SignCardRequest carries the user's signature over the unsigned delegation.
type SignCardRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// CardResponse represents the standardized API response for card operations
type CardResponse struct {
	ID                 string          `json:"id"`
	Object             string          `json:"object"`
	UserID             string          `json:"user_id"`
	ChainID            int64           `json:"chain_id"`
	CardType           string          `json:"card_type"`
	DelegatorAddress   string          `json:"delegator_address"`
	DelegateAddress    string          `json:"delegate_address"`
	Status             string          `json:"status"`
	Signed             bool            `json:"signed"`
	Delegation         json.RawMessage `json:"delegation,omitempty"`
	WhitelistedTargets []string        `json:"whitelisted_targets,omitempty"`
	ExpiresAt          *int64          `json:"expires_at,omitempty"`
	CreatedAt          int64           `json:"created_at"`
}

func toCardResponse(card db.SmartCard) CardResponse {
	resp := CardResponse{
		ID:               card.ID.String(),
		Object:           "card",
		UserID:           card.UserID.String(),
		ChainID:          card.ChainID,
		CardType:         card.CardType,
		DelegatorAddress: card.DelegatorAddress,
		DelegateAddress:  card.DelegateAddress,
		Status:           card.Status,
		Signed:           card.Signature.Valid,
		Delegation:       json.RawMessage(card.Delegation),
		CreatedAt:        card.CreatedAt.Unix(),
	}
	if card.ExpiresAt.Valid {
		expires := card.ExpiresAt.Time.Unix()
		resp.ExpiresAt = &expires
	}
	return resp
}

// CreateCard godoc
// @Summary Create a smart card
// @Description Builds a caveat-scoped delegation for the requested capability type and stores it as a pending card awaiting signature. Supersedes any existing card of the same (user, chain, type).
// @Tags cards
// @Accept json
// @Produce json
// @Param request body CreateCardRequest true "Card creation request"
// @Success 201 {object} CardResponse
// @Failure 400 {object} ErrorResponse
// @Router /cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	if !IsAddressValid(req.DelegatorAddress) {
		sendError(c, http.StatusBadRequest, "Invalid delegator address", nil)
		return
	}

	limits := make([]services.SpendingLimitInput, 0, len(req.SpendingLimits))
	for _, limit := range req.SpendingLimits {
		limits = append(limits, services.SpendingLimitInput{
			TokenAddress: limit.TokenAddress,
			DailyLimit:   limit.DailyLimit,
		})
	}

	created, err := h.common.cards.CreateCard(c.Request.Context(), services.CreateCardParams{
		UserID:           userID,
		ChainID:          req.ChainID,
		CardType:         types.CardType(req.CardType),
		DelegatorAddress: req.DelegatorAddress,
		DelegateAddress:  h.common.agentAddr,
		ExpiresAt:        req.ExpiresAt,
		SpendingLimits:   limits,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := toCardResponse(created.Card)
	resp.WhitelistedTargets = created.WhitelistedTargets
	sendSuccess(c, http.StatusCreated, resp)
}

// SignCard godoc
// @Summary Attach a signature to a pending card
// @Description Stores the user's signature over the delegation and activates the card
// @Tags cards
// @Accept json
// @Produce json
// @Param card_id path string true "Card ID"
// @Param request body SignCardRequest true "Signature"
// @Success 200 {object} CardResponse
// @Failure 409 {object} ErrorResponse
// @Router /cards/{card_id}/sign [post]
func (h *CardHandler) SignCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid card ID", err)
		return
	}

	var req SignCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	card, err := h.common.cards.AttachSignature(c.Request.Context(), cardID, req.Signature)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toCardResponse(card))
}

// GetCard godoc
// @Summary Get a card by ID
// @Tags cards
// @Produce json
// @Param card_id path string true "Card ID"
// @Success 200 {object} CardResponse
// @Failure 404 {object} ErrorResponse
// @Router /cards/{card_id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid card ID", err)
		return
	}

	card, err := h.common.cards.GetCard(c.Request.Context(), cardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toCardResponse(card))
}

// ListCards godoc
// @Summary List a user's cards
// @Tags cards
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{user_id}/cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	cards, err := h.common.cards.ListCards(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, toCardResponse(card))
	}
	sendList(c, responses)
}

// RevokeCard godoc
// @Summary Revoke a card
// @Description Permanently disables a card. Revocation is terminal.
// @Tags cards
// @Produce json
// @Param card_id path string true "Card ID"
// @Success 200 {object} CardResponse
// @Failure 404 {object} ErrorResponse
// @Router /cards/{card_id} [delete]
func (h *CardHandler) RevokeCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid card ID", err)
		return
	}

	card, err := h.common.cards.RevokeCard(c.Request.Context(), cardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toCardResponse(card))
}

// SpendingStatusResponse reports a card's configured limits and current spend.
type SpendingStatusResponse struct {
	TokenAddress  string `json:"token_address"`
	DailyLimit    string `json:"daily_limit"`
	DailySpent    string `json:"daily_spent"`
	TotalSpent    string `json:"total_spent"`
	LastResetDate string `json:"last_reset_date,omitempty"`
}

// GetSpendingStatus godoc
// @Summary Get a card's spending limits and counters
// @Tags cards
// @Produce json
// @Param card_id path string true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Router /cards/{card_id}/spending [get]
func (h *CardHandler) GetSpendingStatus(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid card ID", err)
		return
	}

	limits, err := h.common.queries.ListSpendingLimitsByCard(c.Request.Context(), cardID)
	if err != nil {
		handleDBError(c, err, "Card not found")
		return
	}

	statuses := make([]SpendingStatusResponse, 0, len(limits))
	for _, limit := range limits {
		status := SpendingStatusResponse{
			TokenAddress: limit.TokenAddress,
			DailyLimit:   limit.DailyLimit,
			DailySpent:   "0",
			TotalSpent:   "0",
		}
		record, err := h.common.queries.GetSpendingRecord(c.Request.Context(), db.GetSpendingRecordParams{
			CardID:       cardID,
			TokenAddress: limit.TokenAddress,
		})
		if err == nil {
			status.DailySpent = record.DailySpent
			status.TotalSpent = record.TotalSpent
			if record.LastResetDate.Valid {
				status.LastResetDate = record.LastResetDate.Time.Format("2006-01-02")
			}
		}
		statuses = append(statuses, status)
	}
	sendList(c, statuses)
}

// TransactionResponse represents one recorded execution outcome.
type TransactionResponse struct {
	ID             string `json:"id"`
	Object         string `json:"object"`
	ChainID        int64  `json:"chain_id"`
	TransferTxHash string `json:"transfer_tx_hash,omitempty"`
	SwapTxHash     string `json:"swap_tx_hash,omitempty"`
	AmountIn       string `json:"amount_in"`
	AmountOut      string `json:"amount_out,omitempty"`
	SourceToken    string `json:"source_token"`
	TargetToken    string `json:"target_token,omitempty"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

// ListTransactions godoc
// @Summary List a card's execution history
// @Tags cards
// @Produce json
// @Param card_id path string true "Card ID"
// @Success 200 {object} map[string]interface{}
// @Router /cards/{card_id}/transactions [get]
func (h *CardHandler) ListTransactions(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid card ID", err)
		return
	}

	transactions, err := h.common.queries.ListCardTransactionsByCard(c.Request.Context(), pgtype.UUID{Bytes: cardID, Valid: true})
	if err != nil {
		handleDBError(c, err, "Card not found")
		return
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp := TransactionResponse{
			ID:          tx.ID.String(),
			Object:      "card_transaction",
			ChainID:     tx.ChainID,
			AmountIn:    tx.AmountIn,
			SourceToken: tx.SourceToken,
			Success:     tx.Success,
			CreatedAt:   tx.CreatedAt.Unix(),
		}
		if tx.TransferTxHash.Valid {
			resp.TransferTxHash = tx.TransferTxHash.String
		}
		if tx.SwapTxHash.Valid {
			resp.SwapTxHash = tx.SwapTxHash.String
		}
		if tx.AmountOut.Valid {
			resp.AmountOut = tx.AmountOut.String
		}
		if tx.TargetToken.Valid {
			resp.TargetToken = tx.TargetToken.String
		}
		if tx.ErrorMessage.Valid {
			resp.Error = tx.ErrorMessage.String
		}
		responses = append(responses, resp)
	}
	sendList(c, responses)
}
