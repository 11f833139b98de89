package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardrail/cardrail-api/internal/db"
)

// TokenHandler handles supported-token lookups
type TokenHandler struct {
	common *CommonServices
}

// NewTokenHandler creates a new TokenHandler instance
func NewTokenHandler(common *CommonServices) *TokenHandler {
	return &TokenHandler{common: common}
}

// TokenResponse represents the standardized API response for tokens
type TokenResponse struct {
	ID              string `json:"id"`
	Object          string `json:"object"`
	ChainID         int64  `json:"chain_id"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	ContractAddress string `json:"contract_address"`
	Decimals        int32  `json:"decimals"`
	IsNative        bool   `json:"is_native"`
	Active          bool   `json:"active"`
}

func toTokenResponse(token db.Token) TokenResponse {
	return TokenResponse{
		ID:              token.ID.String(),
		Object:          "token",
		ChainID:         token.ChainID,
		Symbol:          token.Symbol,
		Name:            token.Name,
		ContractAddress: token.ContractAddress,
		Decimals:        token.Decimals,
		IsNative:        token.IsNative,
		Active:          token.Active,
	}
}

// ListTokensByChain godoc
// @Summary List supported tokens for a chain
// @Tags tokens
// @Produce json
// @Param chain_id path int true "Chain ID"
// @Success 200 {object} map[string]interface{}
// @Router /tokens/chain/{chain_id} [get]
func (h *TokenHandler) ListTokensByChain(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chain_id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid chain ID", err)
		return
	}

	tokens, err := h.common.queries.ListTokensByChain(c.Request.Context(), chainID)
	if err != nil {
		handleDBError(c, err, "No tokens configured for chain")
		return
	}

	responses := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, toTokenResponse(token))
	}
	sendList(c, responses)
}

// GetTokenByAddress godoc
// @Summary Get a token by contract address
// @Tags tokens
// @Produce json
// @Param chain_id path int true "Chain ID"
// @Param address path string true "Contract address"
// @Success 200 {object} TokenResponse
// @Failure 404 {object} ErrorResponse
// @Router /tokens/chain/{chain_id}/address/{address} [get]
func (h *TokenHandler) GetTokenByAddress(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chain_id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid chain ID", err)
		return
	}
	address := c.Param("address")
	if !IsAddressValid(address) {
		sendError(c, http.StatusBadRequest, "Invalid token address", nil)
		return
	}

	token, err := h.common.queries.GetTokenByAddress(c.Request.Context(), db.GetTokenByAddressParams{
		ChainID:         chainID,
		ContractAddress: address,
	})
	if err != nil {
		handleDBError(c, err, "Token not found")
		return
	}
	sendSuccess(c, http.StatusOK, toTokenResponse(token))
}
