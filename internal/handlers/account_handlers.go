package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles smart account resolution
type AccountHandler struct {
	common *CommonServices
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(common *CommonServices) *AccountHandler {
	return &AccountHandler{common: common}
}

// ResolveAccount godoc
// @Summary Resolve a smart account address
// @Description Returns the counterfactual or deployed smart account address for an owner on a chain. Pass refresh=true to re-derive and re-probe deployment state.
// @Tags accounts
// @Produce json
// @Param owner path string true "Owner address"
// @Param chain_id query int true "Chain ID"
// @Param refresh query bool false "Force re-derivation"
// @Success 200 {object} services.ResolvedAccount
// @Failure 400 {object} ErrorResponse
// @Router /accounts/{owner}/resolve [get]
func (h *AccountHandler) ResolveAccount(c *gin.Context) {
	owner := c.Param("owner")
	if !IsAddressValid(owner) {
		sendError(c, http.StatusBadRequest, "Invalid owner address", nil)
		return
	}

	chainID, err := strconv.ParseInt(c.Query("chain_id"), 10, 64)
	if err != nil || chainID <= 0 {
		sendError(c, http.StatusBadRequest, "Invalid chain_id", err)
		return
	}
	forceRefresh := c.Query("refresh") == "true"

	resolved, err := h.common.accounts.ResolveAddress(c.Request.Context(), owner, chainID, forceRefresh)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, resolved)
}
