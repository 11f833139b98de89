package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardrail/cardrail-api/internal/db"
)

// NetworkHandler handles supported-network lookups
type NetworkHandler struct {
	common *CommonServices
}

// NewNetworkHandler creates a new NetworkHandler instance
func NewNetworkHandler(common *CommonServices) *NetworkHandler {
	return &NetworkHandler{common: common}
}

// NetworkResponse represents the standardized API response for networks
type NetworkResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	ChainID int64  `json:"chain_id"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
}

func toNetworkResponse(network db.Network) NetworkResponse {
	return NetworkResponse{
		ID:      network.ID.String(),
		Object:  "network",
		ChainID: network.ChainID,
		Name:    network.Name,
		Active:  network.Active,
	}
}

// ListActiveNetworks godoc
// @Summary List active networks
// @Tags networks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /networks [get]
func (h *NetworkHandler) ListActiveNetworks(c *gin.Context) {
	networks, err := h.common.queries.ListActiveNetworks(c.Request.Context())
	if err != nil {
		handleDBError(c, err, "No networks configured")
		return
	}

	responses := make([]NetworkResponse, 0, len(networks))
	for _, network := range networks {
		responses = append(responses, toNetworkResponse(network))
	}
	sendList(c, responses)
}

// GetNetworkByChainID godoc
// @Summary Get a network by chain ID
// @Tags networks
// @Produce json
// @Param chain_id path int true "Chain ID"
// @Success 200 {object} NetworkResponse
// @Failure 404 {object} ErrorResponse
// @Router /networks/chain/{chain_id} [get]
func (h *NetworkHandler) GetNetworkByChainID(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chain_id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid chain ID", err)
		return
	}

	network, err := h.common.queries.GetNetworkByChainID(c.Request.Context(), chainID)
	if err != nil {
		handleDBError(c, err, "Network not found")
		return
	}
	sendSuccess(c, http.StatusOK, toNetworkResponse(network))
}
