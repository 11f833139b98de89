package handlers

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/services"
)

// CommonServices holds the shared dependencies used across handlers
type CommonServices struct {
	queries   db.Querier
	cards     *services.CardService
	stacks    *services.CardStackService
	executor  *services.ExecutionService
	quotes    *services.QuoteService
	accounts  *services.AccountService
	limits    *services.SpendingLimitService
	agentAddr string
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(
	queries db.Querier,
	cards *services.CardService,
	stacks *services.CardStackService,
	executor *services.ExecutionService,
	quotes *services.QuoteService,
	accounts *services.AccountService,
	limits *services.SpendingLimitService,
	agentAddr string,
) *CommonServices {
	return &CommonServices{
		queries:   queries,
		cards:     cards,
		stacks:    stacks,
		executor:  executor,
		quotes:    quotes,
		accounts:  accounts,
		limits:    limits,
		agentAddr: agentAddr,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// IsAddressValid reports whether s is a well-formed hex address.
func IsAddressValid(s string) bool {
	return common.IsHexAddress(s)
}

// sendError is a helper function that combines logging and error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleServiceError maps service-layer errors to HTTP status codes.
func handleServiceError(c *gin.Context, err error) {
	var configErr *services.ConfigError
	var limitErr *services.LimitExceededError

	switch {
	case errors.As(err, &configErr):
		sendError(c, http.StatusBadRequest, configErr.Error(), err)
	case errors.As(err, &limitErr):
		sendError(c, http.StatusForbidden, limitErr.Error(), err)
	case errors.Is(err, services.ErrCardNotSigned),
		errors.Is(err, services.ErrCardRevoked),
		errors.Is(err, services.ErrCardExpired),
		errors.Is(err, services.ErrStackInactive),
		errors.Is(err, services.ErrStackExpired):
		sendError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, services.ErrNoViableRoute):
		sendError(c, http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, "Resource not found", err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// handleDBError handles database errors with a resource-specific not-found message.
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(c, http.StatusNotFound, notFoundMsg, err)
		return
	}
	sendError(c, http.StatusInternalServerError, "Internal server error", err)
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}
