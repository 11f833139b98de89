// Package bundler talks to the sponsored-operation service: the external
// bundler/paymaster that wraps delegated calls into gas-sponsored operations,
// broadcasts them, and reports inclusion. CardRail never holds native
// currency for fees itself.
package bundler

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	httpClient "github.com/cardrail/cardrail-api/internal/client/http"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrConfirmationTimeout is returned when an operation was accepted but not
// confirmed within the wait window. The operation may still land later;
// callers must treat this as failed, never as success.
var ErrConfirmationTimeout = errors.New("sponsored operation not confirmed before timeout")

// Submitter is the boundary the orchestrator depends on.
type Submitter interface {
	SubmitAndWait(ctx context.Context, params SubmitParams) (string, error)
	HealthCheck(ctx context.Context) error
}

// SponsoredCall is one call inside a sponsored operation.
type SponsoredCall struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// SubmitParams describes a sponsored operation: the calls to execute under
// the given delegation's caveats.
type SubmitParams struct {
	ChainID    int64
	Delegation types.DelegationStruct
	Calls      []SponsoredCall
}

// Config configures the bundler client.
type Config struct {
	BaseURL        string
	APIKey         string
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Client is the HTTP implementation of Submitter.
type Client struct {
	http           *httpClient.HTTPClient
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// NewClient creates a bundler client. ConfirmTimeout defaults to 60 seconds,
// matching the reference execution flow.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("bundler base URL is required")
	}
	if config.ConfirmTimeout == 0 {
		config.ConfirmTimeout = 60 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 2 * time.Second
	}

	options := []httpClient.ClientOption{
		httpClient.WithBaseURL(config.BaseURL),
		httpClient.WithTimeout(30 * time.Second),
	}
	if config.APIKey != "" {
		options = append(options, httpClient.WithHeader("x-api-key", config.APIKey))
	}

	return &Client{
		http:           httpClient.NewHTTPClient(options...),
		confirmTimeout: config.ConfirmTimeout,
		pollInterval:   config.PollInterval,
	}, nil
}

// EncodeCall converts a call spec into the wire representation.
func EncodeCall(call types.CallSpec) SponsoredCall {
	value := "0"
	if call.Value != nil {
		value = call.Value.String()
	}
	return SponsoredCall{
		To:    call.To,
		Data:  "0x" + hex.EncodeToString(call.Data),
		Value: value,
	}
}

type submitRequest struct {
	ChainID    int64                  `json:"chain_id"`
	Delegation types.DelegationStruct `json:"delegation"`
	Calls      []SponsoredCall        `json:"calls"`
}

type submitResponse struct {
	OperationID string `json:"operation_id"`
}

type operationStatusResponse struct {
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash"`
	ErrorMessage    string `json:"error_message"`
}

// SubmitAndWait submits the operation and blocks until it is confirmed on
// chain, it fails, or the confirmation window elapses. On success it returns
// the transaction hash.
func (c *Client) SubmitAndWait(ctx context.Context, params SubmitParams) (string, error) {
	if err := c.validateSubmitParams(params); err != nil {
		return "", err
	}

	var submitted submitResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/operations", submitRequest{
		ChainID:    params.ChainID,
		Delegation: params.Delegation,
		Calls:      params.Calls,
	}, &submitted)
	if err != nil {
		return "", errors.Wrap(err, "failed to submit sponsored operation")
	}
	if submitted.OperationID == "" {
		return "", fmt.Errorf("bundler returned empty operation id")
	}

	logger.Info("Sponsored operation submitted",
		zap.String("operation_id", submitted.OperationID),
		zap.Int64("chain_id", params.ChainID),
		zap.Int("call_count", len(params.Calls)),
	)

	return c.waitForConfirmation(ctx, submitted.OperationID)
}

func (c *Client) waitForConfirmation(ctx context.Context, operationID string) (string, error) {
	deadline := time.Now().Add(c.confirmTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return "", ErrConfirmationTimeout
			}

			var status operationStatusResponse
			err := c.http.DoJSON(ctx, http.MethodGet, "/v1/operations/"+operationID, nil, &status)
			if err != nil {
				logger.Warn("Failed to poll operation status",
					zap.String("operation_id", operationID),
					zap.Error(err),
				)
				continue
			}

			switch status.Status {
			case "included", "confirmed":
				if status.TransactionHash == "" {
					return "", fmt.Errorf("operation %s confirmed with empty transaction hash", operationID)
				}
				return status.TransactionHash, nil
			case "failed", "reverted":
				msg := status.ErrorMessage
				if msg == "" {
					msg = "unknown error (empty error message from bundler)"
				}
				return "", fmt.Errorf("sponsored operation failed: %s", msg)
			default:
				// still pending
			}
		}
	}
}

func (c *Client) validateSubmitParams(params SubmitParams) error {
	if params.ChainID == 0 {
		return fmt.Errorf("chain ID cannot be zero")
	}
	if params.Delegation.Signature == "" {
		return fmt.Errorf("delegation signature cannot be empty")
	}
	if len(params.Calls) == 0 {
		return fmt.Errorf("sponsored operation requires at least one call")
	}
	for i, call := range params.Calls {
		if call.To == "" || call.To == "0x0000000000000000000000000000000000000000" {
			return fmt.Errorf("call %d has no valid target", i)
		}
	}
	return nil
}

// HealthCheck verifies the bundler is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.http.DoJSON(healthCtx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("bundler unavailable: %w", err)
	}
	return nil
}
