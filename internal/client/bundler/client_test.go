package bundler_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardrail/cardrail-api/internal/client/bundler"
	"github.com/cardrail/cardrail-api/internal/logger"
	"github.com/cardrail/cardrail-api/internal/types"
)

func init() {
	logger.InitLogger()
}

func signedDelegation() types.DelegationStruct {
	return types.DelegationStruct{
		Delegate:  "0x2222222222222222222222222222222222222222",
		Delegator: "0x1111111111111111111111111111111111111111",
		Authority: "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		Salt:      "0x01",
		Signature: "0xsigned",
	}
}

func validParams() bundler.SubmitParams {
	return bundler.SubmitParams{
		ChainID:    8453,
		Delegation: signedDelegation(),
		Calls: []bundler.SponsoredCall{
			{To: "0x3333333333333333333333333333333333333333", Data: "0xa9059cbb", Value: "0"},
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler) *bundler.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := bundler.NewClient(bundler.Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		ConfirmTimeout: 2 * time.Second,
		PollInterval:   10 * time.Millisecond,
	})
	assert.NoError(t, err)
	return client
}

func TestClient_SubmitAndWait_Confirmed(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 8453, req["chain_id"])

		_ = json.NewEncoder(w).Encode(map[string]string{"operation_id": "op-123"})
	})
	mux.HandleFunc("/v1/operations/op-123", func(w http.ResponseWriter, r *http.Request) {
		// Pending on the first poll, confirmed on the second.
		if atomic.AddInt32(&polls, 1) == 1 {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":           "confirmed",
			"transaction_hash": "0xabc123",
		})
	})

	client := newTestClient(t, mux)

	txHash, err := client.SubmitAndWait(context.Background(), validParams())
	assert.NoError(t, err)
	assert.Equal(t, "0xabc123", txHash)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestClient_SubmitAndWait_OperationFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"operation_id": "op-456"})
	})
	mux.HandleFunc("/v1/operations/op-456", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":        "reverted",
			"error_message": "caveat violation: target not allowed",
		})
	})

	client := newTestClient(t, mux)

	_, err := client.SubmitAndWait(context.Background(), validParams())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "caveat violation")
}

func TestClient_SubmitAndWait_ConfirmationTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/operations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"operation_id": "op-789"})
	})
	mux.HandleFunc("/v1/operations/op-789", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := bundler.NewClient(bundler.Config{
		BaseURL:        server.URL,
		ConfirmTimeout: 50 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
	})
	assert.NoError(t, err)

	_, err = client.SubmitAndWait(context.Background(), validParams())
	assert.ErrorIs(t, err, bundler.ErrConfirmationTimeout)
}

func TestClient_SubmitAndWait_Validation(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	ctx := context.Background()

	t.Run("rejects unsigned delegation", func(t *testing.T) {
		params := validParams()
		params.Delegation.Signature = ""
		_, err := client.SubmitAndWait(ctx, params)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature cannot be empty")
	})

	t.Run("rejects empty call list", func(t *testing.T) {
		params := validParams()
		params.Calls = nil
		_, err := client.SubmitAndWait(ctx, params)
		assert.Error(t, err)
	})

	t.Run("rejects zero-address target", func(t *testing.T) {
		params := validParams()
		params.Calls[0].To = "0x0000000000000000000000000000000000000000"
		_, err := client.SubmitAndWait(ctx, params)
		assert.Error(t, err)
	})

	t.Run("rejects zero chain ID", func(t *testing.T) {
		params := validParams()
		params.ChainID = 0
		_, err := client.SubmitAndWait(ctx, params)
		assert.Error(t, err)
	})
}

func TestClient_HealthCheck(t *testing.T) {
	t.Run("healthy bundler", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})
		client := newTestClient(t, mux)
		assert.NoError(t, client.HealthCheck(context.Background()))
	})

	t.Run("unreachable bundler", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		client := newTestClient(t, mux)
		assert.Error(t, client.HealthCheck(context.Background()))
	})
}

func TestEncodeCall(t *testing.T) {
	call := types.CallSpec{
		To:    "0x3333333333333333333333333333333333333333",
		Data:  []byte{0xa9, 0x05, 0x9c, 0xbb},
		Value: big.NewInt(7),
	}
	encoded := bundler.EncodeCall(call)
	assert.Equal(t, call.To, encoded.To)
	assert.Equal(t, "0xa9059cbb", encoded.Data)
	assert.Equal(t, "7", encoded.Value)

	// nil value defaults to zero
	encoded = bundler.EncodeCall(types.CallSpec{To: call.To, Data: nil})
	assert.Equal(t, "0", encoded.Value)
	assert.Equal(t, "0x", encoded.Data)
}
