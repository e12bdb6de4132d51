package gateway_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdora/ordercore/internal/adapter/config"
	"github.com/verdora/ordercore/internal/adapter/gateway"
	"github.com/verdora/ordercore/internal/core/domain"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, cfg *config.Gateway) *gateway.Client {
	t.Helper()
	logger, _ := zap.NewProduction()
	client, err := gateway.NewClient(cfg, logger)
	require.NoError(t, err)
	return client
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestClient_VerifySignature(t *testing.T) {
	client := newTestClient(t, &config.Gateway{KeyID: "key_1", KeySecret: "secret_1"})

	good := sign("secret_1", "order_1", "pay_1")

	ok, err := client.VerifySignature("order_1", "pay_1", good)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Flipping a single hex character must fail verification.
	mutated := []byte(good)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	ok, err = client.VerifySignature("order_1", "pay_1", string(mutated))
	assert.NoError(t, err)
	assert.False(t, ok)

	// A signature for different payment identifiers does not transfer.
	ok, err = client.VerifySignature("order_1", "pay_2", good)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Signing with another secret never passes.
	ok, err = client.VerifySignature("order_1", "pay_1", sign("secret_2", "order_1", "pay_1"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_VerifySignature_NotConfigured(t *testing.T) {
	client := newTestClient(t, &config.Gateway{})

	ok, err := client.VerifySignature("order_1", "pay_1", sign("", "order_1", "pay_1"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)
}

func TestClient_CreateGatewayOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_1", user)
		assert.Equal(t, "secret_1", pass)

		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(11800), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.NotEmpty(t, body.Receipt)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"order_srv_1","amount":11800,"currency":"INR"}`))
	}))
	defer server.Close()

	client := newTestClient(t, &config.Gateway{URL: server.URL, KeyID: "key_1", KeySecret: "secret_1"})

	amount, err := decimal.NewFromFloat64(118)
	require.NoError(t, err)

	gwOrder, err := client.CreateGatewayOrder(context.Background(), amount)
	require.NoError(t, err)
	assert.Equal(t, "order_srv_1", gwOrder.ID)
	assert.Equal(t, "INR", gwOrder.Currency)
	assert.Equal(t, "key_1", gwOrder.KeyID)
}

func TestClient_CreateGatewayOrder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, &config.Gateway{URL: server.URL, KeyID: "key_1", KeySecret: "secret_1"})

	amount, err := decimal.NewFromFloat64(118)
	require.NoError(t, err)

	_, err = client.CreateGatewayOrder(context.Background(), amount)
	assert.ErrorIs(t, err, domain.ErrGatewayRequest)
}

func TestClient_CreateGatewayOrder_NotConfigured(t *testing.T) {
	client := newTestClient(t, &config.Gateway{URL: "http://gateway.invalid"})

	amount, err := decimal.NewFromFloat64(118)
	require.NoError(t, err)

	_, err = client.CreateGatewayOrder(context.Background(), amount)
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)
}
