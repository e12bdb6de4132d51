package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/adapter/config"
	"github.com/verdora/ordercore/internal/core/domain"
	"go.uber.org/zap"
)

const currency = "INR"

// Client talks to the external payment gateway. It is constructed once at
// startup and injected; handlers never build their own instance.
type Client struct {
	logger    *zap.Logger
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(cfg *config.Gateway, log *zap.Logger) (*Client, error) {
	return &Client{
		logger:    log,
		baseURL:   cfg.URL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type gatewayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateGatewayOrder registers a pending payment with the gateway. Amount is
// converted to minor currency units for the wire.
func (c *Client) CreateGatewayOrder(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, domain.ErrGatewayNotConfigured
	}

	f, ok := amount.Float64()
	if !ok {
		return nil, domain.ErrInvalidAmount
	}

	body := gatewayOrderRequest{
		Amount:   int64(math.Round(f * 100)),
		Currency: currency,
		Receipt:  fmt.Sprintf("rcpt_%d", time.Now().UnixNano()),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gateway order: %w", err)
	}

	requestStr := c.baseURL + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestStr, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", requestStr, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("gateway order request failed", zap.Error(err))
		return nil, domain.ErrGatewayRequest
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("unexpected status from gateway",
			zap.Int("status", resp.StatusCode), zap.String("url", requestStr))
		return nil, domain.ErrGatewayRequest
	}

	var result gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	return &domain.GatewayOrder{
		ID:       result.ID,
		Amount:   amount,
		Currency: result.Currency,
		KeyID:    c.keyID,
	}, nil
}

// VerifySignature recomputes the callback HMAC-SHA256 over
// "<orderID>|<paymentID>" keyed by the shared secret and compares it with the
// supplied hex signature. Missing configuration fails closed with an error,
// never as a successful verification.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) (bool, error) {
	if c.keySecret == "" {
		return false, domain.ErrGatewayNotConfigured
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
