package http

import (
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/adapter/metrics"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Handler
	service port.Service
	metrics *metrics.Metrics
}

func NewPaymentHandler(service port.Service, m *metrics.Metrics, logger *zap.Logger) (*PaymentHandler, error) {
	return &PaymentHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

type createPaymentOrderRequest struct {
	Amount float64 `json:"amount"`
}

type createPaymentOrderResponse struct {
	OrderID  string          `json:"orderId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	KeyID    string          `json:"keyId"`
}

func (ph *PaymentHandler) CreatePaymentOrder(ctx *gin.Context) {
	req := createPaymentOrderRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		ph.handleError(ctx, domain.ErrInvalidAmount)
		return
	}

	gwOrder, err := ph.service.CreatePaymentOrder(ctx, amount)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccess(ctx, createPaymentOrderResponse{
		OrderID:  gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		KeyID:    gwOrder.KeyID,
	})
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type verifyPaymentResponse struct {
	Verified bool `json:"verified"`
}

func (ph *PaymentHandler) VerifyPayment(ctx *gin.Context) {
	req := verifyPaymentRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ph.handleValidationError(ctx, err)
		return
	}

	err := ph.service.VerifyPayment(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	ph.metrics.PaymentVerification(err == nil)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccess(ctx, verifyPaymentResponse{Verified: true})
}
