package port

import (
	"context"

	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/core/domain"
)

//go:generate mockgen -source=gateway.go -destination=mock/gateway.go -package=mock
type PaymentGateway interface {
	// CreateGatewayOrder registers a pending payment of amount with the
	// gateway and returns its handle.
	CreateGatewayOrder(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error)
	// VerifySignature recomputes the callback HMAC over the correlation id
	// pair and compares it with the supplied signature. A mismatch is
	// (false, nil); the error is reserved for missing configuration.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) (bool, error)
}
