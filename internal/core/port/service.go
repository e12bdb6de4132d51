package port

import (
	"context"
	"time"

	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	CreateOrder(ctx context.Context, userID uint64, draft *domain.OrderDraft) (*domain.Order, error)
	GetUserOrder(ctx context.Context, userID uint64, orderID uint64) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uint64) ([]*domain.Order, error)
	CancelUserOrder(ctx context.Context, userID uint64, orderID uint64) (*domain.Order, error)

	ListOrders(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64,
		status *domain.OrderStatus, paymentStatus *domain.PaymentStatus) (*domain.Order, error)
	DashboardStats(ctx context.Context, now time.Time) (*domain.DashboardStats, error)

	CreatePaymentOrder(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error)
	VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error
}
