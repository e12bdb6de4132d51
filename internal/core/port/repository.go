package port

import (
	"context"
	"time"

	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order
	// CreateOrder persists the order with its lines and applies the stock
	// deltas in one transaction.
	CreateOrder(ctx context.Context, order *domain.Order, deltas []domain.StockDelta) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID uint64) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, uint64, error)
	// UpdateOrderStatus persists the order's status, payment status and stock
	// deltas in one transaction, guarded by the version the order was read
	// with. Returns ErrVersionConflict when the guard fails.
	UpdateOrderStatus(ctx context.Context, order *domain.Order, deltas []domain.StockDelta) (*domain.Order, error)

	// Cart
	ClearCart(ctx context.Context, userID uint64) error

	// Reporting. Zero from/to mean unbounded.
	CountOrdersBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	SumRevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	MonthlyOrderTotals(ctx context.Context, from time.Time) ([]domain.MonthlyOrderTotal, error)
}
