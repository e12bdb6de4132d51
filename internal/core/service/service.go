package service

import (
	"context"
	"errors"
	"time"

	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port"
	"go.uber.org/zap"
)

// taxRate is the default rate of each GST component (9% of subtotal).
var taxRate = decimal.MustNew(9, 2)

// maxUpdateAttempts bounds the read-guard-write retry cycle on version conflicts.
const maxUpdateAttempts = 3

type Service struct {
	repo    port.Repository
	gateway port.PaymentGateway
	logger  *zap.Logger
}

func NewService(repo port.Repository, gateway port.PaymentGateway, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:    repo,
		gateway: gateway,
		logger:  logger,
	}, nil
}

// CreateOrder turns a checkout draft into a persisted order. Validation and
// payment verification run before any side effect; the buyer's cart is
// cleared only after the order transaction commits, so a failure can lose a
// cart clear but never an order.
func (s *Service) CreateOrder(ctx context.Context, userID uint64, draft *domain.OrderDraft) (*domain.Order, error) {
	if len(draft.Lines) == 0 {
		return nil, domain.ErrEmptyOrderItems
	}
	if draft.Shipping.Address == "" || draft.Shipping.City == "" {
		return nil, domain.ErrMissingShippingAddress
	}
	if !draft.PaymentMethod.Valid() {
		return nil, domain.ErrMissingPaymentMethod
	}

	paymentStatus := domain.PaymentStatusPending
	if draft.PaymentMethod == domain.PaymentMethodGateway {
		if draft.GatewayOrderID == "" || draft.GatewayPaymentID == "" || draft.GatewaySignature == "" {
			return nil, domain.ErrMissingPaymentProof
		}
		ok, err := s.gateway.VerifySignature(draft.GatewayOrderID, draft.GatewayPaymentID, draft.GatewaySignature)
		if err != nil {
			s.logger.Error("Verify payment signature", zap.Error(err))
			return nil, err
		}
		if !ok {
			return nil, domain.ErrPaymentVerification
		}
		paymentStatus = domain.PaymentStatusPaid
	}

	sgst, cgst, gst, grandTotal, err := orderTotals(draft)
	if err != nil {
		s.logger.Error("Compute order totals", zap.Error(err))
		return nil, domain.ErrInternal
	}

	shipping := draft.Shipping
	if shipping.Country == "" {
		shipping.Country = domain.DefaultCountry
	}

	now := time.Now()
	order := &domain.Order{
		Number:           NewOrderNumber(now),
		UserID:           userID,
		Lines:            draft.Lines,
		Subtotal:         draft.Subtotal,
		SGST:             sgst,
		CGST:             cgst,
		GST:              gst,
		GrandTotal:       grandTotal,
		Shipping:         shipping,
		PaymentMethod:    draft.PaymentMethod,
		PaymentStatus:    paymentStatus,
		GatewayOrderID:   draft.GatewayOrderID,
		GatewayPaymentID: draft.GatewayPaymentID,
		GatewaySignature: draft.GatewaySignature,
		Status:           domain.OrderStatusConfirmed,
		Notes:            draft.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Checkout confirms immediately, so the confirmed-entry stock decrement
	// rides in the same transaction as the insert.
	deltas := stockDeltas(order.Lines, -1)

	created, err := s.repo.CreateOrder(ctx, order, deltas)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, err
		}
		s.logger.Error("Create order", zap.Error(err))
		return nil, domain.ErrInternal
	}

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		// The order is durable; a stale cart is recoverable by the client.
		s.logger.Error("Clear cart after order", zap.Uint64("user", userID), zap.Error(err))
	}

	return created, nil
}

func (s *Service) GetUserOrder(ctx context.Context, userID uint64, orderID uint64) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrDataNotFound
	}
	return order, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID uint64) ([]*domain.Order, error) {
	list, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		s.logger.Error("List orders for user", zap.Error(err))
		return nil, err
	}
	return list, nil
}

// CancelUserOrder runs the cancellation transition on the caller's own order.
// Orders already handed to delivery are rejected outright.
func (s *Service) CancelUserOrder(ctx context.Context, userID uint64, orderID uint64) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrDataNotFound
	}
	switch order.Status {
	case domain.OrderStatusShipped, domain.OrderStatusDelivered:
		return nil, domain.ErrOrderNotCancellable
	case domain.OrderStatusCancelled:
		return order, nil
	}

	cancelled := domain.OrderStatusCancelled
	return s.UpdateOrderStatus(ctx, orderID, &cancelled, nil)
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}

	orders, total, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, err
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}

	return &domain.OrderPage{
		Orders: orders,
		Page:   filter.Page,
		Limit:  filter.Limit,
		Total:  total,
		Pages:  pages,
	}, nil
}

// UpdateOrderStatus applies an administrative transition. The guard compares
// against the status read at the start of the cycle; the repository enforces
// it with the order's version, and a conflict restarts the whole cycle.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint64,
	status *domain.OrderStatus, paymentStatus *domain.PaymentStatus) (*domain.Order, error) {
	if status == nil && paymentStatus == nil {
		return nil, domain.ErrNoUpdatedData
	}
	if status != nil && !status.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}
	if paymentStatus != nil && !paymentStatus.Valid() {
		return nil, domain.ErrInvalidPaymentStatus
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		order, err := s.repo.ReadOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}

		prev := order.Status
		next := prev
		if status != nil {
			next = *status
			if !prev.CanTransition(next) {
				return nil, domain.ErrIllegalTransition
			}
		}

		wasPaid := order.PaymentStatus == domain.PaymentStatusPaid

		if next == prev && paymentStatus == nil {
			// Re-entering the current status: nothing to apply.
			return order, nil
		}

		var deltas []domain.StockDelta
		if effect := domain.StockEffect(prev, next); effect != 0 {
			deltas = stockDeltas(order.Lines, effect)
		}

		order.Status = next
		if paymentStatus != nil {
			order.PaymentStatus = *paymentStatus
		}
		if next == domain.OrderStatusCancelled && prev != domain.OrderStatusCancelled && wasPaid {
			// Marker for external reconciliation; no refund is issued here.
			order.PaymentStatus = domain.PaymentStatusRefunded
		}

		updated, err := s.repo.UpdateOrderStatus(ctx, order, deltas)
		if errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Debug("Retry order transition on version conflict",
				zap.Uint64("order", orderID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.logger.Error("Update order status", zap.Error(err))
			return nil, err
		}
		return updated, nil
	}

	return nil, domain.ErrVersionConflict
}

func (s *Service) CreatePaymentOrder(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	gwOrder, err := s.gateway.CreateGatewayOrder(ctx, amount)
	if err != nil {
		s.logger.Error("Create gateway order", zap.Error(err))
		return nil, err
	}
	return gwOrder, nil
}

// VerifyPayment is the standalone verification endpoint. It shares the exact
// verification code with order creation through the gateway port.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return domain.ErrMissingPaymentProof
	}

	ok, err := s.gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature)
	if err != nil {
		s.logger.Error("Verify payment signature", zap.Error(err))
		return err
	}
	if !ok {
		return domain.ErrPaymentVerification
	}
	return nil
}

// orderTotals fills the tax components, defaulting each GST half to 9% of the
// subtotal and the combined tax to their sum when the caller did not supply
// overrides. Grand total is always subtotal plus combined tax.
func orderTotals(draft *domain.OrderDraft) (sgst, cgst, gst, grandTotal decimal.Decimal, err error) {
	sgst, err = taxComponent(draft.SGST, draft.Subtotal)
	if err != nil {
		return
	}
	cgst, err = taxComponent(draft.CGST, draft.Subtotal)
	if err != nil {
		return
	}

	if draft.GST != nil {
		gst = *draft.GST
	} else {
		gst, err = sgst.Add(cgst)
		if err != nil {
			return
		}
	}

	grandTotal, err = draft.Subtotal.Add(gst)
	return
}

func taxComponent(override *decimal.Decimal, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		return *override, nil
	}
	return subtotal.Mul(taxRate)
}

func stockDeltas(lines []domain.OrderLine, effect int64) []domain.StockDelta {
	deltas := make([]domain.StockDelta, 0, len(lines))
	for _, line := range lines {
		deltas = append(deltas, domain.StockDelta{
			ProductID: line.ProductID,
			Delta:     effect * int64(line.Quantity),
		})
	}
	return deltas
}
