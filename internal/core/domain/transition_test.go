package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/verdora/ordercore/internal/core/domain"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusPending:    {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
		domain.OrderStatusConfirmed:  {domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled},
		domain.OrderStatusShipped:    {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
		domain.OrderStatusDelivered:  {},
		domain.OrderStatusCancelled:  {},
	}

	statuses := []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	}

	for from, targets := range allowed {
		targetSet := make(map[domain.OrderStatus]bool, len(targets))
		for _, t := range targets {
			targetSet[t] = true
		}

		for _, to := range statuses {
			want := targetSet[to] || from == to
			assert.Equalf(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, domain.OrderStatusDelivered.Terminal())
	assert.True(t, domain.OrderStatusCancelled.Terminal())
	assert.False(t, domain.OrderStatusPending.Terminal())
	assert.False(t, domain.OrderStatusConfirmed.Terminal())
	assert.False(t, domain.OrderStatus("bogus").Terminal())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, domain.OrderStatusShipped.Valid())
	assert.False(t, domain.OrderStatus("unknown").Valid())
	assert.False(t, domain.OrderStatus("").Valid())
}

func TestStockEffect(t *testing.T) {
	tests := []struct {
		name string
		prev domain.OrderStatus
		next domain.OrderStatus
		want int64
	}{
		{"pending to confirmed decrements", domain.OrderStatusPending, domain.OrderStatusConfirmed, -1},
		{"confirmed re-entry is a no-op", domain.OrderStatusConfirmed, domain.OrderStatusConfirmed, 0},
		{"cancel from confirmed restocks", domain.OrderStatusConfirmed, domain.OrderStatusCancelled, 1},
		{"cancel from processing restocks", domain.OrderStatusProcessing, domain.OrderStatusCancelled, 1},
		{"cancel from shipped restocks", domain.OrderStatusShipped, domain.OrderStatusCancelled, 1},
		{"cancel from pending has no stock to return", domain.OrderStatusPending, domain.OrderStatusCancelled, 0},
		{"ship does not touch stock", domain.OrderStatusConfirmed, domain.OrderStatusShipped, 0},
		{"deliver does not touch stock", domain.OrderStatusShipped, domain.OrderStatusDelivered, 0},
		{"cancel re-entry is a no-op", domain.OrderStatusCancelled, domain.OrderStatusCancelled, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, domain.StockEffect(test.prev, test.next))
		})
	}
}

func TestPaymentEnums_Valid(t *testing.T) {
	assert.True(t, domain.PaymentStatusRefunded.Valid())
	assert.False(t, domain.PaymentStatus("chargeback").Valid())

	assert.True(t, domain.PaymentMethodCOD.Valid())
	assert.True(t, domain.PaymentMethodGateway.Valid())
	assert.False(t, domain.PaymentMethod("").Valid())
	assert.False(t, domain.PaymentMethod("card").Valid())
}
