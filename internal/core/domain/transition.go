package domain

// orderTransitions lists the target statuses reachable from each status.
// Re-entering the current status is always allowed and carries no side effect.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// restockOnCancelFrom are the statuses whose earlier stock decrement must be
// returned when the order enters cancelled.
var restockOnCancelFrom = map[OrderStatus]bool{
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransition reports whether next is reachable from s.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// StockEffect is the per-line stock multiplier for a transition:
// -1 decrement on entering confirmed, +1 restock on cancellation after
// the decrement happened, 0 otherwise.
func StockEffect(prev, next OrderStatus) int64 {
	switch {
	case next == OrderStatusConfirmed && prev != OrderStatusConfirmed:
		return -1
	case next == OrderStatusCancelled && restockOnCancelFrom[prev]:
		return 1
	}
	return 0
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodGateway:
		return true
	}
	return false
}
