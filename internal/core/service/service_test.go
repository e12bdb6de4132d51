package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port/mock"
	"github.com/verdora/ordercore/internal/core/service"
	"go.uber.org/zap"
)

type prepareMocks func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway)

func dec(t *testing.T, value float64) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromFloat64(value)
	assert.NoError(t, err)
	return d
}

func decPtr(t *testing.T, value float64) *decimal.Decimal {
	d := dec(t, value)
	return &d
}

func assertDecimal(t *testing.T, want float64, got decimal.Decimal) {
	t.Helper()
	f, ok := got.Float64()
	assert.True(t, ok)
	assert.Equal(t, want, f)
}

func testLine(t *testing.T, productID uint64, quantity uint32, unitPrice float64) domain.OrderLine {
	return domain.OrderLine{
		ProductID:   productID,
		ProductName: "Monstera Deliciosa",
		Grade:       domain.GradeSnapshot{ID: 1, Name: "Large", Price: dec(t, unitPrice)},
		Colors:      []domain.ColorSnapshot{{ID: 3, Name: "Terracotta", Hex: "#c8553d"}},
		Quantity:    quantity,
		UnitPrice:   dec(t, unitPrice),
		LineTotal:   dec(t, unitPrice*float64(quantity)),
	}
}

func testDraft(t *testing.T) *domain.OrderDraft {
	return &domain.OrderDraft{
		Lines:         []domain.OrderLine{testLine(t, 7, 2, 50)},
		Shipping:      domain.ShippingAddress{Name: "Asha", Address: "12 Rose St", City: "Pune"},
		Subtotal:      dec(t, 100),
		PaymentMethod: domain.PaymentMethodCOD,
	}
}

func newTestService(t *testing.T, prepare prepareMocks) *service.Service {
	t.Helper()
	mockCtrl := gomock.NewController(t)
	t.Cleanup(mockCtrl.Finish)

	repo := mock.NewMockRepository(mockCtrl)
	gateway := mock.NewMockPaymentGateway(mockCtrl)
	if prepare != nil {
		prepare(t, repo, gateway)
	}

	logger, _ := zap.NewProduction()
	s, err := service.NewService(repo, gateway, logger)
	assert.NoError(t, err)
	return s
}

func TestService_CreateOrder_Defaults(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		create := repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *domain.Order, deltas []domain.StockDelta) (*domain.Order, error) {
				assert.NotEmpty(t, order.Number)
				assert.Equal(t, uint64(1), order.UserID)
				assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
				assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
				assert.Equal(t, domain.DefaultCountry, order.Shipping.Country)

				assertDecimal(t, 100, order.Subtotal)
				assertDecimal(t, 9, order.SGST)
				assertDecimal(t, 9, order.CGST)
				assertDecimal(t, 18, order.GST)
				assertDecimal(t, 118, order.GrandTotal)

				assert.Equal(t, []domain.StockDelta{{ProductID: 7, Delta: -2}}, deltas)
				return order, nil
			})

		// Cart is cleared only once the order is durable.
		repo.EXPECT().ClearCart(gomock.Any(), uint64(1)).Return(nil).After(create)
	})

	order, err := s.CreateOrder(context.Background(), 1, testDraft(t))
	assert.NoError(t, err)
	assert.NotNil(t, order)
}

func TestService_CreateOrder_TaxOverrides(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
				assertDecimal(t, 5, order.SGST)
				assertDecimal(t, 5, order.CGST)
				assertDecimal(t, 0, order.GST)
				assertDecimal(t, 100, order.GrandTotal)
				return order, nil
			})
		repo.EXPECT().ClearCart(gomock.Any(), uint64(1)).Return(nil)
	})

	draft := testDraft(t)
	draft.SGST = decPtr(t, 5)
	draft.CGST = decPtr(t, 5)
	draft.GST = decPtr(t, 0) // tax-inclusive pricing

	_, err := s.CreateOrder(context.Background(), 1, draft)
	assert.NoError(t, err)
}

func TestService_CreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, draft *domain.OrderDraft)
		expError error
	}{
		{
			name:     "no items",
			mutate:   func(t *testing.T, d *domain.OrderDraft) { d.Lines = nil },
			expError: domain.ErrEmptyOrderItems,
		},
		{
			name:     "no address line",
			mutate:   func(t *testing.T, d *domain.OrderDraft) { d.Shipping.Address = "" },
			expError: domain.ErrMissingShippingAddress,
		},
		{
			name:     "no city",
			mutate:   func(t *testing.T, d *domain.OrderDraft) { d.Shipping.City = "" },
			expError: domain.ErrMissingShippingAddress,
		},
		{
			name:     "no payment method",
			mutate:   func(t *testing.T, d *domain.OrderDraft) { d.PaymentMethod = "" },
			expError: domain.ErrMissingPaymentMethod,
		},
		{
			name: "gateway method without proof",
			mutate: func(t *testing.T, d *domain.OrderDraft) {
				d.PaymentMethod = domain.PaymentMethodGateway
				d.GatewayOrderID = "order_1"
			},
			expError: domain.ErrMissingPaymentProof,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// No repository expectations: a rejected draft must not touch
			// the order ledger or the cart.
			s := newTestService(t, nil)

			draft := testDraft(t)
			test.mutate(t, draft)

			result, err := s.CreateOrder(context.Background(), 1, draft)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_CreateOrder_GatewayVerified(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		gateway.EXPECT().VerifySignature("order_1", "pay_1", "sig_1").Return(true, nil)
		repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
				assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
				assert.Equal(t, "order_1", order.GatewayOrderID)
				return order, nil
			})
		repo.EXPECT().ClearCart(gomock.Any(), uint64(1)).Return(nil)
	})

	draft := testDraft(t)
	draft.PaymentMethod = domain.PaymentMethodGateway
	draft.GatewayOrderID = "order_1"
	draft.GatewayPaymentID = "pay_1"
	draft.GatewaySignature = "sig_1"

	_, err := s.CreateOrder(context.Background(), 1, draft)
	assert.NoError(t, err)
}

func TestService_CreateOrder_GatewayRejected(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		// No order persisted and no cart mutation on a bad signature.
		gateway.EXPECT().VerifySignature("order_1", "pay_1", "forged").Return(false, nil)
	})

	draft := testDraft(t)
	draft.PaymentMethod = domain.PaymentMethodGateway
	draft.GatewayOrderID = "order_1"
	draft.GatewayPaymentID = "pay_1"
	draft.GatewaySignature = "forged"

	result, err := s.CreateOrder(context.Background(), 1, draft)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPaymentVerification)
}

func TestService_CreateOrder_GatewayNotConfigured(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		gateway.EXPECT().VerifySignature("order_1", "pay_1", "sig_1").
			Return(false, domain.ErrGatewayNotConfigured)
	})

	draft := testDraft(t)
	draft.PaymentMethod = domain.PaymentMethodGateway
	draft.GatewayOrderID = "order_1"
	draft.GatewayPaymentID = "pay_1"
	draft.GatewaySignature = "sig_1"

	_, err := s.CreateOrder(context.Background(), 1, draft)
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)
}

func storedOrder(t *testing.T, status domain.OrderStatus, paymentStatus domain.PaymentStatus) *domain.Order {
	return &domain.Order{
		ID:            10,
		Number:        "ORD-20250101-AB12CD34EF",
		UserID:        1,
		Lines:         []domain.OrderLine{testLine(t, 7, 2, 50)},
		Subtotal:      dec(t, 100),
		GrandTotal:    dec(t, 118),
		PaymentMethod: domain.PaymentMethodGateway,
		PaymentStatus: paymentStatus,
		Status:        status,
		Version:       3,
	}
}

func TestService_UpdateOrderStatus(t *testing.T) {
	confirmed := domain.OrderStatusConfirmed
	processing := domain.OrderStatusProcessing
	cancelled := domain.OrderStatusCancelled
	unknown := domain.OrderStatus("lost")
	paid := domain.PaymentStatusPaid

	tests := []struct {
		name          string
		status        *domain.OrderStatus
		paymentStatus *domain.PaymentStatus
		mock          prepareMocks
		expError      error
		check         func(t *testing.T, order *domain.Order)
	}{
		{
			name:   "confirming a pending order decrements stock",
			status: &confirmed,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusPending, domain.PaymentStatusPending), nil)
				repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(),
					[]domain.StockDelta{{ProductID: 7, Delta: -2}}).
					DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
						return order, nil
					})
			},
		},
		{
			name:   "confirm re-entry leaves stock alone",
			status: &confirmed,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				// No UpdateOrderStatus expectation: the second confirm is a no-op.
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil)
			},
			check: func(t *testing.T, order *domain.Order) {
				assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
			},
		},
		{
			name:   "cancelling a paid confirmed order restocks and marks refunded",
			status: &cancelled,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil)
				repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(),
					[]domain.StockDelta{{ProductID: 7, Delta: 2}}).
					DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusCancelled, order.Status)
						assert.Equal(t, domain.PaymentStatusRefunded, order.PaymentStatus)
						return order, nil
					})
			},
			check: func(t *testing.T, order *domain.Order) {
				assert.Equal(t, domain.PaymentStatusRefunded, order.PaymentStatus)
			},
		},
		{
			name:   "illegal transition is rejected before any write",
			status: &processing,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusDelivered, domain.PaymentStatusPaid), nil)
			},
			expError: domain.ErrIllegalTransition,
		},
		{
			name:     "unknown status",
			status:   &unknown,
			mock:     nil,
			expError: domain.ErrInvalidOrderStatus,
		},
		{
			name:     "nothing to update",
			mock:     nil,
			expError: domain.ErrNoUpdatedData,
		},
		{
			name:          "payment status only",
			paymentStatus: &paid,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPending), nil)
				repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(), gomock.Nil()).
					DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
						assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
						return order, nil
					})
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestService(t, test.mock)

			order, err := s.UpdateOrderStatus(context.Background(), 10, test.status, test.paymentStatus)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)
			if test.check != nil {
				test.check(t, order)
			}
		})
	}
}

func TestService_UpdateOrderStatus_RetriesOnVersionConflict(t *testing.T) {
	shipped := domain.OrderStatusShipped

	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		first := repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
			Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil)
		conflict := repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(nil, domain.ErrVersionConflict).After(first)
		second := repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
			Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil).After(conflict)
		repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
				return order, nil
			}).After(second)
	})

	order, err := s.UpdateOrderStatus(context.Background(), 10, &shipped, nil)
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
}

func TestService_CancelUserOrder(t *testing.T) {
	tests := []struct {
		name     string
		userID   uint64
		mock     prepareMocks
		expError error
	}{
		{
			name:   "cancel confirmed order",
			userID: 1,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil).
					Times(2)
				repo.EXPECT().UpdateOrderStatus(gomock.Any(), gomock.Any(),
					[]domain.StockDelta{{ProductID: 7, Delta: 2}}).
					DoAndReturn(func(_ context.Context, order *domain.Order, _ []domain.StockDelta) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusCancelled, order.Status)
						return order, nil
					})
			},
		},
		{
			name:   "shipped order is rejected",
			userID: 1,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusShipped, domain.PaymentStatusPaid), nil)
			},
			expError: domain.ErrOrderNotCancellable,
		},
		{
			name:   "delivered order is rejected",
			userID: 1,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusDelivered, domain.PaymentStatusPaid), nil)
			},
			expError: domain.ErrOrderNotCancellable,
		},
		{
			name:   "foreign order reads as missing",
			userID: 2,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil)
			},
			expError: domain.ErrDataNotFound,
		},
		{
			name:   "already cancelled order is returned as is",
			userID: 1,
			mock: func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
				repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
					Return(storedOrder(t, domain.OrderStatusCancelled, domain.PaymentStatusRefunded), nil)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestService(t, test.mock)

			order, err := s.CancelUserOrder(context.Background(), test.userID, 10)
			if test.expError != nil {
				assert.Nil(t, order)
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, order)
		})
	}
}

func TestService_GetUserOrder(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		repo.EXPECT().ReadOrder(gomock.Any(), uint64(10)).
			Return(storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid), nil).
			Times(2)
	})

	order, err := s.GetUserOrder(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), order.ID)

	// Another user's credential must not see the order.
	order, err = s.GetUserOrder(context.Background(), 99, 10)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestService_ListOrders_Pagination(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		repo.EXPECT().ListOrders(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, uint64, error) {
				assert.Equal(t, uint64(1), filter.Page)
				assert.Equal(t, uint64(20), filter.Limit)
				return []*domain.Order{storedOrder(t, domain.OrderStatusConfirmed, domain.PaymentStatusPaid)}, 41, nil
			})
	})

	page, err := s.ListOrders(context.Background(), domain.OrderFilter{})
	assert.NoError(t, err)
	assert.Equal(t, uint64(41), page.Total)
	assert.Equal(t, uint64(3), page.Pages)
	assert.Len(t, page.Orders, 1)
}

func TestService_CreatePaymentOrder(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		gateway.EXPECT().CreateGatewayOrder(gomock.Any(), gomock.Any()).
			Return(&domain.GatewayOrder{ID: "order_1", Currency: "INR", KeyID: "key"}, nil)
	})

	gwOrder, err := s.CreatePaymentOrder(context.Background(), dec(t, 118))
	assert.NoError(t, err)
	assert.Equal(t, "order_1", gwOrder.ID)

	_, err = s.CreatePaymentOrder(context.Background(), dec(t, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = s.CreatePaymentOrder(context.Background(), dec(t, -5))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestService_VerifyPayment(t *testing.T) {
	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		gateway.EXPECT().VerifySignature("order_1", "pay_1", "good").Return(true, nil)
		gateway.EXPECT().VerifySignature("order_1", "pay_1", "bad").Return(false, nil)
	})

	assert.NoError(t, s.VerifyPayment(context.Background(), "order_1", "pay_1", "good"))
	assert.ErrorIs(t, s.VerifyPayment(context.Background(), "order_1", "pay_1", "bad"),
		domain.ErrPaymentVerification)
	assert.ErrorIs(t, s.VerifyPayment(context.Background(), "", "pay_1", "good"),
		domain.ErrMissingPaymentProof)
}
