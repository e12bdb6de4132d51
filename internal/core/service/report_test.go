package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port/mock"
)

func TestService_DashboardStats(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	dayStart := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	seriesStart := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		repo.EXPECT().CountOrdersBetween(gomock.Any(), dayStart, dayEnd).Return(int64(2), nil)
		repo.EXPECT().CountOrdersByStatus(gomock.Any()).Return(map[domain.OrderStatus]int64{
			domain.OrderStatusConfirmed: 4,
			domain.OrderStatusDelivered: 9,
			domain.OrderStatusCancelled: 1,
		}, nil)
		repo.EXPECT().SumRevenueBetween(gomock.Any(), dayStart, dayEnd).Return(dec(t, 300), nil)
		repo.EXPECT().SumRevenueBetween(gomock.Any(), time.Time{}, time.Time{}).Return(dec(t, 5200), nil)

		// Only two of the twelve months have orders. Aggregation already
		// excludes cancelled orders, so March carries 300 over two orders
		// even though three were placed in it.
		repo.EXPECT().MonthlyOrderTotals(gomock.Any(), seriesStart).Return([]domain.MonthlyOrderTotal{
			{Month: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), Count: 5, Sales: dec(t, 4900)},
			{Month: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), Count: 2, Sales: dec(t, 300)},
		}, nil)
	})

	stats, err := s.DashboardStats(context.Background(), now)
	assert.NoError(t, err)

	assert.Equal(t, int64(2), stats.TodayOrders)
	assert.Equal(t, int64(14), stats.TotalOrders)
	assertDecimal(t, 300, stats.TodayRevenue)
	assertDecimal(t, 5200, stats.TotalRevenue)

	// Every status is present, zero-filled where the storage map is silent.
	assert.Len(t, stats.StatusCounts, 6)
	assert.Equal(t, int64(4), stats.StatusCounts[domain.OrderStatusConfirmed])
	assert.Equal(t, int64(0), stats.StatusCounts[domain.OrderStatusPending])
	assert.Equal(t, int64(0), stats.StatusCounts[domain.OrderStatusShipped])
	assert.Equal(t, int64(1), stats.StatusCounts[domain.OrderStatusCancelled])

	// Twelve chronological months ending with the current one.
	assert.Len(t, stats.Monthly, 12)
	assert.Equal(t, seriesStart, stats.Monthly[0].Month)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), stats.Monthly[11].Month)
	for i := 1; i < len(stats.Monthly); i++ {
		assert.True(t, stats.Monthly[i-1].Month.Before(stats.Monthly[i].Month))
	}

	assert.Equal(t, int64(5), stats.Monthly[2].Count)
	assertDecimal(t, 4900, stats.Monthly[2].Sales)
	assert.Equal(t, int64(2), stats.Monthly[11].Count)
	assertDecimal(t, 300, stats.Monthly[11].Sales)

	// The gaps are genuine zero entries, not omissions.
	assert.Equal(t, int64(0), stats.Monthly[0].Count)
	assertDecimal(t, 0, stats.Monthly[0].Sales)
	assert.Equal(t, int64(0), stats.Monthly[10].Count)
}

func TestService_DashboardStats_EmptyLedger(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	s := newTestService(t, func(t *testing.T, repo *mock.MockRepository, gateway *mock.MockPaymentGateway) {
		repo.EXPECT().CountOrdersBetween(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
		repo.EXPECT().CountOrdersByStatus(gomock.Any()).Return(map[domain.OrderStatus]int64{}, nil)
		repo.EXPECT().SumRevenueBetween(gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil).Times(2)
		repo.EXPECT().MonthlyOrderTotals(gomock.Any(), gomock.Any()).Return(nil, nil)
	})

	stats, err := s.DashboardStats(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalOrders)
	assert.Len(t, stats.StatusCounts, 6)
	assert.Len(t, stats.Monthly, 12)
	for _, m := range stats.Monthly {
		assert.Equal(t, int64(0), m.Count)
	}
}
