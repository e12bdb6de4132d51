package service

import (
	"context"
	"time"

	"github.com/verdora/ordercore/internal/core/domain"
	"go.uber.org/zap"
)

const trailingMonths = 12

var allOrderStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
	domain.OrderStatusCancelled,
}

// DashboardStats assembles the operational aggregates for "now": today's
// order count and revenue, per-status counts, the all-time totals and the
// trailing twelve calendar months of sales. Revenue sums exclude cancelled
// orders. The result enumerates every status and every month even when no
// orders fall into them, and the read mutates nothing.
func (s *Service) DashboardStats(ctx context.Context, now time.Time) (*domain.DashboardStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	seriesStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(trailingMonths - 1), 0)

	todayOrders, err := s.repo.CountOrdersBetween(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("Count today orders", zap.Error(err))
		return nil, err
	}

	statusCounts, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		s.logger.Error("Count orders by status", zap.Error(err))
		return nil, err
	}

	todayRevenue, err := s.repo.SumRevenueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("Sum today revenue", zap.Error(err))
		return nil, err
	}

	totalRevenue, err := s.repo.SumRevenueBetween(ctx, time.Time{}, time.Time{})
	if err != nil {
		s.logger.Error("Sum total revenue", zap.Error(err))
		return nil, err
	}

	buckets, err := s.repo.MonthlyOrderTotals(ctx, seriesStart)
	if err != nil {
		s.logger.Error("Read monthly order totals", zap.Error(err))
		return nil, err
	}

	stats := &domain.DashboardStats{
		TodayOrders:  todayOrders,
		StatusCounts: make(map[domain.OrderStatus]int64, len(allOrderStatuses)),
		Monthly:      make([]domain.MonthlySales, 0, trailingMonths),
		TodayRevenue: todayRevenue,
		TotalRevenue: totalRevenue,
	}

	for _, status := range allOrderStatuses {
		stats.StatusCounts[status] = statusCounts[status]
		stats.TotalOrders += statusCounts[status]
	}

	byMonth := make(map[string]domain.MonthlyOrderTotal, len(buckets))
	for _, b := range buckets {
		byMonth[monthKey(b.Month)] = b
	}

	for i := 0; i < trailingMonths; i++ {
		month := seriesStart.AddDate(0, i, 0)
		entry := domain.MonthlySales{Month: month}
		if b, ok := byMonth[monthKey(month)]; ok {
			entry.Count = b.Count
			entry.Sales = b.Sales
		}
		stats.Monthly = append(stats.Monthly, entry)
	}

	return stats, nil
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
