package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// MonthlyOrderTotal is one raw month bucket as read from storage.
// Cancelled orders are excluded at the query level.
type MonthlyOrderTotal struct {
	Month time.Time
	Count int64
	Sales decimal.Decimal
}

// MonthlySales is one entry of the trailing twelve month series.
// Months with no orders are present with zero values.
type MonthlySales struct {
	Month time.Time
	Count int64
	Sales decimal.Decimal
}

type DashboardStats struct {
	TodayOrders  int64
	TotalOrders  int64
	StatusCounts map[OrderStatus]int64
	Monthly      []MonthlySales
	TodayRevenue decimal.Decimal
	TotalRevenue decimal.Decimal
}
