package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/adapter/metrics"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Handler
	service port.Service
	metrics *metrics.Metrics
}

func NewAdminHandler(service port.Service, m *metrics.Metrics, logger *zap.Logger) (*AdminHandler, error) {
	return &AdminHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

type orderPageResponse struct {
	Orders []orderResponse `json:"orders"`
	Page   uint64          `json:"page"`
	Limit  uint64          `json:"limit"`
	Total  uint64          `json:"total"`
	Pages  uint64          `json:"pages"`
}

func (ah *AdminHandler) ListOrders(ctx *gin.Context) {
	filter := domain.OrderFilter{}

	if s := ctx.Query("status"); s != "" {
		status := domain.OrderStatus(s)
		filter.Status = &status
	}
	filter.Page, _ = strconv.ParseUint(ctx.DefaultQuery("page", "1"), 10, 64)
	filter.Limit, _ = strconv.ParseUint(ctx.DefaultQuery("limit", "20"), 10, 64)

	page, err := ah.service.ListOrders(ctx, filter)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	orders := make([]orderResponse, 0, len(page.Orders))
	for _, o := range page.Orders {
		orders = append(orders, newOrderResponse(o))
	}

	ah.handleSuccess(ctx, orderPageResponse{
		Orders: orders,
		Page:   page.Page,
		Limit:  page.Limit,
		Total:  page.Total,
		Pages:  page.Pages,
	})
}

type updateOrderStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (ah *AdminHandler) UpdateOrderStatus(ctx *gin.Context) {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	req := updateOrderStatusRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ah.handleValidationError(ctx, err)
		return
	}

	var status *domain.OrderStatus
	if req.OrderStatus != nil {
		s := domain.OrderStatus(*req.OrderStatus)
		status = &s
	}
	var paymentStatus *domain.PaymentStatus
	if req.PaymentStatus != nil {
		p := domain.PaymentStatus(*req.PaymentStatus)
		paymentStatus = &p
	}

	order, err := ah.service.UpdateOrderStatus(ctx, orderID, status, paymentStatus)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.metrics.OrderTransition(string(order.Status))
	ah.handleSuccess(ctx, newOrderResponse(order))
}

type monthlySalesResponse struct {
	Month string          `json:"month"`
	Sales decimal.Decimal `json:"sales"`
	Count int64           `json:"count"`
}

type dashboardResponse struct {
	TodayOrders  int64                  `json:"todayOrders"`
	TotalOrders  int64                  `json:"totalOrders"`
	StatusCounts map[string]int64       `json:"statusCounts"`
	MonthlySales []monthlySalesResponse `json:"monthlySales"`
	TodayRevenue decimal.Decimal        `json:"todayRevenue"`
	TotalRevenue decimal.Decimal        `json:"totalRevenue"`
}

func (ah *AdminHandler) Dashboard(ctx *gin.Context) {
	stats, err := ah.service.DashboardStats(ctx, time.Now())
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	statusCounts := make(map[string]int64, len(stats.StatusCounts))
	for status, count := range stats.StatusCounts {
		statusCounts[string(status)] = count
	}

	monthly := make([]monthlySalesResponse, 0, len(stats.Monthly))
	for _, m := range stats.Monthly {
		monthly = append(monthly, monthlySalesResponse{
			Month: m.Month.Format("2006-01"),
			Sales: m.Sales,
			Count: m.Count,
		})
	}

	ah.handleSuccess(ctx, dashboardResponse{
		TodayOrders:  stats.TodayOrders,
		TotalOrders:  stats.TotalOrders,
		StatusCounts: statusCounts,
		MonthlySales: monthly,
		TodayRevenue: stats.TodayRevenue,
		TotalRevenue: stats.TotalRevenue,
	})
}
