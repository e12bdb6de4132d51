package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/verdora/ordercore/internal/adapter/metrics"
	"github.com/verdora/ordercore/internal/core/domain"
	"github.com/verdora/ordercore/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
	metrics *metrics.Metrics
}

func NewOrderHandler(service port.Service, m *metrics.Metrics, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
		metrics: m,
	}, nil
}

type gradeRequest struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type colorRequest struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type orderItemRequest struct {
	ProductID uint64         `json:"productId"`
	Name      string         `json:"name"`
	Image     string         `json:"image"`
	Grade     gradeRequest   `json:"grade"`
	Colors    []colorRequest `json:"colors"`
	Quantity  uint32         `json:"quantity"`
	UnitPrice float64        `json:"unitPrice"`
	LineTotal float64        `json:"lineTotal"`
}

type shippingAddressRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	Subtotal        float64                `json:"subtotal"`
	SgstAmount      *float64               `json:"sgstAmount"`
	CgstAmount      *float64               `json:"cgstAmount"`
	GstAmount       *float64               `json:"gstAmount"`
	// GrandTotal is accepted for API compatibility; the server recomputes it.
	GrandTotal       *float64 `json:"grandTotal"`
	PaymentMethod    string   `json:"paymentMethod"`
	GatewayOrderID   string   `json:"gatewayOrderId"`
	GatewayPaymentID string   `json:"gatewayPaymentId"`
	GatewaySignature string   `json:"signature"`
	Notes            string   `json:"notes"`
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	userID := getAuthPayload(ctx).UserID

	req := createOrderRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.CreateOrder(ctx, userID, draft)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.metrics.OrderCreated()
	oh.handleSuccessWithStatus(ctx, newOrderResponse(order), http.StatusCreated)
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	userID := getAuthPayload(ctx).UserID

	list, err := oh.service.ListUserOrders(ctx, userID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResponse, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResponse(o))
	}

	oh.handleSuccess(ctx, result)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	userID := getAuthPayload(ctx).UserID

	orderID, err := orderIDParam(ctx)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := oh.service.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	userID := getAuthPayload(ctx).UserID

	orderID, err := orderIDParam(ctx)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := oh.service.CancelUserOrder(ctx, userID, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.metrics.OrderTransition(string(order.Status))
	oh.handleSuccess(ctx, newOrderResponse(order))
}

func orderIDParam(ctx *gin.Context) (uint64, error) {
	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrBadRequest
	}
	return orderID, nil
}

func (req *createOrderRequest) toDraft() (*domain.OrderDraft, error) {
	subtotal, err := decimal.NewFromFloat64(req.Subtotal)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		line, err := item.toLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	draft := &domain.OrderDraft{
		Lines: lines,
		Shipping: domain.ShippingAddress{
			Name:       req.ShippingAddress.Name,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
			Phone:      req.ShippingAddress.Phone,
		},
		Subtotal:         subtotal,
		PaymentMethod:    domain.PaymentMethod(req.PaymentMethod),
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		Notes:            req.Notes,
	}

	if draft.SGST, err = optDecimal(req.SgstAmount); err != nil {
		return nil, err
	}
	if draft.CGST, err = optDecimal(req.CgstAmount); err != nil {
		return nil, err
	}
	if draft.GST, err = optDecimal(req.GstAmount); err != nil {
		return nil, err
	}

	return draft, nil
}

func (item *orderItemRequest) toLine() (domain.OrderLine, error) {
	unitPrice, err := decimal.NewFromFloat64(item.UnitPrice)
	if err != nil {
		return domain.OrderLine{}, err
	}
	lineTotal, err := decimal.NewFromFloat64(item.LineTotal)
	if err != nil {
		return domain.OrderLine{}, err
	}
	gradePrice, err := decimal.NewFromFloat64(item.Grade.Price)
	if err != nil {
		return domain.OrderLine{}, err
	}

	colors := make([]domain.ColorSnapshot, 0, len(item.Colors))
	for _, c := range item.Colors {
		colors = append(colors, domain.ColorSnapshot{ID: c.ID, Name: c.Name, Hex: c.Hex})
	}

	return domain.OrderLine{
		ProductID:   item.ProductID,
		ProductName: item.Name,
		Image:       item.Image,
		Grade: domain.GradeSnapshot{
			ID:    item.Grade.ID,
			Name:  item.Grade.Name,
			Price: gradePrice,
		},
		Colors:    colors,
		Quantity:  item.Quantity,
		UnitPrice: unitPrice,
		LineTotal: lineTotal,
	}, nil
}

func optDecimal(f *float64) (*decimal.Decimal, error) {
	if f == nil {
		return nil, nil
	}
	d, err := decimal.NewFromFloat64(*f)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type orderItemResponse struct {
	ProductID uint64          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Grade     gradeResponse   `json:"grade"`
	Colors    []colorRequest  `json:"colors,omitempty"`
	Quantity  uint32          `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type gradeResponse struct {
	ID    uint64          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type orderResponse struct {
	ID               uint64                 `json:"id"`
	OrderNumber      string                 `json:"orderNumber"`
	Items            []orderItemResponse    `json:"items"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	SgstAmount       decimal.Decimal        `json:"sgstAmount"`
	CgstAmount       decimal.Decimal        `json:"cgstAmount"`
	GstAmount        decimal.Decimal        `json:"gstAmount"`
	GrandTotal       decimal.Decimal        `json:"grandTotal"`
	ShippingAddress  shippingAddressRequest `json:"shippingAddress"`
	PaymentMethod    string                 `json:"paymentMethod"`
	PaymentStatus    string                 `json:"paymentStatus"`
	OrderStatus      string                 `json:"orderStatus"`
	GatewayOrderID   string                 `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string                 `json:"gatewayPaymentId,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		colors := make([]colorRequest, 0, len(line.Colors))
		for _, c := range line.Colors {
			colors = append(colors, colorRequest{ID: c.ID, Name: c.Name, Hex: c.Hex})
		}
		items = append(items, orderItemResponse{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Image:     line.Image,
			Grade: gradeResponse{
				ID:    line.Grade.ID,
				Name:  line.Grade.Name,
				Price: line.Grade.Price,
			},
			Colors:    colors,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}

	return orderResponse{
		ID:               o.ID,
		OrderNumber:      o.Number,
		Items:            items,
		Subtotal:         o.Subtotal,
		SgstAmount:       o.SGST,
		CgstAmount:       o.CGST,
		GstAmount:        o.GST,
		GrandTotal:       o.GrandTotal,
		ShippingAddress:  shippingAddressRequest{
			Name:       o.Shipping.Name,
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			State:      o.Shipping.State,
			PostalCode: o.Shipping.PostalCode,
			Country:    o.Shipping.Country,
			Phone:      o.Shipping.Phone,
		},
		PaymentMethod:    string(o.PaymentMethod),
		PaymentStatus:    string(o.PaymentStatus),
		OrderStatus:      string(o.Status),
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
