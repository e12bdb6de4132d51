package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodGateway PaymentMethod = "gateway"
)

const DefaultCountry = "India"

// GradeSnapshot is the selected product grade captured at purchase time.
type GradeSnapshot struct {
	ID    uint64
	Name  string
	Price decimal.Decimal
}

// ColorSnapshot is a selected color captured at purchase time.
type ColorSnapshot struct {
	ID   uint64
	Name string
	Hex  string
}

// OrderLine is one purchased position. Product fields are snapshots:
// later catalog edits never change a persisted order.
type OrderLine struct {
	ProductID   uint64
	ProductName string
	Image       string
	Grade       GradeSnapshot
	Colors      []ColorSnapshot
	Quantity    uint32
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

type ShippingAddress struct {
	Name       string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

type Order struct {
	ID         uint64
	Number     string
	UserID     uint64
	Lines      []OrderLine
	Subtotal   decimal.Decimal
	SGST       decimal.Decimal
	CGST       decimal.Decimal
	GST        decimal.Decimal
	GrandTotal decimal.Decimal
	Shipping   ShippingAddress

	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	Status  OrderStatus
	Notes   string
	Version uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderDraft is the checkout input before number assignment and pricing.
// Nil tax fields mean "apply the default rate".
type OrderDraft struct {
	Lines    []OrderLine
	Shipping ShippingAddress
	Subtotal decimal.Decimal
	SGST     *decimal.Decimal
	CGST     *decimal.Decimal
	GST      *decimal.Decimal

	PaymentMethod    PaymentMethod
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	Notes string
}

// StockDelta is a signed adjustment to one product's stock counter.
type StockDelta struct {
	ProductID uint64
	Delta     int64
}

// GatewayOrder is the payment gateway's handle for a pending payment.
type GatewayOrder struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	KeyID    string
}

type OrderFilter struct {
	Status *OrderStatus
	Page   uint64
	Limit  uint64
}

type OrderPage struct {
	Orders []*Order
	Page   uint64
	Limit  uint64
	Total  uint64
	Pages  uint64
}
