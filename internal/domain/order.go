package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderConfirmed         OrderStatus = "confirmed"
	OrderProcessing        OrderStatus = "processing"
	OrderReadyForShipment  OrderStatus = "ready_for_shipment"
	OrderShipped           OrderStatus = "shipped"
	OrderOutForDelivery    OrderStatus = "out_for_delivery"
	OrderDelivered         OrderStatus = "delivered"
	OrderCancelled         OrderStatus = "cancelled"
	OrderRefunded          OrderStatus = "refunded"
	OrderPartiallyRefunded OrderStatus = "partially_refunded"
)

// Terminal reports whether the backend will not move the order any further.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderDelivered, OrderCancelled, OrderRefunded, OrderPartiallyRefunded:
		return true
	}
	return false
}

type CheckoutItem struct {
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// CheckoutQuote is what /api/checkout/calculate answers. Local marks a
// quote computed client-side after the backend could not be reached.
type CheckoutQuote struct {
	Totals
	Items []CheckoutItem `json:"items"`
	Local bool           `json:"-"`
}

type ShippingDetails struct {
	Address  string `json:"shippingAddress"`
	City     string `json:"city,omitempty"`
	PostCode string `json:"postCode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type CheckoutRequest struct {
	Items               []CheckoutItem
	Shipping            ShippingDetails
	PaymentMethod       PaymentMethod
	OnlinePaymentOption string
}

type GuestOrder struct {
	Name                string
	Email               string
	Phone               string
	Shipping            ShippingDetails
	PaymentMethod       PaymentMethod
	OnlinePaymentOption string

	// Proof is uploaded after the order is created, online payments only.
	Proof         []byte
	ProofFilename string
}

type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID            string          `json:"id"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderItem     `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Taxes         decimal.Decimal `json:"taxes"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}
