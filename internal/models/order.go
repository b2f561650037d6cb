package models

import "time"

// OrderStatus is the lifecycle state of an order as reported by the
// commerce backend. Orders are immutable here once paid.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order is an order record as returned by the commerce backend.
type Order struct {
	OrderID       string      `json:"order_id"`
	Amount        int64       `json:"amount"`
	OrderName     string      `json:"order_name"`
	CustomerName  string      `json:"customer_name"`
	Items         []CartItem  `json:"items"`
	Status        OrderStatus `json:"status"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	ApprovedAt    *time.Time  `json:"approved_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// CreateOrderRequest is the body for POST /api/payment/orders on the
// commerce backend. CartItemIDs name the server-side cart rows the order
// consumes; the backend removes them once payment is confirmed.
type CreateOrderRequest struct {
	Amount       int64      `json:"amount"`
	OrderName    string     `json:"order_name"`
	CustomerName string     `json:"customer_name"`
	Items        []CartItem `json:"items"`
	CartItemIDs  []string   `json:"cart_item_ids"`
}

// PaymentRecord is a confirmed payment as returned by the provider's
// confirm call.
type PaymentRecord struct {
	PaymentKey string    `json:"payment_key"`
	OrderID    string    `json:"order_id"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	ApprovedAt time.Time `json:"approved_at"`
}

// PaymentHandoff carries everything the payment widget needs to take over
// the flow: the created order plus the redirect URLs the provider resumes
// at.
type PaymentHandoff struct {
	OrderID      string `json:"order_id"`
	Amount       int64  `json:"amount"`
	OrderName    string `json:"order_name"`
	CustomerName string `json:"customer_name"`
	Method       string `json:"method"`
	SuccessURL   string `json:"success_url"`
	FailURL      string `json:"fail_url"`
}
