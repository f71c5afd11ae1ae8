package payment

import "time"

type Status string

const (
	StatusCreated  Status = "created"
	StatusCaptured Status = "captured"
	StatusFailed   Status = "failed"
)

// Payment is one gateway order opened for a storefront order.
type Payment struct {
	ID             int64
	OrderID        string
	GatewayOrderID string
	PaymentID      string
	Amount         int64
	Currency       string
	Receipt        string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Checkout is what the storefront needs to open the payment widget.
type Checkout struct {
	KeyID          string `json:"keyId"`
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"razorpayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
}

// VerifyRequest is the payload the checkout widget hands back on success.
type VerifyRequest struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}
