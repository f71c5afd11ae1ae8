package payment

import (
	"context"
	"net/http"
)

const (
	ProviderRazorpay = "razorpay"
	CurrencyINR      = "INR"
)

// Gateway is the online payment provider.
type Gateway interface {
	// CreateOrder opens a gateway order for amount rupees.
	CreateOrder(ctx context.Context, amount int64, receipt string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
	// VerifyPaymentSignature checks the signature the checkout widget returns
	// after a successful payment.
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error
	// VerifySignature checks a webhook request. The body stays readable.
	VerifySignature(r *http.Request) error
	KeyID() string
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type PaymentDetails struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Method  string `json:"method"`
}

func toPaise(rupees int64) int64 {
	return rupees * 100
}
