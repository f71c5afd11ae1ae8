package payment

import "errors"

var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMissingSecret       = errors.New("payment gateway secret is not configured")
	ErrNotOnlinePayment    = errors.New("order is not payable online")
	ErrAlreadyPaid         = errors.New("order is already paid")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrOrderMismatch       = errors.New("payment does not belong to this order")
	ErrPaymentNotCaptured  = errors.New("payment has not been captured yet")
	ErrInvalidVerifyParams = errors.New("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
)
