package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound        = errors.New("Order not found")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidQuantity      = errors.New("item quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("payment method must be upi or cod")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidVerification  = errors.New("invalid verification state")
	ErrUnknownAction        = errors.New("unknown order action")
	ErrAmountMismatch       = errors.New("Order total changed, please review your cart")
	ErrInvalidAmount        = errors.New("amount must not be negative")
	ErrDuplicateOrderID     = errors.New("order id already exists")
	ErrOrderIDExhausted     = errors.New("could not allocate a unique order id")
	ErrConcurrentUpdate     = errors.New("order was modified concurrently, refresh and retry")
	ErrNotTerminal          = errors.New("only delivered or cancelled orders can be deleted")
	ErrPaidDowngrade        = errors.New("a delivered order cannot be marked unpaid")
	ErrInvalidUTR           = errors.New("UTR must be 12 to 22 letters or digits")
	ErrUTRNotApplicable     = errors.New("UTR can only be submitted for unpaid UPI orders")
	ErrOrderClosed          = errors.New("order is already closed")
)

// StockError reports an item whose stock cannot cover the requested quantity.
type StockError struct {
	Title     string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Sorry, %s is out of stock. Only %d left.", e.Title, e.Available)
}

// ProductMissingError reports an order line whose product no longer exists.
type ProductMissingError struct {
	Title string
}

func (e *ProductMissingError) Error() string {
	return "Product not found: " + e.Title
}

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ValidationError carries field-scoped checkout errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
