package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"daztao-be/internal/pricing"
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	HouseNo   string `json:"houseNo"`
	Area      string `json:"area"`
	Landmark  string `json:"landmark"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Customer) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Customer) Scan(src any) error {
	return scanJSON(src, c)
}

// Item is the line snapshot copied into the order at creation time.
type Item struct {
	ProductID string   `json:"productId"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	Price     int64    `json:"price"`
	Links     []string `json:"links"`
	Image     string   `json:"image"`
}

type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src any) error {
	return scanJSON(src, it)
}

func (it Items) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(it))
	for i, item := range it {
		lines[i] = pricing.Line{Price: item.Price, Quantity: item.Quantity}
	}
	return lines
}

type Order struct {
	ID              string                `json:"id"`
	OrderID         string                `json:"orderId"`
	Customer        Customer              `json:"customer"`
	Items           Items                 `json:"items"`
	Subtotal        int64                 `json:"subtotal"`
	Discount        int64                 `json:"discountApplied"`
	Fee             int64                 `json:"codFee"`
	Amount          int64                 `json:"amount"`
	PaymentMethod   pricing.PaymentMethod `json:"paymentMethod"`
	IsPaid          bool                  `json:"isPaid"`
	Verification    Verification          `json:"verification"`
	UTR             string                `json:"utr,omitempty"`
	PaymentID       string                `json:"paymentId,omitempty"`
	RazorpayOrderID string                `json:"razorpayOrderId,omitempty"`
	Status          Status                `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// CreateRequest is the checkout payload for POST /orders.
type CreateRequest struct {
	Customer        Customer              `json:"customer"`
	Items           []Item                `json:"items"`
	Amount          int64                 `json:"amount"`
	DiscountApplied int64                 `json:"discountApplied"`
	PaymentMethod   pricing.PaymentMethod `json:"paymentMethod"`
}

type CreateResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// Patch is the partial update accepted by PUT /orders/{id}. Nil fields are left alone.
type Patch struct {
	Status       *string   `json:"status,omitempty"`
	IsPaid       *bool     `json:"isPaid,omitempty"`
	UTR          *string   `json:"utr,omitempty"`
	Verification *string   `json:"verification,omitempty"`
	PaymentID    *string   `json:"paymentId,omitempty"`
	Amount       *int64    `json:"amount,omitempty"`
	Customer     *Customer `json:"customer,omitempty"`
}

// Normalize moves the legacy "Verification Pending" status token into the
// verification field, where it belongs.
func (p *Patch) Normalize() {
	if p.Status != nil && Verification(*p.Status) == VerificationPending {
		if p.Verification == nil {
			v := string(VerificationPending)
			p.Verification = &v
		}
		p.Status = nil
	}
}

// CustomerSafe reports whether the patch only carries what a shopper may send:
// a UTR, optionally with the verification-pending marker.
func (p Patch) CustomerSafe() bool {
	if p.UTR == nil {
		return false
	}
	if p.Verification != nil && Verification(*p.Verification) != VerificationPending {
		return false
	}
	return p.Status == nil && p.IsPaid == nil && p.PaymentID == nil && p.Amount == nil && p.Customer == nil
}

func (p Patch) Empty() bool {
	return p.Status == nil && p.IsPaid == nil && p.UTR == nil && p.Verification == nil &&
		p.PaymentID == nil && p.Amount == nil && p.Customer == nil
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
