// Package pricing derives the payable amount for a set of cart lines.
package pricing

// PaymentMethod is the checkout payment path.
type PaymentMethod string

const (
	MethodUPI PaymentMethod = "upi"
	MethodCOD PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodUPI || m == MethodCOD
}

const (
	// BundleDiscount is taken off once per order when it holds BundleThreshold units or more.
	BundleDiscount  int64 = 100
	BundleThreshold       = 2

	// CODFee is added to cash-on-delivery orders.
	CODFee int64 = 100
)

// Line is one priced cart line.
type Line struct {
	Price    int64
	Quantity int
}

type Quote struct {
	Subtotal  int64 `json:"subtotal"`
	ItemCount int   `json:"itemCount"`
	Discount  int64 `json:"discount"`
	Fee       int64 `json:"fee"`
	Total     int64 `json:"total"`
}

// Subtotal is Σ price×quantity.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

// Count is Σ quantity.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// BundleDiscountFor is a step function of the unit count, never proportional.
func BundleDiscountFor(itemCount int) int64 {
	if itemCount >= BundleThreshold {
		return BundleDiscount
	}
	return 0
}

func FeeFor(method PaymentMethod) int64 {
	if method == MethodCOD {
		return CODFee
	}
	return 0
}

// Calculate returns subtotal − bundle discount + COD fee for lines.
func Calculate(lines []Line, method PaymentMethod) Quote {
	q := Quote{
		Subtotal:  Subtotal(lines),
		ItemCount: Count(lines),
		Fee:       FeeFor(method),
	}
	q.Discount = BundleDiscountFor(q.ItemCount)
	q.Total = q.Subtotal - q.Discount + q.Fee
	return q
}
