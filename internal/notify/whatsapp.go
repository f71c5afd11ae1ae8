package notify

import (
	"fmt"
	"net/url"
	"strings"

	"daztao-be/internal/pricing"
	"daztao-be/internal/utils"
)

const waBaseURL = "https://wa.me/"

// Confirmation is the data shown in the WhatsApp handoff after checkout.
type Confirmation struct {
	OrderID string
	Method  pricing.PaymentMethod
	Amount  int64
	Name    string
	Phone   string
}

func paymentLabel(m pricing.PaymentMethod) string {
	if m == pricing.MethodCOD {
		return "COD"
	}
	return "Prepaid (UPI)"
}

func ConfirmationMessage(c Confirmation) string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Customer"
	}

	var b strings.Builder
	b.WriteString("*DAZTAO ORDER CONFIRMATION*\n\n")
	fmt.Fprintf(&b, "Order ID: #%s\n", c.OrderID)
	fmt.Fprintf(&b, "Payment: %s\n", paymentLabel(c.Method))
	fmt.Fprintf(&b, "Amount: %s\n\n", utils.FormatINR(c.Amount))
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Phone: %s\n\n", c.Phone)
	b.WriteString("Please confirm this order.")
	return b.String()
}

// WhatsAppLink builds a wa.me deep link. Spaces are encoded as %20, which
// WhatsApp renders reliably, instead of the query-style "+".
func WhatsAppLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return waBaseURL + digits + "?text=" + text
}
