package admin

import (
	"strings"

	"daztao-be/internal/order"
)

// Tab is a board filter.
type Tab string

const (
	TabAll        Tab = "All"
	TabPending    Tab = "Pending"
	TabProcessing Tab = "Processing"
	TabShipped    Tab = "Shipped"
	TabDelivered  Tab = "Delivered"
	TabCancelled  Tab = "Cancelled"
)

// Filter returns the orders in tab whose id, first name or phone matches search.
func Filter(orders []order.Order, tab Tab, search string) []order.Order {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if tab != TabAll && tab != "" && string(o.Status) != string(tab) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.OrderID), needle) &&
			!strings.Contains(strings.ToLower(o.Customer.FirstName), needle) &&
			!strings.Contains(o.Customer.Phone, needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}
