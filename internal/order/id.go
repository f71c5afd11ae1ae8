package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	orderIDPrefix = "DAZ-"
	orderIDMin    = 10000
	orderIDSpan   = 90000
)

// GenerateOrderID returns DAZ- followed by five random digits. Uniqueness
// comes from the orders_order_id_key constraint and the retry in Create.
func GenerateOrderID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(orderIDSpan))
	if err != nil {
		return "", fmt.Errorf("generate order id: %w", err)
	}
	return fmt.Sprintf("%s%d", orderIDPrefix, orderIDMin+n.Int64()), nil
}

// IsOrderID reports whether ref looks like a human-readable order id.
func IsOrderID(ref string) bool {
	return strings.HasPrefix(strings.ToUpper(ref), orderIDPrefix)
}
