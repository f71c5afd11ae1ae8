package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateReceipt returns a gateway receipt reference such as
// receipt_20240131-104500-4821. Razorpay caps receipts at 40 characters.
func GenerateReceipt() string {
	now := time.Now().UTC()

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("receipt_%s-%04d", now.Format("20060102-150405"), n.Int64())
}
