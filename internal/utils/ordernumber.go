package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderNumber returns IRO-YYYYMMDD-HHMMSS-mmm-NNNN for now in UTC,
// with a 4-digit random suffix.
func GenerateOrderNumber(now time.Time) string {
	now = now.UTC()
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("IRO-%s-%03d-%04d", now.Format("20060102-150405"), millis, n.Int64())
}

// GatewayReceipt is the receipt id sent with gateway orders.
func GatewayReceipt(now time.Time) string {
	return fmt.Sprintf("iro_%d", now.UnixMilli())
}
