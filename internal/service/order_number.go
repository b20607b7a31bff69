package service

import (
	"crypto/rand"
	"fmt"
)

const (
	orderNumberPrefix   = "ORD-"
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberLength   = 8
)

// GenerateOrderNumber produces a human-readable order number of the form
// "ORD-" followed by 8 random uppercase alphanumeric characters (a 36^8
// space). It does not check uniqueness; the orders table's unique constraint
// rejects collisions and the coordinator retries with a fresh number.
func GenerateOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}

	return orderNumberPrefix + string(buf), nil
}
