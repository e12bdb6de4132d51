package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-readable order number: a date prefix for
// operators plus a random disambiguator for uniqueness. Numbers are not
// monotonic; the orders table carries a unique index as the backstop.
func NewOrderNumber(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("ORD-%s-%X", now.Format("20060102"), u[:5])
}
