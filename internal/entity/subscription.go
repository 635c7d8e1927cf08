package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// BillingCycle - recurrence period of a subscription charge
type BillingCycle string

const (
	CycleWeekly  BillingCycle = "weekly"
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// DefaultCategory is assigned when a subscription is created without one.
const DefaultCategory = "Other"

var ErrUnsupportedCycle = errors.New("unsupported billing cycle")

// legacy spellings from an earlier schema, recognized only to be rejected
var legacyCycles = map[BillingCycle]struct{}{
	"daily":     {},
	"quarterly": {},
}

// ParseBillingCycle maps a raw string onto the closed cycle set. Legacy
// variants (daily, quarterly) are rejected with an explicit error instead of
// being let through to the billing arithmetic.
func ParseBillingCycle(s string) (BillingCycle, error) {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CycleWeekly, CycleMonthly, CycleYearly:
		return c, nil
	}
	if _, ok := legacyCycles[c]; ok {
		return "", fmt.Errorf("%w: %q is no longer supported", ErrUnsupportedCycle, c)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCycle, c)
}

// Subscription - a recurring payment tracked by the ledger
type Subscription struct {
	// ID - identifier in UUID format, immutable once created
	ID strfmt.UUID
	// Name - display name of the service
	Name string
	// Price - cost of one billing period, in Currency units
	Price float64
	// Currency - 3-letter code from the supported set
	Currency string
	// BillingCycle - recurrence period of the charge
	BillingCycle BillingCycle
	// Category - free-form label, "Other" when not chosen
	Category string
	// NextPaymentDate - date of the next charge (UTC midnight, date-only)
	NextPaymentDate time.Time
}
