// Package billing converts subscription prices and payment dates between a
// billing period and calendar time.
package billing

import (
	"time"

	"feefocus/internal/entity"
)

// MonthlyEquivalent normalizes a per-period price to a per-month amount.
// A week counts as exactly 4 per month, an intentional simplification;
// callers must not assume calendar precision.
func MonthlyEquivalent(price float64, cycle entity.BillingCycle) float64 {
	switch cycle {
	case entity.CycleWeekly:
		return price * 4
	case entity.CycleYearly:
		return price / 12
	default:
		return price
	}
}

// YearlyEquivalent normalizes a per-period price to a per-year amount.
func YearlyEquivalent(price float64, cycle entity.BillingCycle) float64 {
	switch cycle {
	case entity.CycleWeekly:
		return price * 52
	case entity.CycleMonthly:
		return price * 12
	default:
		return price
	}
}

// DailyEquivalent normalizes a per-period price to a per-day amount.
func DailyEquivalent(price float64, cycle entity.BillingCycle) float64 {
	switch cycle {
	case entity.CycleWeekly:
		return price / 7
	case entity.CycleMonthly:
		return price / 30
	default:
		return price / 365
	}
}

// Midnight truncates t to its calendar date at UTC midnight. All date
// comparisons in the tracker are date-only.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AdvanceOnePeriod moves a payment date forward by exactly one cycle.
// Monthly advances keep the day of month, clamped to the last day of
// shorter months (Jan 31 -> Feb 28).
func AdvanceOnePeriod(date time.Time, cycle entity.BillingCycle) time.Time {
	switch cycle {
	case entity.CycleWeekly:
		return date.AddDate(0, 0, 7)
	case entity.CycleYearly:
		return date.AddDate(1, 0, 0)
	default:
		return addMonthClamped(date)
	}
}

// RollForwardToFuture advances date one cycle at a time until it is no
// longer strictly before ref. A subscription may have lapsed several periods
// while the app was unused, so a single advance is not enough. The result is
// always >= ref (date-only) and a whole number of cycles ahead of date.
func RollForwardToFuture(date time.Time, cycle entity.BillingCycle, ref time.Time) time.Time {
	d := Midnight(date)
	ref = Midnight(ref)
	for d.Before(ref) {
		d = AdvanceOnePeriod(d, cycle)
	}
	return d
}

func addMonthClamped(date time.Time) time.Time {
	y, m, d := date.Date()
	// time.Date normalizes month 13 etc.; day 0 of month+2 is the last day
	// of month+1.
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, date.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m+1, d, 0, 0, 0, 0, date.Location())
}
