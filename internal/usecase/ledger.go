package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"feefocus/internal/billing"
	"feefocus/internal/entity"
)

const (
	minNameLen = 3
	// a new subscription without an explicit date is assumed to charge in 30 days
	defaultNextPaymentDays = 30
)

// Ledger is the authoritative collection of subscriptions. Mutations are
// applied to a copy, persisted as a whole document, and only then committed
// to memory, so the stored collection never diverges from a half-applied
// mutation.
type Ledger struct {
	mu    sync.RWMutex
	subs  []entity.Subscription
	store CollectionStore
}

// NewLedger creates an empty ledger backed by the given store.
func NewLedger(store CollectionStore) *Ledger {
	return &Ledger{store: store}
}

// Restore replaces the in-memory collection with the persisted one.
func (l *Ledger) Restore(ctx context.Context) error {
	subs, err := l.store.LoadSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	l.mu.Lock()
	l.subs = subs
	l.mu.Unlock()
	return nil
}

// Add validates and appends a new subscription, generating an ID and filling
// the category and next payment date defaults when absent.
func (l *Ledger) Add(ctx context.Context, sub entity.Subscription) (entity.Subscription, error) {
	if err := validateAndNormalize(&sub); err != nil {
		return entity.Subscription{}, err
	}
	if sub.ID == "" {
		sub.ID = strfmt.UUID(uuid.NewString())
	}
	if sub.NextPaymentDate.IsZero() {
		sub.NextPaymentDate = billing.Midnight(time.Now()).AddDate(0, 0, defaultNextPaymentDays)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	next := append(l.snapshotLocked(), sub)
	if err := l.store.SaveSubscriptions(ctx, next); err != nil {
		return entity.Subscription{}, fmt.Errorf("add subscription: %w", err)
	}
	l.subs = next
	return sub, nil
}

// Update merges the patch into the record with the given id. An unknown id
// is a silent no-op: the returned bool reports whether anything was updated.
func (l *Ledger) Update(ctx context.Context, id strfmt.UUID, patch SubscriptionPatch) (entity.Subscription, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOfLocked(id)
	if idx < 0 {
		return entity.Subscription{}, false, nil
	}

	merged := l.subs[idx]
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Currency != nil {
		merged.Currency = *patch.Currency
	}
	if patch.BillingCycle != nil {
		merged.BillingCycle = *patch.BillingCycle
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.NextPaymentDate != nil {
		merged.NextPaymentDate = *patch.NextPaymentDate
	}
	if err := validateAndNormalize(&merged); err != nil {
		return entity.Subscription{}, false, err
	}

	next := l.snapshotLocked()
	next[idx] = merged
	if err := l.store.SaveSubscriptions(ctx, next); err != nil {
		return entity.Subscription{}, false, fmt.Errorf("update subscription: %w", err)
	}
	l.subs = next
	return merged, true, nil
}

// Remove deletes the record with the given id. An unknown id is a silent
// no-op; the returned bool reports whether anything was removed.
func (l *Ledger) Remove(ctx context.Context, id strfmt.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOfLocked(id)
	if idx < 0 {
		return false, nil
	}
	next := make([]entity.Subscription, 0, len(l.subs)-1)
	next = append(next, l.subs[:idx]...)
	next = append(next, l.subs[idx+1:]...)
	if err := l.store.SaveSubscriptions(ctx, next); err != nil {
		return false, fmt.Errorf("remove subscription: %w", err)
	}
	l.subs = next
	return true, nil
}

// Get returns the record with the given id, if present.
func (l *Ledger) Get(id strfmt.UUID) (entity.Subscription, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.indexOfLocked(id)
	if idx < 0 {
		return entity.Subscription{}, false
	}
	return l.subs[idx], true
}

// List returns a sorted snapshot of the collection. An empty key keeps
// insertion order.
func (l *Ledger) List(key SortKey, reverse bool) ([]entity.Subscription, error) {
	l.mu.RLock()
	out := l.snapshotLocked()
	l.mu.RUnlock()

	var less func(a, b entity.Subscription) bool
	switch key {
	case SortNone:
		less = nil
	case SortByName:
		less = func(a, b entity.Subscription) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByDate:
		less = func(a, b entity.Subscription) bool {
			return a.NextPaymentDate.Before(b.NextPaymentDate)
		}
	case SortByPrice:
		less = func(a, b entity.Subscription) bool { return a.Price < b.Price }
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}

	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// TotalAt sums the equivalents of all records at the given granularity.
// When target is non-empty every record is converted into it first; mixed
// currencies must not be summed raw, so callers aggregating a multi-currency
// ledger are expected to pass a target.
func (l *Ledger) TotalAt(g Granularity, target string, table *entity.RateTable) (float64, error) {
	if target != "" && !entity.IsSupportedCurrency(target) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, target)
	}

	var equivalent func(price float64, cycle entity.BillingCycle) float64
	switch g {
	case GranularityMonthly:
		equivalent = billing.MonthlyEquivalent
	case GranularityYearly:
		equivalent = billing.YearlyEquivalent
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, s := range l.subs {
		amount := equivalent(s.Price, s.BillingCycle)
		if target != "" {
			amount = billing.Convert(amount, s.Currency, target, table)
		}
		total += amount
	}
	return total, nil
}

// GroupByCategory sums the native per-period price of each category. When
// target is non-empty each price is converted into it first; with an empty
// target prices are summed as-is, which is only meaningful for a
// same-currency ledger.
func (l *Ledger) GroupByCategory(target string, table *entity.RateTable) (map[string]float64, error) {
	if target != "" && !entity.IsSupportedCurrency(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, target)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]float64)
	for _, s := range l.subs {
		amount := s.Price
		if target != "" {
			amount = billing.Convert(amount, s.Currency, target, table)
		}
		out[s.Category] += amount
	}
	return out, nil
}

// CountActive counts records whose next payment is strictly after ref.
func (l *Ledger) CountActive(ref time.Time) int {
	ref = billing.Midnight(ref)
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, s := range l.subs {
		if billing.Midnight(s.NextPaymentDate).After(ref) {
			n++
		}
	}
	return n
}

// CountExpired counts records whose next payment is on or before ref.
func (l *Ledger) CountExpired(ref time.Time) int {
	l.mu.RLock()
	total := len(l.subs)
	l.mu.RUnlock()
	return total - l.CountActive(ref)
}

// RollForwardExpired advances every lapsed next payment date to its next
// occurrence on or after ref, covering however many periods elapsed while
// the app was unused. Dates are only ever moved forward. Calling it twice
// with the same ref changes nothing the second time; nothing is persisted
// when no record moved. Returns the number of records rolled.
func (l *Ledger) RollForwardExpired(ctx context.Context, ref time.Time) (int, error) {
	ref = billing.Midnight(ref)

	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.snapshotLocked()
	rolled := 0
	for i, s := range next {
		due := billing.Midnight(s.NextPaymentDate)
		if due.After(ref) {
			continue
		}
		advanced := billing.RollForwardToFuture(due, s.BillingCycle, ref)
		if advanced.Equal(due) {
			continue
		}
		next[i].NextPaymentDate = advanced
		rolled++
	}
	if rolled == 0 {
		return 0, nil
	}
	if err := l.store.SaveSubscriptions(ctx, next); err != nil {
		return 0, fmt.Errorf("roll forward expired: %w", err)
	}
	l.subs = next
	return rolled, nil
}

// UpcomingInMonth groups the subscriptions charging in the given month by
// day of month, for the payment calendar.
func (l *Ledger) UpcomingInMonth(year int, month time.Month) map[int][]entity.Subscription {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[int][]entity.Subscription)
	for _, s := range l.subs {
		d := billing.Midnight(s.NextPaymentDate)
		if d.Year() == year && d.Month() == month {
			out[d.Day()] = append(out[d.Day()], s)
		}
	}
	return out
}

// Clear removes every record. Irreversible; the caller must have confirmed.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	empty := []entity.Subscription{}
	if err := l.store.SaveSubscriptions(ctx, empty); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	l.subs = empty
	return nil
}

// snapshotLocked copies the collection; callers hold at least a read lock.
func (l *Ledger) snapshotLocked() []entity.Subscription {
	out := make([]entity.Subscription, len(l.subs))
	copy(out, l.subs)
	return out
}

func (l *Ledger) indexOfLocked(id strfmt.UUID) int {
	for i, s := range l.subs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// validateAndNormalize enforces the record invariants and aligns the payment
// date to UTC midnight.
func validateAndNormalize(sub *entity.Subscription) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if len(sub.Name) < minNameLen {
		return fmt.Errorf("%w: name shorter than %d characters", ErrInvalidSubscription, minNameLen)
	}
	if sub.Price <= 0 {
		return fmt.Errorf("%w: price must be > 0", ErrInvalidSubscription)
	}
	sub.Currency = strings.ToUpper(strings.TrimSpace(sub.Currency))
	if !entity.IsSupportedCurrency(sub.Currency) {
		return fmt.Errorf("%w: currency %q not supported", ErrInvalidSubscription, sub.Currency)
	}
	if sub.BillingCycle == "" {
		return fmt.Errorf("%w: missing billing cycle", ErrInvalidSubscription)
	}
	cycle, err := entity.ParseBillingCycle(string(sub.BillingCycle))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	sub.BillingCycle = cycle
	if strings.TrimSpace(sub.Category) == "" {
		sub.Category = entity.DefaultCategory
	}
	if !sub.NextPaymentDate.IsZero() {
		sub.NextPaymentDate = billing.Midnight(sub.NextPaymentDate)
	}
	return nil
}
