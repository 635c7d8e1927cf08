package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"feefocus/internal/entity"
)

// Rates holds the current exchange-rate table and the chosen display
// currency. The table is refreshed from the remote source at most once per
// calendar day; a failed refresh keeps the previous table so conversions are
// always defined.
type Rates struct {
	mu         sync.Mutex
	table      *entity.RateTable
	defCur     string
	refreshing bool

	store  CollectionStore
	source RateSource
	log    *slog.Logger
}

// NewRates seeds the service with the built-in default table dated at
// process start, so conversions work before any refresh ever succeeded.
func NewRates(store CollectionStore, source RateSource, log *slog.Logger) *Rates {
	return &Rates{
		table:  entity.DefaultRateTable(time.Now()),
		defCur: entity.BaseCurrency,
		store:  store,
		source: source,
		log:    log,
	}
}

// Restore replaces the defaults with the persisted settings, if any.
func (r *Rates) Restore(ctx context.Context) error {
	s, err := r.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("restore settings: %w", err)
	}
	if s == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Table != nil {
		r.table = s.Table.Clone()
	}
	if entity.IsSupportedCurrency(s.DefaultCurrency) {
		r.defCur = s.DefaultCurrency
	}
	return nil
}

// Current returns a copy of the table in use.
func (r *Rates) Current() *entity.RateTable {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Clone()
}

// NeedsRefresh reports whether the table's data is from a different calendar
// day than today. Equality is on the effective-date marker, not fetch time.
func (r *Rates) NeedsRefresh(today string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.LastUpdated != today
}

// Refresh fetches a new table unless today's data is already present; the
// at-most-once-per-day throttle makes a same-day call return the current
// table without any network traffic. A refresh already in flight is not
// doubled; the caller gets the current table.
//
// On fetch failure the previous table stays in use and the returned error
// wraps ErrRateFetch; the caller surfaces a stale-rates warning naming the
// table's LastUpdated date. Never fatal.
func (r *Rates) Refresh(ctx context.Context, today string) (*entity.RateTable, error) {
	r.mu.Lock()
	if r.table.LastUpdated == today || r.refreshing {
		t := r.table.Clone()
		r.mu.Unlock()
		return t, nil
	}
	r.refreshing = true
	prev := r.table.Clone()
	r.mu.Unlock()

	fetched, err := r.source.FetchTable(ctx)

	r.mu.Lock()
	r.refreshing = false
	if err != nil {
		r.mu.Unlock()
		return prev, fmt.Errorf("%w: %v", ErrRateFetch, err)
	}
	r.table = fetched.Clone()
	settings := &entity.Settings{Table: fetched.Clone(), DefaultCurrency: r.defCur}
	r.mu.Unlock()

	if err := r.store.SaveSettings(ctx, settings); err != nil {
		// the fresh table is already in use; losing the persisted copy only
		// costs one extra fetch after a restart
		r.log.Warn("persist settings failed", "error", err)
	}
	return fetched.Clone(), nil
}

// DefaultCurrency returns the currency totals are displayed in.
func (r *Rates) DefaultCurrency() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defCur
}

// SetDefaultCurrency changes and persists the display currency.
func (r *Rates) SetDefaultCurrency(ctx context.Context, code string) error {
	if !entity.IsSupportedCurrency(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	r.mu.Lock()
	r.defCur = code
	settings := &entity.Settings{Table: r.table.Clone(), DefaultCurrency: code}
	r.mu.Unlock()

	if err := r.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("set default currency: %w", err)
	}
	return nil
}
