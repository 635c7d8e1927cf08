package usecase

import (
	"context"
	"errors"
	"time"

	"feefocus/internal/entity"
)

//go:generate go run github.com/golang/mock/mockgen@v1.6.0 -destination=usecase_mock.go -package=usecase feefocus/internal/usecase CollectionStore,RateSource

var (
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidSortKey      = errors.New("invalid sort key")
	ErrInvalidGranularity  = errors.New("invalid granularity")
	ErrRateFetch           = errors.New("rate fetch failed")
)

// Granularity - time basis totals are normalized to
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// SortKey - ordering of the subscription list
type SortKey string

const (
	// SortNone - insertion order
	SortNone SortKey = ""
	// SortByName - alphabetical by service name
	SortByName SortKey = "name"
	// SortByDate - by next payment date, soonest first
	SortByDate SortKey = "date"
	// SortByPrice - by native price, cheapest first
	SortByPrice SortKey = "price"
)

// SubscriptionPatch - partial update merged into an existing record.
// Nil fields are left untouched.
type SubscriptionPatch struct {
	Name            *string
	Price           *float64
	Currency        *string
	BillingCycle    *entity.BillingCycle
	Category        *string
	NextPaymentDate *time.Time
}

// CollectionStore - durable whole-document persistence for the ledger and
// the settings. Each save replaces the stored document atomically; a crash
// mid-write must never leave a partially patched collection.
type CollectionStore interface {
	// LoadSubscriptions - read the whole persisted collection
	LoadSubscriptions(ctx context.Context) ([]entity.Subscription, error)
	// SaveSubscriptions - replace the whole persisted collection
	SaveSubscriptions(ctx context.Context, subs []entity.Subscription) error
	// LoadSettings - read the persisted rate table and display currency, nil when never saved
	LoadSettings(ctx context.Context) (*entity.Settings, error)
	// SaveSettings - replace the persisted rate table and display currency
	SaveSettings(ctx context.Context, s *entity.Settings) error
}

// RateSource - remote provider of an exchange-rate table
type RateSource interface {
	// FetchTable - fetch the current table; any malformed or incomplete
	// response is an error
	FetchTable(ctx context.Context) (*entity.RateTable, error)
}
