// Package postgres persists the tracker's state as whole JSON documents in a
// single key-value table. Every save replaces the full document in one
// statement, so a crash mid-write can never leave a partially patched
// collection behind.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feefocus/internal/entity"
)

// Fixed document keys, carried over from the app's original storage names.
const (
	subscriptionsKey = "subscription-storage"
	settingsKey      = "settings-storage"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type subscriptionRecord struct {
	ID              strfmt.UUID `json:"id"`
	Name            string      `json:"name"`
	Price           float64     `json:"price"`
	Currency        string      `json:"currency"`
	BillingCycle    string      `json:"billingCycle"`
	Category        string      `json:"category"`
	NextPaymentDate strfmt.Date `json:"nextPaymentDate"`
}

type subscriptionsDoc struct {
	Subscriptions []subscriptionRecord `json:"subscriptions"`
}

type rateTableDoc struct {
	Rates       map[string]float64 `json:"rates"`
	LastUpdated string             `json:"lastUpdated"`
}

type settingsDoc struct {
	RateTable       *rateTableDoc `json:"rateTable,omitempty"`
	DefaultCurrency string        `json:"defaultCurrency"`
}

// LoadSubscriptions reads the whole persisted collection. A collection that
// was never saved comes back empty. A record carrying a billing cycle
// outside the supported set (an earlier schema allowed more variants) fails
// the load explicitly rather than slipping into the arithmetic.
func (s *Store) LoadSubscriptions(ctx context.Context) ([]entity.Subscription, error) {
	raw, err := s.load(ctx, subscriptionsKey)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	if raw == nil {
		return []entity.Subscription{}, nil
	}

	var doc subscriptionsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("load subscriptions: decode document: %w", err)
	}

	out := make([]entity.Subscription, 0, len(doc.Subscriptions))
	for _, rec := range doc.Subscriptions {
		cycle, err := entity.ParseBillingCycle(rec.BillingCycle)
		if err != nil {
			return nil, fmt.Errorf("load subscriptions: record %q: %w", rec.Name, err)
		}
		out = append(out, entity.Subscription{
			ID:              rec.ID,
			Name:            rec.Name,
			Price:           rec.Price,
			Currency:        rec.Currency,
			BillingCycle:    cycle,
			Category:        rec.Category,
			NextPaymentDate: time.Time(rec.NextPaymentDate).UTC(),
		})
	}
	return out, nil
}

// SaveSubscriptions replaces the whole persisted collection atomically.
func (s *Store) SaveSubscriptions(ctx context.Context, subs []entity.Subscription) error {
	doc := subscriptionsDoc{Subscriptions: make([]subscriptionRecord, 0, len(subs))}
	for _, sub := range subs {
		doc.Subscriptions = append(doc.Subscriptions, subscriptionRecord{
			ID:              sub.ID,
			Name:            sub.Name,
			Price:           sub.Price,
			Currency:        sub.Currency,
			BillingCycle:    string(sub.BillingCycle),
			Category:        sub.Category,
			NextPaymentDate: strfmt.Date(sub.NextPaymentDate),
		})
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save subscriptions: encode document: %w", err)
	}
	if err := s.save(ctx, subscriptionsKey, raw); err != nil {
		return fmt.Errorf("save subscriptions: %w", err)
	}
	return nil
}

// LoadSettings reads the persisted rate table and display currency, or nil
// when nothing was ever saved.
func (s *Store) LoadSettings(ctx context.Context) (*entity.Settings, error) {
	raw, err := s.load(ctx, settingsKey)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var doc settingsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("load settings: decode document: %w", err)
	}
	out := &entity.Settings{DefaultCurrency: doc.DefaultCurrency}
	if doc.RateTable != nil {
		out.Table = &entity.RateTable{
			Rates:       doc.RateTable.Rates,
			LastUpdated: doc.RateTable.LastUpdated,
		}
	}
	return out, nil
}

// SaveSettings replaces the persisted rate table and display currency.
func (s *Store) SaveSettings(ctx context.Context, settings *entity.Settings) error {
	if settings == nil {
		return errors.New("save settings: nil settings")
	}
	doc := settingsDoc{DefaultCurrency: settings.DefaultCurrency}
	if settings.Table != nil {
		doc.RateTable = &rateTableDoc{
			Rates:       settings.Table.Rates,
			LastUpdated: settings.Table.LastUpdated,
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save settings: encode document: %w", err)
	}
	if err := s.save(ctx, settingsKey, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", key, err)
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, key string, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (key, doc)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = now()`, key, doc)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}
