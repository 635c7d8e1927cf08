package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feefocus/internal/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestLedger(t *testing.T, ctrl *gomock.Controller, subs ...entity.Subscription) (*Ledger, *MockCollectionStore) {
	t.Helper()
	store := NewMockCollectionStore(ctrl)
	l := NewLedger(store)
	if len(subs) > 0 {
		store.EXPECT().LoadSubscriptions(gomock.Any()).Return(subs, nil).Times(1)
		require.NoError(t, l.Restore(context.Background()))
	}
	return l, store
}

func validSub(name string) entity.Subscription {
	return entity.Subscription{
		ID:              strfmt.UUID(uuid.NewString()),
		Name:            name,
		Price:           15.99,
		Currency:        "USD",
		BillingCycle:    entity.CycleMonthly,
		Category:        "Streaming",
		NextPaymentDate: date(2025, 10, 15),
	}
}

func Test_ledger_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("err, name too short", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		s := validSub("ab")
		_, err := l.Add(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("err, non-positive price", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		s := validSub("Netflix")
		s.Price = 0
		_, err := l.Add(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("err, unknown currency", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		s := validSub("Netflix")
		s.Currency = "JPY"
		_, err := l.Add(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("err, legacy billing cycle", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		s := validSub("Netflix")
		s.BillingCycle = "quarterly"
		_, err := l.Add(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("err, missing billing cycle", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		s := validSub("Netflix")
		s.BillingCycle = ""
		_, err := l.Add(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("err, store failure leaves ledger unchanged", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		expected := errors.New("save error")
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(expected).Times(1)

		_, err := l.Add(ctx, validSub("Netflix"))
		assert.ErrorIs(t, err, expected)
		subs, err := l.List(SortNone, false)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("ok, defaults filled", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		before := time.Now().UTC()
		got, err := l.Add(ctx, entity.Subscription{
			Name:         " Spotify ",
			Price:        29.99,
			Currency:     "pln",
			BillingCycle: entity.CycleMonthly,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Spotify", got.Name)
		assert.Equal(t, "PLN", got.Currency)
		assert.Equal(t, entity.DefaultCategory, got.Category)
		// default payment date is 30 days out, date-only
		lo := date(before.Year(), before.Month(), before.Day()).AddDate(0, 0, 30)
		assert.False(t, got.NextPaymentDate.Before(lo))
		assert.False(t, got.NextPaymentDate.After(lo.AddDate(0, 0, 1)))
	})

	t.Run("ok, explicit date truncated to midnight", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		s := validSub("Netflix")
		s.NextPaymentDate = time.Date(2025, 10, 15, 18, 30, 0, 0, time.UTC)
		got, err := l.Add(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, date(2025, 10, 15), got.NextPaymentDate)
	})
}

func Test_ledger_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl, validSub("Netflix"))
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		price := 9.99
		_, ok, err := l.Update(ctx, strfmt.UUID(uuid.NewString()), SubscriptionPatch{Price: &price})
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("err, patch breaking invariants rejected", func(t *testing.T) {
		existing := validSub("Netflix")
		l, store := newTestLedger(t, ctrl, existing)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		bad := -5.0
		_, _, err := l.Update(ctx, existing.ID, SubscriptionPatch{Price: &bad})
		assert.ErrorIs(t, err, ErrInvalidSubscription)

		got, found := l.Get(existing.ID)
		require.True(t, found)
		assert.Equal(t, existing.Price, got.Price)
	})

	t.Run("ok, merges only set fields", func(t *testing.T) {
		existing := validSub("Netflix")
		l, store := newTestLedger(t, ctrl, existing)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		price := 19.99
		cat := "Entertainment"
		got, ok, err := l.Update(ctx, existing.ID, SubscriptionPatch{Price: &price, Category: &cat})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, existing.ID, got.ID)
		assert.Equal(t, existing.Name, got.Name)
		assert.Equal(t, 19.99, got.Price)
		assert.Equal(t, "Entertainment", got.Category)
		assert.Equal(t, existing.NextPaymentDate, got.NextPaymentDate)
	})
}

func Test_ledger_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		l, store := newTestLedger(t, ctrl, validSub("Netflix"))
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		ok, err := l.Remove(ctx, strfmt.UUID(uuid.NewString()))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ok", func(t *testing.T) {
		a, b := validSub("Netflix"), validSub("Spotify")
		l, store := newTestLedger(t, ctrl, a, b)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		ok, err := l.Remove(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, found := l.Get(a.ID)
		assert.False(t, found)
		_, found = l.Get(b.ID)
		assert.True(t, found)
	})
}

func Test_ledger_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := validSub("Spotify")
	a.Price = 20
	a.NextPaymentDate = date(2025, 10, 1)
	b := validSub("Netflix")
	b.Price = 30
	b.NextPaymentDate = date(2025, 9, 10)
	c := validSub("audible")
	c.Price = 10
	c.NextPaymentDate = date(2025, 11, 5)

	l, _ := newTestLedger(t, ctrl, a, b, c)

	t.Run("insertion order by default", func(t *testing.T) {
		got, err := l.List(SortNone, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"Spotify", "Netflix", "audible"}, names(got))
	})

	t.Run("by name, case-insensitive", func(t *testing.T) {
		got, err := l.List(SortByName, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"audible", "Netflix", "Spotify"}, names(got))
	})

	t.Run("by date", func(t *testing.T) {
		got, err := l.List(SortByDate, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"Netflix", "Spotify", "audible"}, names(got))
	})

	t.Run("by price, reversed", func(t *testing.T) {
		got, err := l.List(SortByPrice, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"Netflix", "Spotify", "audible"}, names(got))
	})

	t.Run("err, unknown sort key", func(t *testing.T) {
		_, err := l.List(SortKey("color"), false)
		assert.ErrorIs(t, err, ErrInvalidSortKey)
	})
}

func names(subs []entity.Subscription) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.Name)
	}
	return out
}

func Test_ledger_TotalAt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := &entity.RateTable{
		Rates:       map[string]float64{"PLN": 1, "USD": 4, "EUR": 5, "GBP": 5},
		LastUpdated: "2025-08-29",
	}

	t.Run("empty ledger totals zero", func(t *testing.T) {
		l, _ := newTestLedger(t, ctrl)
		total, err := l.TotalAt(GranularityMonthly, "", nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("mixed currencies converted before summing", func(t *testing.T) {
		usd := validSub("Netflix") // 15.99 USD monthly
		weekly := validSub("Gym")
		weekly.Price = 10
		weekly.Currency = "PLN"
		weekly.BillingCycle = entity.CycleWeekly
		l, _ := newTestLedger(t, ctrl, usd, weekly)

		// 15.99*4 PLN + 10*4 PLN
		total, err := l.TotalAt(GranularityMonthly, "PLN", table)
		require.NoError(t, err)
		assert.InDelta(t, 15.99*4+40, total, 1e-9)

		// yearly basis, in USD: 15.99*12 + (10*52)/4
		total, err = l.TotalAt(GranularityYearly, "USD", table)
		require.NoError(t, err)
		assert.InDelta(t, 15.99*12+520.0/4, total, 1e-9)
	})

	t.Run("no conversion when target empty", func(t *testing.T) {
		s := validSub("Netflix")
		l, _ := newTestLedger(t, ctrl, s)
		total, err := l.TotalAt(GranularityMonthly, "", nil)
		require.NoError(t, err)
		assert.InDelta(t, 15.99, total, 1e-9)
	})

	t.Run("err, unknown granularity", func(t *testing.T) {
		l, _ := newTestLedger(t, ctrl)
		_, err := l.TotalAt(Granularity("daily"), "", nil)
		assert.ErrorIs(t, err, ErrInvalidGranularity)
	})

	t.Run("err, unknown target currency", func(t *testing.T) {
		l, _ := newTestLedger(t, ctrl)
		_, err := l.TotalAt(GranularityMonthly, "JPY", table)
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func Test_ledger_GroupByCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := &entity.RateTable{
		Rates:       map[string]float64{"PLN": 1, "USD": 4},
		LastUpdated: "2025-08-29",
	}

	a := validSub("Netflix") // Streaming, 15.99 USD
	b := validSub("Spotify") // Streaming
	b.Price = 20
	b.Currency = "PLN"
	c := validSub("Gym")
	c.Category = "Health"
	c.Price = 100
	c.Currency = "PLN"

	l, _ := newTestLedger(t, ctrl, a, b, c)

	t.Run("native prices when no target given", func(t *testing.T) {
		got, err := l.GroupByCategory("", nil)
		require.NoError(t, err)
		assert.InDelta(t, 15.99+20, got["Streaming"], 1e-9)
		assert.InDelta(t, 100, got["Health"], 1e-9)
	})

	t.Run("converted when a target is given", func(t *testing.T) {
		got, err := l.GroupByCategory("PLN", table)
		require.NoError(t, err)
		assert.InDelta(t, 15.99*4+20, got["Streaming"], 1e-9)
		assert.InDelta(t, 100, got["Health"], 1e-9)
	})

	t.Run("err, unknown target currency", func(t *testing.T) {
		_, err := l.GroupByCategory("XXX", table)
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func Test_ledger_Counts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ref := date(2025, 9, 1)

	t.Run("empty ledger", func(t *testing.T) {
		l, _ := newTestLedger(t, ctrl)
		assert.Zero(t, l.CountActive(ref))
		assert.Zero(t, l.CountExpired(ref))
	})

	t.Run("date-only partition, boundary counts as expired", func(t *testing.T) {
		past := validSub("Netflix")
		past.NextPaymentDate = ref.AddDate(0, 0, -10)
		boundary := validSub("Spotify")
		boundary.NextPaymentDate = ref
		future := validSub("Gym")
		future.NextPaymentDate = ref.AddDate(0, 0, 1)

		l, _ := newTestLedger(t, ctrl, past, boundary, future)
		assert.Equal(t, 1, l.CountActive(ref))
		assert.Equal(t, 2, l.CountExpired(ref))

		// time of day on the reference is irrelevant
		assert.Equal(t, 1, l.CountActive(ref.Add(15*time.Hour)))
	})
}

func Test_ledger_RollForwardExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ref := date(2025, 9, 1)

	t.Run("lapsed 40 days advances by exactly two months", func(t *testing.T) {
		s := validSub("Netflix")
		s.NextPaymentDate = ref.AddDate(0, 0, -40) // 2025-07-23
		l, store := newTestLedger(t, ctrl, s)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		rolled, err := l.RollForwardExpired(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 1, rolled)

		got, _ := l.Get(s.ID)
		assert.Equal(t, date(2025, 9, 23), got.NextPaymentDate)
	})

	t.Run("future records untouched", func(t *testing.T) {
		s := validSub("Netflix")
		s.NextPaymentDate = ref.AddDate(0, 0, 5)
		l, store := newTestLedger(t, ctrl, s)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		rolled, err := l.RollForwardExpired(ctx, ref)
		require.NoError(t, err)
		assert.Zero(t, rolled)
	})

	t.Run("idempotent for the same reference date", func(t *testing.T) {
		weekly := validSub("Gym")
		weekly.BillingCycle = entity.CycleWeekly
		weekly.NextPaymentDate = ref.AddDate(0, 0, -23)
		yearly := validSub("Domain")
		yearly.BillingCycle = entity.CycleYearly
		yearly.NextPaymentDate = ref.AddDate(-2, 0, -10)

		l, store := newTestLedger(t, ctrl, weekly, yearly)
		store.EXPECT().SaveSubscriptions(ctx, gomock.Any()).Return(nil).Times(1)

		rolled, err := l.RollForwardExpired(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 2, rolled)
		first, err := l.List(SortNone, false)
		require.NoError(t, err)

		// second pass with the same reference saves nothing and moves nothing
		rolled, err = l.RollForwardExpired(ctx, ref)
		require.NoError(t, err)
		assert.Zero(t, rolled)
		second, err := l.List(SortNone, false)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		for _, s := range second {
			assert.False(t, s.NextPaymentDate.Before(ref))
		}
	})

	t.Run("record due exactly today stays in place", func(t *testing.T) {
		s := validSub("Netflix")
		s.NextPaymentDate = ref
		l, store := newTestLedger(t, ctrl, s)
		store.EXPECT().SaveSubscriptions(gomock.Any(), gomock.Any()).Times(0)

		rolled, err := l.RollForwardExpired(ctx, ref)
		require.NoError(t, err)
		assert.Zero(t, rolled)
		got, _ := l.Get(s.ID)
		assert.Equal(t, ref, got.NextPaymentDate)
	})
}

func Test_ledger_UpcomingInMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := validSub("Netflix")
	a.NextPaymentDate = date(2025, 10, 15)
	b := validSub("Spotify")
	b.NextPaymentDate = date(2025, 10, 15)
	c := validSub("Gym")
	c.NextPaymentDate = date(2025, 11, 2)

	l, _ := newTestLedger(t, ctrl, a, b, c)

	cal := l.UpcomingInMonth(2025, time.October)
	require.Len(t, cal, 1)
	assert.Len(t, cal[15], 2)
	assert.Empty(t, l.UpcomingInMonth(2025, time.December))
}

func Test_ledger_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	l, store := newTestLedger(t, ctrl, validSub("Netflix"), validSub("Spotify"))
	store.EXPECT().SaveSubscriptions(ctx, gomock.Len(0)).Return(nil).Times(1)

	require.NoError(t, l.Clear(ctx))
	subs, err := l.List(SortNone, false)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
