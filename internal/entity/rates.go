package entity

import "time"

// BaseCurrency is the currency all exchange rates are expressed against.
// Its rate is always exactly 1.
const BaseCurrency = "PLN"

// SupportedCurrencies - closed set of currency codes a subscription may use
var SupportedCurrencies = []string{"PLN", "USD", "EUR", "GBP"}

// IsSupportedCurrency reports whether code belongs to the supported set.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// RateTable - exchange rates against the base currency plus the effective
// date of the data
type RateTable struct {
	// Rates - currency code to its value in the base currency
	Rates map[string]float64
	// LastUpdated - effective date of the data, ISO calendar date
	LastUpdated string
}

// DefaultRateTable seeds conversions before any refresh has ever succeeded.
func DefaultRateTable(now time.Time) *RateTable {
	return &RateTable{
		Rates: map[string]float64{
			"PLN": 1,
			"USD": 3.6,
			"GBP": 4.86,
			"EUR": 4.22,
		},
		LastUpdated: now.UTC().Format(time.DateOnly),
	}
}

// Rate returns the base-currency value of code. Unknown or non-positive
// entries fall back to 1 so a conversion result always exists.
func (t *RateTable) Rate(code string) float64 {
	if t == nil {
		return 1
	}
	if r, ok := t.Rates[code]; ok && r > 0 {
		return r
	}
	return 1
}

// Clone returns an independent copy of the table.
func (t *RateTable) Clone() *RateTable {
	if t == nil {
		return nil
	}
	rates := make(map[string]float64, len(t.Rates))
	for k, v := range t.Rates {
		rates[k] = v
	}
	return &RateTable{Rates: rates, LastUpdated: t.LastUpdated}
}

// Settings - persisted rate table plus the chosen display currency
type Settings struct {
	// Table - last known exchange rates
	Table *RateTable
	// DefaultCurrency - currency totals are shown in
	DefaultCurrency string
}
