package billing

import (
	"fmt"

	"feefocus/internal/entity"
)

// Convert translates amount between currencies through the base currency.
// Unknown codes fall back to rate 1; that is a documented lossy degradation,
// not an error, so the UI always has a value to render.
func Convert(amount float64, from, to string, table *entity.RateTable) float64 {
	if from == to {
		return amount
	}
	inBase := amount * table.Rate(from)
	return inBase / table.Rate(to)
}

// Format renders an amount with two decimal places followed by its
// currency code.
func Format(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}
