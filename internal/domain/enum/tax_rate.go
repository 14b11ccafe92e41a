package enum

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRate is a flat per-line tax percentage
type TaxRate int

const (
	TaxRate0  TaxRate = 0
	TaxRate5  TaxRate = 5
	TaxRate12 TaxRate = 12
	TaxRate18 TaxRate = 18
	TaxRate28 TaxRate = 28
)

// TaxRates lists the catalog tax slabs
var TaxRates = []TaxRate{TaxRate0, TaxRate5, TaxRate12, TaxRate18, TaxRate28}

// String returns the display label, e.g. "18%"
func (t TaxRate) String() string {
	return fmt.Sprintf("%d%%", int(t))
}

// Valid reports whether t is one of the catalog tax slabs
func (t TaxRate) Valid() bool {
	for _, r := range TaxRates {
		if r == t {
			return true
		}
	}
	return false
}

// Decimal returns the percentage as a decimal
func (t TaxRate) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(t))
}
