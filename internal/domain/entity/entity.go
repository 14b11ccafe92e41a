// Package entity holds the persisted shapes of the invoicing ledger. Field
// names follow the documents already written by earlier versions of the app,
// so they must not change.
package entity

import "github.com/shopspring/decimal"

func init() {
	// Persisted documents carry money and quantities as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
