package entity

import (
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StockItem represents a reusable catalog entry with a default price and tax rate
type StockItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     enum.TaxRate    `json:"taxRate"`
}
