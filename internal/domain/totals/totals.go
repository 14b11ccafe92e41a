// Package totals prices invoice lines and aggregates invoice totals.
//
// Arithmetic is exact; money fields are rounded half-up to MoneyPlaces only
// when they are materialized. Aggregates are rounded from exact sums, and the
// two derived differences (amount after discount, grand total) are computed
// from the rounded parts so that the stored values satisfy
//
//	amountAfterDiscount = subtotal - discountAmount
//	grandTotal          = amountAfterDiscount + totalTax
//
// exactly. Tax is levied on pre-discount line amounts.
package totals

import (
	"fmt"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept on money fields
const MoneyPlaces = 2

// DiscountRule is the invoice-level discount
type DiscountRule struct {
	Type  enum.DiscountType
	Value decimal.Decimal
}

// Result holds priced lines and invoice aggregates
type Result struct {
	Subtotal            decimal.Decimal
	DiscountAmount      decimal.Decimal
	AmountAfterDiscount decimal.Decimal
	TotalTax            decimal.Decimal
	GrandTotal          decimal.Decimal
	Lines               []entity.InvoiceLineItem
}

// Compute prices every line and aggregates the totals. Derived fields on the
// input lines are ignored; the input slice is not modified.
func Compute(lines []entity.InvoiceLineItem, rule DiscountRule) (*Result, error) {
	discountType, discountValue, err := normalizeRule(rule)
	if err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	priced := make([]entity.InvoiceLineItem, len(lines))
	subtotal := decimal.Zero
	totalTax := decimal.Zero

	for i, line := range lines {
		lineTotal := line.Quantity.Mul(line.UnitPrice)
		taxAmount := lineTotal.Mul(line.TaxRate.Decimal()).Shift(-2)

		subtotal = subtotal.Add(lineTotal)
		totalTax = totalTax.Add(taxAmount)

		line.LineTotal = round(lineTotal)
		line.TaxAmount = round(taxAmount)
		line.ItemTotalWithTax = line.LineTotal.Add(line.TaxAmount)
		priced[i] = line
	}

	var rawDiscount decimal.Decimal
	switch discountType {
	case enum.DiscountTypePercentage:
		rawDiscount = subtotal.Mul(discountValue).Shift(-2)
	case enum.DiscountTypeFlat:
		rawDiscount = discountValue
	}
	discount := decimal.Min(rawDiscount, subtotal)

	res := &Result{
		Subtotal:       round(subtotal),
		DiscountAmount: round(discount),
		TotalTax:       round(totalTax),
		Lines:          priced,
	}
	res.AmountAfterDiscount = res.Subtotal.Sub(res.DiscountAmount)
	res.GrandTotal = res.AmountAfterDiscount.Add(res.TotalTax)
	return res, nil
}

// Recompute refreshes every derived field of inv from its lines and discount
// rule. It is the single recalculation entry point for a changed line set or
// a changed discount rule.
func Recompute(inv *entity.Invoice) error {
	res, err := Compute(inv.Items, DiscountRule{Type: inv.DiscountType, Value: inv.DiscountValue})
	if err != nil {
		return err
	}
	inv.DiscountType = inv.DiscountType.OrDefault()
	if inv.DiscountValue.IsNegative() {
		inv.DiscountValue = decimal.Zero
	}
	inv.Items = res.Lines
	inv.Subtotal = res.Subtotal
	inv.DiscountAmountCalculated = res.DiscountAmount
	inv.AmountAfterDiscount = res.AmountAfterDiscount
	inv.TotalTax = res.TotalTax
	inv.GrandTotal = res.GrandTotal
	return nil
}

// normalizeRule applies the discount defaults: an unset kind means
// percentage and a negative value is clamped to zero.
func normalizeRule(rule DiscountRule) (enum.DiscountType, decimal.Decimal, error) {
	kind := rule.Type.OrDefault()
	if !kind.Valid() {
		return "", decimal.Zero, apperror.NewFieldValidationError("discountType",
			fmt.Sprintf("unknown discount type %q", rule.Type))
	}
	value := rule.Value
	if value.IsNegative() {
		value = decimal.Zero
	}
	return kind, value, nil
}

func validateLines(lines []entity.InvoiceLineItem) error {
	var fieldErrors []apperror.FieldError
	for i, line := range lines {
		if line.Quantity.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must not be negative",
			})
		}
		if line.UnitPrice.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unitPrice", i),
				Message: "must not be negative",
			})
		}
		if line.TaxRate < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].taxRate", i),
				Message: "must not be negative",
			})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
