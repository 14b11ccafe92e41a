package totals

import (
	"testing"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price string, rate enum.TaxRate) entity.InvoiceLineItem {
	return entity.InvoiceLineItem{ItemName: "item", Quantity: d(qty), UnitPrice: d(price), TaxRate: rate}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		lines    []entity.InvoiceLineItem
		rule     DiscountRule
		subtotal string
		discount string
		after    string
		tax      string
		grand    string
	}{
		{
			name:     "single taxed line",
			lines:    []entity.InvoiceLineItem{line("2", "100", enum.TaxRate18)},
			rule:     DiscountRule{Type: enum.DiscountTypePercentage, Value: decimal.Zero},
			subtotal: "200", discount: "0", after: "200", tax: "36", grand: "236",
		},
		{
			name:     "flat discount clamped to subtotal",
			lines:    []entity.InvoiceLineItem{line("1", "100", enum.TaxRate0)},
			rule:     DiscountRule{Type: enum.DiscountTypeFlat, Value: d("500")},
			subtotal: "100", discount: "100", after: "0", tax: "0", grand: "0",
		},
		{
			name:     "percentage discount",
			lines:    []entity.InvoiceLineItem{line("2", "100", enum.TaxRate0)},
			rule:     DiscountRule{Type: enum.DiscountTypePercentage, Value: d("10")},
			subtotal: "200", discount: "20", after: "180", tax: "0", grand: "180",
		},
		{
			name:     "tax is charged on the pre-discount amount",
			lines:    []entity.InvoiceLineItem{line("1", "1000", enum.TaxRate18)},
			rule:     DiscountRule{Type: enum.DiscountTypeFlat, Value: d("100")},
			subtotal: "1000", discount: "100", after: "900", tax: "180", grand: "1080",
		},
		{
			name:     "percentage above one hundred is clamped",
			lines:    []entity.InvoiceLineItem{line("3", "10", enum.TaxRate5)},
			rule:     DiscountRule{Type: enum.DiscountTypePercentage, Value: d("150")},
			subtotal: "30", discount: "30", after: "0", tax: "1.5", grand: "1.5",
		},
		{
			name:     "empty kind defaults to percentage",
			lines:    []entity.InvoiceLineItem{line("1", "50", enum.TaxRate0)},
			rule:     DiscountRule{Value: d("10")},
			subtotal: "50", discount: "5", after: "45", tax: "0", grand: "45",
		},
		{
			name:     "negative discount value is treated as zero",
			lines:    []entity.InvoiceLineItem{line("1", "50", enum.TaxRate0)},
			rule:     DiscountRule{Type: enum.DiscountTypeFlat, Value: d("-20")},
			subtotal: "50", discount: "0", after: "50", tax: "0", grand: "50",
		},
		{
			name:     "no lines",
			rule:     DiscountRule{Type: enum.DiscountTypeFlat, Value: d("20")},
			subtotal: "0", discount: "0", after: "0", tax: "0", grand: "0",
		},
		{
			name: "multiple lines and rates",
			lines: []entity.InvoiceLineItem{
				line("2", "100", enum.TaxRate18),
				line("1", "50", enum.TaxRate5),
				line("4", "25", enum.TaxRate0),
			},
			rule:     DiscountRule{Type: enum.DiscountTypePercentage, Value: d("5")},
			subtotal: "350", discount: "17.5", after: "332.5", tax: "38.5", grand: "371",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(tt.lines, tt.rule)
			require.NoError(t, err)

			assertMoney(t, tt.subtotal, res.Subtotal, "subtotal")
			assertMoney(t, tt.discount, res.DiscountAmount, "discount")
			assertMoney(t, tt.after, res.AmountAfterDiscount, "amountAfterDiscount")
			assertMoney(t, tt.tax, res.TotalTax, "totalTax")
			assertMoney(t, tt.grand, res.GrandTotal, "grandTotal")
		})
	}
}

func TestComputePricesLines(t *testing.T) {
	res, err := Compute([]entity.InvoiceLineItem{line("2", "100", enum.TaxRate18)}, DiscountRule{})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	assertMoney(t, "200", res.Lines[0].LineTotal, "lineTotal")
	assertMoney(t, "36", res.Lines[0].TaxAmount, "taxAmount")
	assertMoney(t, "236", res.Lines[0].ItemTotalWithTax, "itemTotalWithTax")
}

func TestComputeIgnoresStaleDerivedFields(t *testing.T) {
	stale := line("1", "10", enum.TaxRate0)
	stale.LineTotal = d("999")
	stale.TaxAmount = d("999")
	stale.ItemTotalWithTax = d("999")

	res, err := Compute([]entity.InvoiceLineItem{stale}, DiscountRule{})
	require.NoError(t, err)

	assertMoney(t, "10", res.Lines[0].LineTotal, "lineTotal")
	assertMoney(t, "10", res.GrandTotal, "grandTotal")
	assertMoney(t, "999", stale.LineTotal, "input untouched")
}

func TestComputeRoundsHalfUpFromExactSums(t *testing.T) {
	lines := []entity.InvoiceLineItem{
		line("1", "0.005", enum.TaxRate0),
		line("1", "0.005", enum.TaxRate0),
		line("3", "0.333", enum.TaxRate5),
	}

	res, err := Compute(lines, DiscountRule{})
	require.NoError(t, err)

	assertMoney(t, "0.01", res.Lines[0].LineTotal, "half-up line")
	assertMoney(t, "1.01", res.Subtotal, "subtotal from exact sum")
	assertMoney(t, "0.05", res.TotalTax, "tax from exact sum")
	assertMoney(t, "1.06", res.GrandTotal, "grandTotal")
}

func TestComputeInvariants(t *testing.T) {
	lines := []entity.InvoiceLineItem{
		line("3", "19.99", enum.TaxRate12),
		line("0.5", "7.13", enum.TaxRate28),
		line("7", "0.01", enum.TaxRate5),
	}
	rules := []DiscountRule{
		{Type: enum.DiscountTypePercentage, Value: d("12.5")},
		{Type: enum.DiscountTypePercentage, Value: d("33.333")},
		{Type: enum.DiscountTypeFlat, Value: d("10.005")},
		{Type: enum.DiscountTypeFlat, Value: d("10000")},
	}

	for _, rule := range rules {
		res, err := Compute(lines, rule)
		require.NoError(t, err)

		assert.True(t, res.AmountAfterDiscount.Equal(res.Subtotal.Sub(res.DiscountAmount)))
		assert.True(t, res.GrandTotal.Equal(res.AmountAfterDiscount.Add(res.TotalTax)))
		assert.False(t, res.DiscountAmount.IsNegative())
		assert.True(t, res.DiscountAmount.LessThanOrEqual(res.Subtotal))
		for _, l := range res.Lines {
			assert.True(t, l.ItemTotalWithTax.Equal(l.LineTotal.Add(l.TaxAmount)))
		}
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		lines []entity.InvoiceLineItem
		rule  DiscountRule
		field string
	}{
		{"negative quantity", []entity.InvoiceLineItem{line("-1", "10", enum.TaxRate0)}, DiscountRule{}, "items[0].quantity"},
		{"negative price", []entity.InvoiceLineItem{line("1", "-10", enum.TaxRate0)}, DiscountRule{}, "items[0].unitPrice"},
		{"negative tax rate", []entity.InvoiceLineItem{line("1", "10", enum.TaxRate(-5))}, DiscountRule{}, "items[0].taxRate"},
		{"unknown discount kind", []entity.InvoiceLineItem{line("1", "10", enum.TaxRate0)}, DiscountRule{Type: "bogus"}, "discountType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.lines, tt.rule)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidationFailed))

			appErr := apperror.GetAppError(err)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}
}

func TestRecompute(t *testing.T) {
	inv := &entity.Invoice{
		Items:         []entity.InvoiceLineItem{line("2", "100", enum.TaxRate18)},
		DiscountValue: d("-3"),
	}

	require.NoError(t, Recompute(inv))

	assert.Equal(t, enum.DiscountTypePercentage, inv.DiscountType)
	assert.True(t, inv.DiscountValue.IsZero())
	assertMoney(t, "200", inv.Subtotal, "subtotal")
	assertMoney(t, "236", inv.GrandTotal, "grandTotal")
	assertMoney(t, "236", inv.Items[0].ItemTotalWithTax, "line total with tax")
}

func TestRecomputeIsIdempotent(t *testing.T) {
	inv := &entity.Invoice{
		Items: []entity.InvoiceLineItem{
			line("3", "19.99", enum.TaxRate12),
			line("1", "0.005", enum.TaxRate5),
		},
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: d("7.5"),
	}
	require.NoError(t, Recompute(inv))
	first := *inv.Clone()

	require.NoError(t, Recompute(inv))

	assert.True(t, first.Subtotal.Equal(inv.Subtotal))
	assert.True(t, first.DiscountAmountCalculated.Equal(inv.DiscountAmountCalculated))
	assert.True(t, first.TotalTax.Equal(inv.TotalTax))
	assert.True(t, first.GrandTotal.Equal(inv.GrandTotal))
	for i := range inv.Items {
		assert.True(t, first.Items[i].ItemTotalWithTax.Equal(inv.Items[i].ItemTotalWithTax))
	}
}
