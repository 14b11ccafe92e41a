package entity

import (
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Invoice is a point-in-time billing record. ClientDetails and
// CompanyProfileSnapshot are frozen copies taken when the invoice was saved.
type Invoice struct {
	ID                       string             `json:"id"`
	InvoiceNumber            string             `json:"invoiceNumber"`
	BillDate                 string             `json:"billDate" validate:"required,datetime=2006-01-02"`
	DueDate                  string             `json:"dueDate" validate:"required,datetime=2006-01-02"`
	ClientID                 string             `json:"clientId" validate:"required"`
	ClientDetails            *Client            `json:"clientDetails"`
	Items                    []InvoiceLineItem  `json:"items" validate:"dive"`
	Subtotal                 decimal.Decimal    `json:"subtotal"`
	DiscountType             enum.DiscountType  `json:"discountType"`
	DiscountValue            decimal.Decimal    `json:"discountValue"`
	DiscountAmountCalculated decimal.Decimal    `json:"discountAmountCalculated"`
	AmountAfterDiscount      decimal.Decimal    `json:"amountAfterDiscount"`
	TotalTax                 decimal.Decimal    `json:"totalTax"`
	GrandTotal               decimal.Decimal    `json:"grandTotal"`
	TermsAndConditions       string             `json:"termsAndConditions,omitempty"`
	Notes                    string             `json:"notes,omitempty"`
	Status                   enum.InvoiceStatus `json:"status"`
	CompanyProfileSnapshot   *CompanyProfile    `json:"companyProfileSnapshot"`
	// IsFinalized is set once a permanent invoice number has been assigned.
	IsFinalized bool `json:"isFinalized,omitempty"`
}

// InvoiceLineItem is one priced row of an invoice. LineTotal, TaxAmount and
// ItemTotalWithTax are derived and recomputed on every save.
type InvoiceLineItem struct {
	StockItemID      string          `json:"stockItemId"`
	ItemName         string          `json:"itemName" validate:"required"`
	Description      string          `json:"description,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TaxRate          enum.TaxRate    `json:"taxRate"`
	LineTotal        decimal.Decimal `json:"lineTotal"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	ItemTotalWithTax decimal.Decimal `json:"itemTotalWithTax"`
}

// Clone returns a deep copy of the invoice
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	if inv.Items != nil {
		cp.Items = make([]InvoiceLineItem, len(inv.Items))
		copy(cp.Items, inv.Items)
	}
	cp.ClientDetails = inv.ClientDetails.Snapshot()
	cp.CompanyProfileSnapshot = inv.CompanyProfileSnapshot.Snapshot()
	return &cp
}
