package service

import (
	"context"

	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/utils"
	"github.com/shopspring/decimal"
)

// PaymentDetails is what a rendered invoice needs for its payment QR code
// and download name
type PaymentDetails struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Amount        decimal.Decimal `json:"amount"`
	// PaymentURL is empty when the payee has no UPI id or nothing is due
	PaymentURL  string `json:"paymentUrl"`
	PDFFilename string `json:"pdfFilename"`
	PNGFilename string `json:"pngFilename"`
}

// PaymentDetails derives the payment link from the invoice's own company
// snapshot, so later profile edits do not change it
func (s *Store) PaymentDetails(ctx context.Context, id, currency string) (*PaymentDetails, error) {
	inv := s.GetInvoiceByID(ctx, id)
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	var upiID, payee, clientName string
	if inv.CompanyProfileSnapshot != nil {
		upiID = inv.CompanyProfileSnapshot.UpiID
		payee = inv.CompanyProfileSnapshot.CompanyName
	}
	if inv.ClientDetails != nil {
		clientName = inv.ClientDetails.Name
	}

	return &PaymentDetails{
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.GrandTotal,
		PaymentURL:    utils.UPIPaymentURL(upiID, payee, inv.GrandTotal, currency, inv.InvoiceNumber),
		PDFFilename:   utils.ExportFilename(inv.InvoiceNumber, clientName, "pdf"),
		PNGFilename:   utils.ExportFilename(inv.InvoiceNumber, clientName, "png"),
	}, nil
}
