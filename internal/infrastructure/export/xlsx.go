package export

import (
	"bytes"
	"fmt"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// RegisterSheet is the worksheet holding the invoice register
const RegisterSheet = "Invoices"

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var registerHeaders = []string{
	"Invoice Number", "Status", "Bill Date", "Due Date", "Client",
	"Subtotal", "Discount", "Amount After Discount", "Tax", "Grand Total",
}

// moneyFormat is the built-in "0.00" number format
const moneyFormat = 2

// InvoiceRegister renders invoices, in the order given, as an XLSX workbook
func InvoiceRegister(invoices []entity.Invoice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	for i, header := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(RegisterSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}
	if err := f.SetRowStyle(RegisterSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("error creating money style: %w", err)
	}

	for i := range invoices {
		inv := &invoices[i]
		row := i + 2

		clientName := ""
		if inv.ClientDetails != nil {
			clientName = inv.ClientDetails.Name
		}
		values := []interface{}{
			inv.InvoiceNumber,
			inv.Status.String(),
			inv.BillDate,
			inv.DueDate,
			clientName,
			inv.Subtotal.InexactFloat64(),
			inv.DiscountAmountCalculated.InexactFloat64(),
			inv.AmountAfterDiscount.InexactFloat64(),
			inv.TotalTax.InexactFloat64(),
			inv.GrandTotal.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(RegisterSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}

		first, _ := excelize.CoordinatesToCellName(6, row)
		last, _ := excelize.CoordinatesToCellName(len(registerHeaders), row)
		if err := f.SetCellStyle(RegisterSheet, first, last, moneyStyle); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(RegisterSheet, "A", "J", 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %w", err)
	}
	return &buf, nil
}
