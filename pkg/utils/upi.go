package utils

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// componentUnescaper restores the marks that URI components leave literal
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes a URI component. Only letters, digits and
// -_.!~*'() stay literal, and spaces become %20.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// UPIPaymentURL builds a upi://pay deep link for a QR code. It returns ""
// when there is no payee id or nothing to pay.
func UPIPaymentURL(upiID, payeeName string, amount decimal.Decimal, currency, invoiceNumber string) string {
	if upiID == "" || !amount.IsPositive() {
		return ""
	}
	return "upi://pay?pa=" + upiID +
		"&pn=" + encodeComponent(payeeName) +
		"&am=" + amount.StringFixed(2) +
		"&cu=" + currency +
		"&tn=" + encodeComponent("Invoice-"+invoiceNumber)
}
