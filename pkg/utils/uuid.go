package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// InvoiceNumberPrefix starts every permanent invoice number
	InvoiceNumberPrefix = "INV"
	// ProvisionalPrefix marks a number that has not been finalized
	ProvisionalPrefix = "DRAFT-"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`(?i)[^a-z0-9_\-\s.]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// NewID generates a new opaque record identifier
func NewID() string {
	return uuid.NewString()
}

// FormatInvoiceNumber formats a permanent invoice number, e.g. INV-2024-007
func FormatInvoiceNumber(year, suffix int) string {
	return fmt.Sprintf("%s-%d-%03d", InvoiceNumberPrefix, year, suffix)
}

// ProvisionalInvoiceNumber derives a display number for a draft from its id.
// It never consumes a numbering suffix.
func ProvisionalInvoiceNumber(id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return ProvisionalPrefix + strings.ToUpper(short)
}

// IsProvisionalInvoiceNumber reports whether number is a draft placeholder
func IsProvisionalInvoiceNumber(number string) bool {
	return number == "" || strings.HasPrefix(number, ProvisionalPrefix)
}

// SanitizeFilename converts a string to something safe to use in a file name
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

// ExportFilename builds the download name for a rendered invoice
func ExportFilename(invoiceNumber, clientName, ext string) string {
	return fmt.Sprintf("Invoice-%s-%s.%s", invoiceNumber, SanitizeFilename(clientName), strings.TrimPrefix(ext, "."))
}
