package repository

import "context"

// Well-known keys of the durable ledger store. These names are part of the
// on-disk format and must not change.
const (
	KeyCompanyProfile          = "invoiceApp_companyProfile"
	KeyClients                 = "invoiceApp_clients"
	KeyStockItems              = "invoiceApp_stockItems"
	KeyInvoices                = "invoiceApp_invoices"
	KeyLastInvoiceNumberSuffix = "invoiceApp_lastInvoiceNumberSuffix"
)

// KeyValueStore is the durable key-value collaborator that holds each
// collection as one JSON document.
type KeyValueStore interface {
	// Get returns the stored document. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the document stored under key
	Set(ctx context.Context, key string, value []byte) error
	// SetMany replaces several documents atomically: either every entry is
	// written or none is.
	SetMany(ctx context.Context, entries map[string][]byte) error
}
