package enum

import (
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "Draft"
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

// InvoiceStatuses lists every known status in display order
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusUnpaid,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusDraft,
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// IsDraft reports whether the invoice is not yet finalized
func (s InvoiceStatus) IsDraft() bool {
	return s == InvoiceStatusDraft
}

// ParseInvoiceStatus converts a string to an InvoiceStatus
func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	s := InvoiceStatus(str)
	if !s.Valid() {
		return "", fmt.Errorf("unknown invoice status %q", str)
	}
	return s, nil
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
