package service

import (
	"context"
	"time"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Summary holds the dashboard figures
type Summary struct {
	TotalInvoices int             `json:"totalInvoices"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalUnpaid   decimal.Decimal `json:"totalUnpaid"`
	TotalDrafts   int             `json:"totalDrafts"`
	// PastDue counts Unpaid invoices whose due date has passed
	PastDue int `json:"pastDue"`
}

// Summary aggregates the invoice collection. Unpaid includes Overdue.
func (s *Store) Summary(_ context.Context) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sum := Summary{
		TotalInvoices: len(s.invoices),
		TotalPaid:     decimal.Zero,
		TotalUnpaid:   decimal.Zero,
	}
	for i := range s.invoices {
		inv := &s.invoices[i]
		switch inv.Status {
		case enum.InvoiceStatusPaid:
			sum.TotalPaid = sum.TotalPaid.Add(inv.GrandTotal)
		case enum.InvoiceStatusUnpaid, enum.InvoiceStatusOverdue:
			sum.TotalUnpaid = sum.TotalUnpaid.Add(inv.GrandTotal)
		case enum.InvoiceStatusDraft:
			sum.TotalDrafts++
		}
		if pastDue(inv, now) {
			sum.PastDue++
		}
	}
	return sum
}

func pastDue(inv *entity.Invoice, now time.Time) bool {
	if inv.Status != enum.InvoiceStatusUnpaid {
		return false
	}
	return now.Format(dateLayout) > inv.DueDate
}
