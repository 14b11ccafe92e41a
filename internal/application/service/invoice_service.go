package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/internal/domain/totals"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/pagination"
	"github.com/sangkips/invoicely/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// InvoiceDraft is the input for a new invoice. Identity, number, snapshots
// and every derived amount are assigned by the Store.
type InvoiceDraft struct {
	BillDate           string             `json:"billDate" validate:"omitempty,datetime=2006-01-02"`
	DueDate            string             `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	ClientID           string             `json:"clientId" validate:"required"`
	Items              []LineDraft        `json:"items"`
	DiscountType       enum.DiscountType  `json:"discountType"`
	DiscountValue      decimal.Decimal    `json:"discountValue"`
	TermsAndConditions string             `json:"termsAndConditions"`
	Notes              string             `json:"notes"`
	Status             enum.InvoiceStatus `json:"status"`
}

// LineDraft is one requested invoice line. Fields left nil (or an empty
// name) take the catalog entry's values; set fields override the catalog.
type LineDraft struct {
	StockItemID string           `json:"stockItemId"`
	ItemName    string           `json:"itemName"`
	Description *string          `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	TaxRate     *enum.TaxRate    `json:"taxRate"`
}

// InvoiceFilter narrows ListInvoices and FilterInvoices
type InvoiceFilter struct {
	// Search matches invoice number, client name or grand total
	Search string
	Status enum.InvoiceStatus
}

func invoiceID(inv *entity.Invoice) string { return inv.ID }

// AddInvoice creates an invoice from a draft. It requires a company profile
// and an existing client. A non-Draft invoice receives the next permanent
// number; a Draft gets a provisional one and consumes nothing.
func (s *Store) AddInvoice(ctx context.Context, draft InvoiceDraft) (*entity.Invoice, error) {
	if draft.Status == "" {
		draft.Status = enum.InvoiceStatusDraft
	}
	if !draft.Status.Valid() {
		return nil, apperror.NewFieldValidationError("status", "unknown invoice status")
	}
	if err := s.validateStruct(&draft); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil, apperror.ErrCompanyProfile
	}
	ci := indexByID(s.clients, draft.ClientID, clientID)
	if ci < 0 {
		return nil, apperror.NewNotFoundError("Client")
	}

	lines := make([]entity.InvoiceLineItem, len(draft.Items))
	for i, d := range draft.Items {
		line, err := s.resolveLine(d)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}

	today := s.clock.Now().Format(dateLayout)
	inv := entity.Invoice{
		ID:                     utils.NewID(),
		BillDate:               orDefault(draft.BillDate, today),
		DueDate:                orDefault(draft.DueDate, today),
		ClientID:               draft.ClientID,
		ClientDetails:          s.clients[ci].Snapshot(),
		Items:                  lines,
		DiscountType:           draft.DiscountType,
		DiscountValue:          draft.DiscountValue,
		TermsAndConditions:     orDefault(draft.TermsAndConditions, s.profile.TermsAndConditions),
		Notes:                  draft.Notes,
		Status:                 draft.Status,
		CompanyProfileSnapshot: s.profile.Snapshot(),
	}
	if err := s.validateInvoice(&inv); err != nil {
		return nil, err
	}
	if err := totals.Recompute(&inv); err != nil {
		return nil, err
	}
	suffix := s.assignNumber(&inv)

	next := appended(s.invoices, inv)
	if err := s.commitInvoices(ctx, next, suffix); err != nil {
		return nil, err
	}
	s.log.Info("invoice added",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("status", inv.Status.String()))
	return inv.Clone(), nil
}

// UpdateInvoice replaces a stored invoice and recomputes every derived
// field. Snapshots come from the caller, then the stored invoice, then the
// live records; a changed client id always takes a fresh client snapshot.
// The number only changes when this update is the first finalization.
func (s *Store) UpdateInvoice(ctx context.Context, inv entity.Invoice) (*entity.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil, apperror.ErrCompanyProfile
	}
	ii := indexByID(s.invoices, inv.ID, invoiceID)
	if ii < 0 {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	ci := indexByID(s.clients, inv.ClientID, clientID)
	if ci < 0 {
		return nil, apperror.NewNotFoundError("Client")
	}
	stored := s.invoices[ii]

	updated := *inv.Clone()
	if updated.Status == "" {
		updated.Status = stored.Status
	}
	if !updated.Status.Valid() {
		return nil, apperror.NewFieldValidationError("status", "unknown invoice status")
	}
	updated.InvoiceNumber = stored.InvoiceNumber
	updated.IsFinalized = stored.IsFinalized

	switch {
	case updated.ClientID != stored.ClientID:
		updated.ClientDetails = s.clients[ci].Snapshot()
	case updated.ClientDetails == nil && stored.ClientDetails != nil:
		updated.ClientDetails = stored.ClientDetails.Snapshot()
	case updated.ClientDetails == nil:
		updated.ClientDetails = s.clients[ci].Snapshot()
	}
	switch {
	case updated.CompanyProfileSnapshot != nil:
	case stored.CompanyProfileSnapshot != nil:
		updated.CompanyProfileSnapshot = stored.CompanyProfileSnapshot.Snapshot()
	default:
		updated.CompanyProfileSnapshot = s.profile.Snapshot()
	}

	if err := s.validateInvoice(&updated); err != nil {
		return nil, err
	}
	if err := totals.Recompute(&updated); err != nil {
		return nil, err
	}
	suffix := s.assignNumber(&updated)

	next := replaced(s.invoices, ii, updated)
	if err := s.commitInvoices(ctx, next, suffix); err != nil {
		return nil, err
	}
	s.log.Info("invoice updated",
		zap.String("invoice_id", updated.ID),
		zap.String("invoice_number", updated.InvoiceNumber))
	return updated.Clone(), nil
}

// DeleteInvoice removes the invoice. Unknown ids are ignored.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.invoices, id, invoiceID)
	if i < 0 {
		return nil
	}
	next := without(s.invoices, i)
	if err := s.persist(ctx, map[string]any{repository.KeyInvoices: next}); err != nil {
		return err
	}
	s.invoices = next
	s.log.Info("invoice deleted", zap.String("invoice_id", id))
	return nil
}

// MarkInvoiceStatus changes only the status. Leaving Draft for the first
// time assigns the permanent number.
func (s *Store) MarkInvoiceStatus(ctx context.Context, id string, status enum.InvoiceStatus) (*entity.Invoice, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldValidationError("status", "unknown invoice status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.invoices, id, invoiceID)
	if i < 0 {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	updated := *s.invoices[i].Clone()
	previous := updated.Status
	updated.Status = status
	suffix := s.assignNumber(&updated)

	next := replaced(s.invoices, i, updated)
	if err := s.commitInvoices(ctx, next, suffix); err != nil {
		return nil, err
	}
	s.log.Info("invoice status changed",
		zap.String("invoice_id", id),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
		zap.String("invoice_number", updated.InvoiceNumber))
	return updated.Clone(), nil
}

// GetInvoiceByID returns a copy of the invoice, or nil when absent
func (s *Store) GetInvoiceByID(_ context.Context, id string) *entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.invoices, id, invoiceID); i >= 0 {
		return s.invoices[i].Clone()
	}
	return nil
}

// FilterInvoices returns every matching invoice, newest bill date first
func (s *Store) FilterInvoices(_ context.Context, filter InvoiceFilter) []entity.Invoice {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.Lock()
	matched := make([]entity.Invoice, 0, len(s.invoices))
	for i := range s.invoices {
		inv := &s.invoices[i]
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if needle != "" && !matchesInvoice(inv, needle) {
			continue
		}
		matched = append(matched, *inv.Clone())
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].BillDate > matched[j].BillDate
	})
	return matched
}

// ListInvoices is FilterInvoices with page-based pagination
func (s *Store) ListInvoices(ctx context.Context, filter InvoiceFilter, params *pagination.PaginationParams) *pagination.PaginatedResult[entity.Invoice] {
	page, meta := pagination.Paginate(s.FilterInvoices(ctx, filter), params)
	return pagination.NewPaginatedResult(page, meta)
}

// PreviewInvoiceNumber returns the number the next finalization would
// receive without consuming it
func (s *Store) PreviewInvoiceNumber(_ context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.FormatInvoiceNumber(s.clock.Now().Year(), s.lastSuffix+1)
}

// assignNumber is the single numbering choke point. Finalized invoices keep
// their number; Drafts carry a provisional number; the first non-Draft save
// takes the next suffix. It returns the counter value to persist.
func (s *Store) assignNumber(inv *entity.Invoice) int {
	switch {
	case inv.IsFinalized:
		return s.lastSuffix
	case inv.Status.IsDraft():
		inv.InvoiceNumber = utils.ProvisionalInvoiceNumber(inv.ID)
		return s.lastSuffix
	}
	next := s.lastSuffix + 1
	inv.InvoiceNumber = utils.FormatInvoiceNumber(s.clock.Now().Year(), next)
	inv.IsFinalized = true
	return next
}

// commitInvoices writes the invoice collection, together with the counter
// when it advanced, and swaps both in on success.
func (s *Store) commitInvoices(ctx context.Context, invoices []entity.Invoice, suffix int) error {
	docs := map[string]any{repository.KeyInvoices: invoices}
	if suffix != s.lastSuffix {
		docs[repository.KeyLastInvoiceNumberSuffix] = suffix
	}
	if err := s.persist(ctx, docs); err != nil {
		return err
	}
	s.invoices = invoices
	s.lastSuffix = suffix
	return nil
}

// resolveLine fills omitted draft fields from the catalog
func (s *Store) resolveLine(d LineDraft) (entity.InvoiceLineItem, error) {
	var catalog *entity.StockItem
	if d.StockItemID != "" {
		if i := indexByID(s.items, d.StockItemID, stockItemID); i >= 0 {
			catalog = &s.items[i]
		}
	}
	if catalog == nil && d.StockItemID != "" && (d.ItemName == "" || d.UnitPrice == nil || d.TaxRate == nil) {
		return entity.InvoiceLineItem{}, apperror.NewNotFoundError("Stock item")
	}

	line := entity.InvoiceLineItem{
		StockItemID: d.StockItemID,
		ItemName:    d.ItemName,
		Quantity:    d.Quantity,
	}
	if catalog != nil {
		if line.ItemName == "" {
			line.ItemName = catalog.Name
		}
		line.Description = catalog.Description
		line.UnitPrice = catalog.UnitPrice
		line.TaxRate = catalog.TaxRate
	}
	if d.Description != nil {
		line.Description = *d.Description
	}
	if d.UnitPrice != nil {
		line.UnitPrice = *d.UnitPrice
	}
	if d.TaxRate != nil {
		line.TaxRate = *d.TaxRate
	}
	return line, nil
}

func (s *Store) validateInvoice(inv *entity.Invoice) error {
	return s.validateStruct(inv, "ClientDetails", "CompanyProfileSnapshot")
}

func matchesInvoice(inv *entity.Invoice, needle string) bool {
	if strings.Contains(strings.ToLower(inv.InvoiceNumber), needle) {
		return true
	}
	if inv.ClientDetails != nil && strings.Contains(strings.ToLower(inv.ClientDetails.Name), needle) {
		return true
	}
	return strings.Contains(inv.GrandTotal.String(), needle)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
