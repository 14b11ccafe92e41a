package service

import (
	"context"
	"strings"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/pagination"
	"github.com/sangkips/invoicely/pkg/utils"
	"go.uber.org/zap"
)

func stockItemID(item *entity.StockItem) string { return item.ID }

// AddItem stores a new catalog entry under a freshly generated id
func (s *Store) AddItem(ctx context.Context, item entity.StockItem) (*entity.StockItem, error) {
	item.ID = utils.NewID()
	if err := s.validateItem(&item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := appended(s.items, item)
	if err := s.persist(ctx, map[string]any{repository.KeyStockItems: next}); err != nil {
		return nil, err
	}
	s.items = next
	s.log.Info("stock item added", zap.String("item_id", item.ID))
	return &item, nil
}

// UpdateItem replaces the catalog entry with the same id. It is a no-op
// returning nil when the id is unknown. Existing invoice lines keep their
// own copies of name, price and tax rate.
func (s *Store) UpdateItem(ctx context.Context, item entity.StockItem) (*entity.StockItem, error) {
	if item.ID == "" {
		return nil, apperror.NewFieldValidationError("id", "is required")
	}
	if err := s.validateItem(&item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.items, item.ID, stockItemID)
	if i < 0 {
		return nil, nil
	}
	next := replaced(s.items, i, item)
	if err := s.persist(ctx, map[string]any{repository.KeyStockItems: next}); err != nil {
		return nil, err
	}
	s.items = next
	return &item, nil
}

// DeleteItem removes the catalog entry
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.items, id, stockItemID)
	if i < 0 {
		return nil
	}
	next := without(s.items, i)
	if err := s.persist(ctx, map[string]any{repository.KeyStockItems: next}); err != nil {
		return err
	}
	s.items = next
	s.log.Info("stock item deleted", zap.String("item_id", id))
	return nil
}

// GetItemByID returns a copy of the catalog entry, or nil when absent
func (s *Store) GetItemByID(_ context.Context, id string) *entity.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.items, id, stockItemID); i >= 0 {
		item := s.items[i]
		return &item
	}
	return nil
}

// ListItems returns the catalog in insertion order, optionally filtered by
// a case-insensitive match on name or description
func (s *Store) ListItems(_ context.Context, params *pagination.PaginationParams, search string) *pagination.PaginatedResult[entity.StockItem] {
	s.mu.Lock()
	matched := make([]entity.StockItem, 0, len(s.items))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, item := range s.items {
		if needle == "" ||
			strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	s.mu.Unlock()

	page, meta := pagination.Paginate(matched, params)
	return pagination.NewPaginatedResult(page, meta)
}

func (s *Store) validateItem(item *entity.StockItem) error {
	if err := s.validateStruct(item); err != nil {
		return err
	}
	var fieldErrors []apperror.FieldError
	if item.UnitPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "unitPrice", Message: "must not be negative"})
	}
	if !item.TaxRate.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "taxRate", Message: "must be one of 0, 5, 12, 18, 28"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
