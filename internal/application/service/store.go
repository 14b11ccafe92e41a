package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/utils"
	"go.uber.org/zap"
)

// Store owns the ledger collections and the invoice number counter. Every
// mutation is written through to the key-value store before the in-memory
// state changes, so a failed write leaves the Store exactly as it was.
type Store struct {
	mu       sync.Mutex
	kv       repository.KeyValueStore
	clock    clock.Clock
	log      *zap.Logger
	validate *validator.Validate

	profile    *entity.CompanyProfile
	clients    []entity.Client
	items      []entity.StockItem
	invoices   []entity.Invoice
	lastSuffix int
}

// NewStore creates an empty Store. Call Load to read persisted state.
func NewStore(kv repository.KeyValueStore, clk clock.Clock, log *zap.Logger) *Store {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:       kv,
		clock:    clk,
		log:      log.Named("store"),
		validate: newValidator(),
	}
}

var permanentNumber = regexp.MustCompile(`^` + utils.InvoiceNumberPrefix + `-\d{4}-(\d+)$`)

// Load replaces in-memory state with the persisted documents. Absent keys
// yield empty collections. Invoices written before numbering was tracked are
// normalized: non-Draft invoices are marked finalized, Drafts get a
// provisional number, and the counter is raised past the highest suffix
// held by a finalized invoice.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		profile  *entity.CompanyProfile
		clients  []entity.Client
		items    []entity.StockItem
		invoices []entity.Invoice
		suffix   int
	)
	docs := []struct {
		key  string
		dest any
	}{
		{repository.KeyCompanyProfile, &profile},
		{repository.KeyClients, &clients},
		{repository.KeyStockItems, &items},
		{repository.KeyInvoices, &invoices},
		{repository.KeyLastInvoiceNumberSuffix, &suffix},
	}
	for _, doc := range docs {
		raw, ok, err := s.kv.Get(ctx, doc.key)
		if err != nil {
			return apperror.NewPersistenceError(err)
		}
		if !ok || len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, doc.dest); err != nil {
			return fmt.Errorf("decode %s: %w", doc.key, err)
		}
	}

	for i := range invoices {
		inv := &invoices[i]
		switch {
		case inv.IsFinalized:
		case !inv.Status.IsDraft():
			inv.IsFinalized = true
		default:
			// Old drafts were numbered without advancing the counter, so the
			// number may already belong to another invoice.
			if !utils.IsProvisionalInvoiceNumber(inv.InvoiceNumber) {
				s.log.Debug("draft number released",
					zap.String("invoice_id", inv.ID),
					zap.String("invoice_number", inv.InvoiceNumber))
				inv.InvoiceNumber = utils.ProvisionalInvoiceNumber(inv.ID)
			}
			continue
		}
		if m := permanentNumber.FindStringSubmatch(inv.InvoiceNumber); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > suffix {
				s.log.Warn("counter behind stored invoice numbers",
					zap.Int("stored_suffix", suffix),
					zap.String("invoice_number", inv.InvoiceNumber))
				suffix = n
			}
		}
	}

	s.profile = profile
	s.clients = nonNil(clients)
	s.items = nonNil(items)
	s.invoices = nonNil(invoices)
	s.lastSuffix = suffix

	s.log.Info("ledger loaded",
		zap.Bool("has_company_profile", profile != nil),
		zap.Int("clients", len(s.clients)),
		zap.Int("items", len(s.items)),
		zap.Int("invoices", len(s.invoices)),
		zap.Int("last_invoice_suffix", suffix))
	return nil
}

// persist writes every document in one atomic step. A failure is logged as
// a durability warning and returned as PersistenceUnavailable.
func (s *Store) persist(ctx context.Context, docs map[string]any) error {
	entries := make(map[string][]byte, len(docs))
	keys := make([]string, 0, len(docs))
	for key, v := range docs {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = raw
		keys = append(keys, key)
	}

	if err := s.kv.SetMany(ctx, entries); err != nil {
		s.log.Warn("durable write failed; change not applied",
			zap.Strings("keys", keys),
			zap.Error(err))
		return apperror.NewPersistenceError(err)
	}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func indexByID[T any](list []T, id string, idOf func(*T) string) int {
	for i := range list {
		if idOf(&list[i]) == id {
			return i
		}
	}
	return -1
}

// replaced returns a copy of list with element i swapped for v
func replaced[T any](list []T, i int, v T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[i] = v
	return out
}

// without returns a copy of list with element i removed
func without[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// appended returns a copy of list with v at the end
func appended[T any](list []T, v T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}
