package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/config"
	"github.com/sangkips/invoicely/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/internal/infrastructure/export"
	"github.com/sangkips/invoicely/internal/infrastructure/repository"
	"github.com/sangkips/invoicely/internal/presentation/http/handler"
	"github.com/sangkips/invoicely/internal/presentation/http/middleware"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type switchableKV struct {
	domainRepo.KeyValueStore
	mu      sync.Mutex
	failing bool
}

func (s *switchableKV) setFailing(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = on
}

func (s *switchableKV) SetMany(ctx context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errors.New("disk full")
	}
	return s.KeyValueStore.SetMany(ctx, entries)
}

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Kind    string                `json:"kind"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

type testServer struct {
	router *gin.Engine
	kv     *switchableKV
	clock  *clock.FakeClock
}

func newTestServer(t *testing.T, configure ...func(*Deps)) *testServer {
	t.Helper()

	kv := &switchableKV{KeyValueStore: repository.NewMemoryKVStore()}
	clk := clock.NewFakeClock(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))
	store := service.NewStore(kv, clk, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	cfg := &config.Config{
		App:     config.AppConfig{Name: "invoicely"},
		Invoice: config.InvoiceConfig{Currency: "INR", IdempotencyTTL: 24 * time.Hour},
	}
	deps := &Deps{
		Cfg:             cfg,
		Log:             zap.NewNop(),
		Clock:           clk,
		IdempotencyRepo: repository.NewMemoryIdempotencyRepository(),
	}
	for _, fn := range configure {
		fn(deps)
	}

	router := Setup(&Handlers{
		Settings:  handler.NewSettingsHandler(store),
		Customer:  handler.NewCustomerHandler(store),
		Product:   handler.NewProductHandler(store),
		Invoice:   handler.NewInvoiceHandler(store, clk, cfg.Invoice.Currency),
		Dashboard: handler.NewDashboardHandler(store),
	}, deps)

	return &testServer{router: router, kv: kv, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

var profileBody = map[string]any{
	"companyName":        "Sharma Design Studio",
	"address":            "12 MG Road, Pune",
	"contactNumber":      "+91 98200 00000",
	"email":              "accounts@sharma.test",
	"taxId":              "27ABCDE1234F1Z5",
	"upiId":              "sharma@okbank",
	"termsAndConditions": "Payment due within 30 days.",
}

func clientBody(name, email string) map[string]any {
	return map[string]any{
		"name":           name,
		"billingAddress": "1 Residency Rd, Bengaluru",
		"email":          email,
		"phoneNumber":    "080-5550100",
	}
}

// seed stores a profile, a client and a catalog item priced 100 at 18%
func (s *testServer) seed(t *testing.T) (clientID, itemID string) {
	t.Helper()

	rec := s.do(t, http.MethodPut, "/api/v1/company-profile", profileBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var client entity.Client
	rec = s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Acme Corp", "billing@acme.test"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &client)

	var item entity.StockItem
	rec = s.do(t, http.MethodPost, "/api/v1/items", map[string]any{
		"name": "Logo design", "unitPrice": 100, "taxRate": 18,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &item)

	return client.ID, item.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"invoicely"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestCompanyProfileRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/company-profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/company-profile", map[string]any{"companyName": "Only a name"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, string(apperror.KindValidationFailed), env.Kind)
	assert.NotEmpty(t, env.Errors)

	rec = s.do(t, http.MethodPut, "/api/v1/company-profile", profileBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile entity.CompanyProfile
	rec = s.do(t, http.MethodGet, "/api/v1/company-profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &profile)
	assert.Equal(t, entity.DefaultCompanyProfileID, profile.ID)
	assert.Equal(t, "sharma@okbank", profile.UpiID)
}

func TestClientRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Acme Corp", "not-an-email"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Field)

	rec = s.do(t, http.MethodPost, "/api/v1/clients", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, name := range []string{"Acme Corp", "Globex", "Initech"} {
		rec = s.do(t, http.MethodPost, "/api/v1/clients", clientBody(name, "ap@example.test"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var page pagination.PaginatedResult[entity.Client]
	rec = s.do(t, http.MethodGet, "/api/v1/clients?per_page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.True(t, page.Pagination.HasNext)

	rec = s.do(t, http.MethodGet, "/api/v1/clients?search=glob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.Len(t, page.Items, 1)
	globex := page.Items[0]
	assert.Equal(t, "Globex", globex.Name)

	update := clientBody("Globex Corporation", "ap@globex.test")
	var updated entity.Client
	rec = s.do(t, http.MethodPut, "/api/v1/clients/"+globex.ID, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Equal(t, globex.ID, updated.ID)
	assert.Equal(t, "Globex Corporation", updated.Name)

	rec = s.do(t, http.MethodPut, "/api/v1/clients/missing", update)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/clients/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/clients/"+globex.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/clients/"+globex.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/clients/missing", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/items", map[string]any{"name": "Hosting", "unitPrice": 100, "taxRate": 7})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "taxRate", env.Errors[0].Field)

	var item entity.StockItem
	rec = s.do(t, http.MethodPost, "/api/v1/items", map[string]any{"name": "Hosting", "unitPrice": "1200.50", "taxRate": 18})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &item)
	assert.True(t, decimal.RequireFromString("1200.5").Equal(item.UnitPrice))

	rec = s.do(t, http.MethodPut, "/api/v1/items/"+item.ID, map[string]any{"name": "Hosting", "unitPrice": 1300, "taxRate": 18})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/items/missing", map[string]any{"name": "Hosting", "unitPrice": 1, "taxRate": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceRequiresCompanyProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/invoices", map[string]any{"clientId": "c1"})

	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, string(apperror.KindPreconditionFailed), env.Kind)
}

func TestInvoiceLifecycle(t *testing.T) {
	s := newTestServer(t)
	clientID, itemID := s.seed(t)

	var draft entity.Invoice
	rec := s.do(t, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId": clientID,
		"items":    []map[string]any{{"stockItemId": itemID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &draft)
	assert.Equal(t, "Draft", draft.Status.String())
	assert.Regexp(t, `^DRAFT-`, draft.InvoiceNumber)
	assert.Equal(t, "2024-03-15", draft.BillDate)
	assert.Equal(t, "Payment due within 30 days.", draft.TermsAndConditions)
	assert.True(t, decimal.NewFromInt(236).Equal(draft.GrandTotal))

	var next map[string]string
	rec = s.do(t, http.MethodGet, "/api/v1/invoices/next-number", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &next)
	assert.Equal(t, "INV-2024-001", next["invoiceNumber"])

	draft.Items[0].Quantity = decimal.NewFromInt(3)
	var updated entity.Invoice
	rec = s.do(t, http.MethodPut, "/api/v1/invoices/"+draft.ID, draft)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Equal(t, draft.InvoiceNumber, updated.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(354).Equal(updated.GrandTotal))

	var unpaid entity.Invoice
	rec = s.do(t, http.MethodPatch, "/api/v1/invoices/"+draft.ID+"/status", map[string]string{"status": "Unpaid"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &unpaid)
	assert.Equal(t, "INV-2024-001", unpaid.InvoiceNumber)

	rec = s.do(t, http.MethodPatch, "/api/v1/invoices/"+draft.ID+"/status", map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var paid entity.Invoice
	rec = s.do(t, http.MethodPatch, "/api/v1/invoices/"+draft.ID+"/status", map[string]string{"status": "Paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &paid)
	assert.Equal(t, "INV-2024-001", paid.InvoiceNumber)

	var details service.PaymentDetails
	rec = s.do(t, http.MethodGet, "/api/v1/invoices/"+draft.ID+"/payment-link", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &details)
	assert.Equal(t, "upi://pay?pa=sharma@okbank&pn=Sharma%20Design%20Studio&am=354.00&cu=INR&tn=Invoice-INV-2024-001", details.PaymentURL)
	assert.Equal(t, "Invoice-INV-2024-001-Acme_Corp.pdf", details.PDFFilename)

	var summary service.Summary
	rec = s.do(t, http.MethodGet, "/api/v1/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &summary)
	assert.Equal(t, 1, summary.TotalInvoices)
	assert.True(t, decimal.NewFromInt(354).Equal(summary.TotalPaid))

	var page pagination.PaginatedResult[entity.Invoice]
	rec = s.do(t, http.MethodGet, "/api/v1/invoices?status=Paid&search=inv-2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Len(t, page.Items, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/invoices?status=Lost", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/invoices/"+draft.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/invoices/"+draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/invoices/"+draft.ID+"/payment-link", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceExport(t *testing.T) {
	s := newTestServer(t)
	clientID, itemID := s.seed(t)

	rec := s.do(t, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId": clientID,
		"status":   "Unpaid",
		"items":    []map[string]any{{"stockItemId": itemID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/invoices/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoices-2024-03-15.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.RegisterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "INV-2024-001", rows[1][0])
}

func TestPersistenceFailureReturns503(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)
	s.kv.setFailing(true)

	rec := s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Globex", "ap@globex.test"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, string(apperror.KindPersistenceUnavailable), env.Kind)

	s.kv.setFailing(false)
	var page pagination.PaginatedResult[entity.Client]
	rec = s.do(t, http.MethodGet, "/api/v1/clients", nil)
	decode(t, rec, &page)
	assert.Len(t, page.Items, 1)
}

func TestIdempotentCreateIsReplayed(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Acme Corp", "billing@acme.test"),
		middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(middleware.ReplayedHeader))

	second := s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Acme Corp", "billing@acme.test"),
		middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.ReplayedHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())

	var page pagination.PaginatedResult[entity.Client]
	rec := s.do(t, http.MethodGet, "/api/v1/clients", nil)
	decode(t, rec, &page)
	assert.Len(t, page.Items, 1)

	s.clock.Advance(25 * time.Hour)
	third := s.do(t, http.MethodPost, "/api/v1/clients", clientBody("Acme Corp", "billing@acme.test"),
		middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, third.Code)
	assert.Empty(t, third.Header().Get(middleware.ReplayedHeader))
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(&config.RateLimitConfig{Requests: 2, Duration: 60})
	require.NotNil(t, limiter)
	t.Cleanup(limiter.Stop)

	s := newTestServer(t, func(d *Deps) { d.RateLimiter = limiter })

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/v1/clients", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/v1/clients", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	rec = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRateLimiterDisabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(&config.RateLimitConfig{}))
}
