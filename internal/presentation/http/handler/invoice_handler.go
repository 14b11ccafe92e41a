package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/enum"
	"github.com/sangkips/invoicely/internal/infrastructure/export"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicely/pkg/apperror"
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	store    *service.Store
	clock    clock.Clock
	currency string
}

// NewInvoiceHandler creates a new invoice handler. currency is the ISO code
// placed in payment links.
func NewInvoiceHandler(store *service.Store, clk clock.Clock, currency string) *InvoiceHandler {
	if clk == nil {
		clk = clock.New()
	}
	return &InvoiceHandler{store: store, clock: clk, currency: currency}
}

func bindInvoiceFilter(c *gin.Context) (*request.InvoiceListRequest, service.InvoiceFilter, bool) {
	var q request.InvoiceListRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return nil, service.InvoiceFilter{}, false
	}
	q.Validate()

	filter := service.InvoiceFilter{Search: strings.TrimSpace(q.Search)}
	if q.Status != "" {
		status, err := enum.ParseInvoiceStatus(q.Status)
		if err != nil {
			response.Error(c, apperror.NewFieldValidationError("status", err.Error()))
			return nil, filter, false
		}
		filter.Status = status
	}
	return &q, filter, true
}

// List handles listing invoices, newest bill date first
func (h *InvoiceHandler) List(c *gin.Context) {
	q, filter, ok := bindInvoiceFilter(c)
	if !ok {
		return
	}

	result := h.store.ListInvoices(c.Request.Context(), filter, &q.PaginationParams)
	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Create handles creating an invoice from a draft
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.InvoiceDraft
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.store.AddInvoice(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// NextNumber previews the number the next finalized invoice would receive
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	response.OK(c, "Next invoice number", gin.H{
		"invoiceNumber": h.store.PreviewInvoiceNumber(c.Request.Context()),
	})
}

// Export streams the filtered invoice register as an XLSX workbook
func (h *InvoiceHandler) Export(c *gin.Context) {
	_, filter, ok := bindInvoiceFilter(c)
	if !ok {
		return
	}

	buf, err := export.InvoiceRegister(h.store.FilterInvoices(c.Request.Context(), filter))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "invoices-" + h.clock.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// Get handles getting a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice := h.store.GetInvoiceByID(c.Request.Context(), c.Param("id"))
	if invoice == nil {
		response.NotFound(c, "Invoice")
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update replaces an invoice and recomputes its totals
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req entity.Invoice
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	invoice, err := h.store.UpdateInvoice(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// UpdateStatus changes only the invoice status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req request.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.store.MarkInvoiceStatus(c.Request.Context(), c.Param("id"), enum.InvoiceStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice status updated successfully", invoice)
}

// PaymentLink returns the UPI payment link and download names
func (h *InvoiceHandler) PaymentLink(c *gin.Context) {
	details, err := h.store.PaymentDetails(c.Request.Context(), c.Param("id"), h.currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment details retrieved successfully", details)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
