package request

import "github.com/sangkips/invoicely/pkg/pagination"

// ListRequest represents the query parameters shared by list endpoints
type ListRequest struct {
	pagination.PaginationParams
	Search string `form:"search"`
}

// InvoiceListRequest represents invoice list and export filter parameters
type InvoiceListRequest struct {
	ListRequest
	Status string `form:"status"`
}

// UpdateStatusRequest represents an invoice status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
