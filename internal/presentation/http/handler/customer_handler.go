package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
)

// CustomerHandler handles client-related HTTP requests
type CustomerHandler struct {
	store *service.Store
}

// NewCustomerHandler creates a new client handler
func NewCustomerHandler(store *service.Store) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// List handles listing clients with page-based pagination and search
func (h *CustomerHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	result := h.store.ListClients(c.Request.Context(), &q.PaginationParams, q.Search)
	response.SuccessWithPagination(c, http.StatusOK, "Clients retrieved successfully", result)
}

// Create handles creating a client
func (h *CustomerHandler) Create(c *gin.Context) {
	var req entity.Client
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.store.AddClient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Get handles getting a single client
func (h *CustomerHandler) Get(c *gin.Context) {
	client := h.store.GetClientByID(c.Request.Context(), c.Param("id"))
	if client == nil {
		response.NotFound(c, "Client")
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Update replaces a client. Existing invoices keep their snapshot.
func (h *CustomerHandler) Update(c *gin.Context) {
	var req entity.Client
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	client, err := h.store.UpdateClient(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if client == nil {
		response.NotFound(c, "Client")
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
