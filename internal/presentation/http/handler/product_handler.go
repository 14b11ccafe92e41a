package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
)

// ProductHandler handles stock item HTTP requests
type ProductHandler struct {
	store *service.Store
}

// NewProductHandler creates a new stock item handler
func NewProductHandler(store *service.Store) *ProductHandler {
	return &ProductHandler{store: store}
}

// List handles listing stock items
func (h *ProductHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	result := h.store.ListItems(c.Request.Context(), &q.PaginationParams, q.Search)
	response.SuccessWithPagination(c, http.StatusOK, "Items retrieved successfully", result)
}

// Create handles creating a stock item
func (h *ProductHandler) Create(c *gin.Context) {
	var req entity.StockItem
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.store.AddItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item created successfully", item)
}

// Get handles getting a single stock item
func (h *ProductHandler) Get(c *gin.Context) {
	item := h.store.GetItemByID(c.Request.Context(), c.Param("id"))
	if item == nil {
		response.NotFound(c, "Stock item")
		return
	}

	response.OK(c, "Item retrieved successfully", item)
}

// Update handles replacing a stock item
func (h *ProductHandler) Update(c *gin.Context) {
	var req entity.StockItem
	if !bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	item, err := h.store.UpdateItem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.NotFound(c, "Stock item")
		return
	}

	response.OK(c, "Item updated successfully", item)
}

// Delete handles deleting a stock item
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
