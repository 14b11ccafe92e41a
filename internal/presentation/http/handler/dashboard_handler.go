package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	store *service.Store
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(store *service.Store) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// GetStats returns the invoice summary figures
func (h *DashboardHandler) GetStats(c *gin.Context) {
	response.OK(c, "Dashboard stats retrieved successfully", h.store.Summary(c.Request.Context()))
}
