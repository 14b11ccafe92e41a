package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
)

// SettingsHandler serves the company profile
type SettingsHandler struct {
	store *service.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *service.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetCompanyProfile returns the profile, or 404 until one has been saved
func (h *SettingsHandler) GetCompanyProfile(c *gin.Context) {
	profile := h.store.GetCompanyProfile(c.Request.Context())
	if profile == nil {
		response.NotFound(c, "Company profile")
		return
	}

	response.OK(c, "Company profile retrieved successfully", profile)
}

// SetCompanyProfile replaces the company profile
func (h *SettingsHandler) SetCompanyProfile(c *gin.Context) {
	var req entity.CompanyProfile
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.store.SetCompanyProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company profile saved successfully", profile)
}
