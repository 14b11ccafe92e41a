package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/config"
	domainRepo "github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/internal/presentation/http/handler"
	"github.com/sangkips/invoicely/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Settings  *handler.SettingsHandler
	Customer  *handler.CustomerHandler
	Product   *handler.ProductHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             *zap.Logger
	Clock           clock.Clock
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is optional; nil disables per-IP limiting
	RateLimiter *middleware.IPRateLimiter
}

// IdempotencyConfig is the middleware configuration derived from deps
func (d *Deps) IdempotencyConfig() middleware.IdempotencyConfig {
	return middleware.IdempotencyConfig{
		Repo:  d.IdempotencyRepo,
		Clock: d.Clock,
		TTL:   d.Cfg.Invoice.IdempotencyTTL,
		Log:   d.Log,
	}
}

// NewRateLimiter builds the per-IP limiter from the RATE_LIMIT settings
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.IPRateLimiter {
	if cfg.Requests <= 0 || cfg.Duration <= 0 {
		return nil
	}
	return middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.Requests) / float64(cfg.Duration),
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	if deps.IdempotencyRepo != nil {
		v1.Use(middleware.Idempotency(deps.IdempotencyConfig()))
	}

	registerSettingsRoutes(v1, h)
	registerClientRoutes(v1, h)
	registerItemRoutes(v1, h)
	registerInvoiceRoutes(v1, h)
	v1.GET("/dashboard/summary", h.Dashboard.GetStats)

	return router
}

func registerSettingsRoutes(v1 *gin.RouterGroup, h *Handlers) {
	profile := v1.Group("/company-profile")
	{
		profile.GET("", h.Settings.GetCompanyProfile)
		profile.PUT("", h.Settings.SetCompanyProfile)
	}
}

func registerClientRoutes(v1 *gin.RouterGroup, h *Handlers) {
	clients := v1.Group("/clients")
	{
		clients.GET("", h.Customer.List)
		clients.POST("", h.Customer.Create)
		clients.GET("/:id", h.Customer.Get)
		clients.PUT("/:id", h.Customer.Update)
		clients.DELETE("/:id", h.Customer.Delete)
	}
}

func registerItemRoutes(v1 *gin.RouterGroup, h *Handlers) {
	items := v1.Group("/items")
	{
		items.GET("", h.Product.List)
		items.POST("", h.Product.Create)
		items.GET("/:id", h.Product.Get)
		items.PUT("/:id", h.Product.Update)
		items.DELETE("/:id", h.Product.Delete)
	}
}

func registerInvoiceRoutes(v1 *gin.RouterGroup, h *Handlers) {
	invoices := v1.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/next-number", h.Invoice.NextNumber)
		invoices.GET("/export", h.Invoice.Export)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.PATCH("/:id/status", h.Invoice.UpdateStatus)
		invoices.GET("/:id/payment-link", h.Invoice.PaymentLink)
	}
}
