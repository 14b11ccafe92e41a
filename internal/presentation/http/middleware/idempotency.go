package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/internal/logger"
	"github.com/sangkips/invoicely/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency cache
	ReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyTTL is how long keys are valid when no TTL is configured
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo  repository.IdempotencyRepository
	Clock clock.Clock
	TTL   time.Duration
	Log   *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on the same route. A repeat that arrives while the first
// is still running gets 409. Requests without the header, and non-mutating
// methods, pass straight through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	var inFlight sync.Map

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.WithContext(ctx, cfg.Log)
		endpoint := c.Request.Method + " " + c.FullPath()

		slot := endpoint + " " + idempotencyKey
		if _, busy := inFlight.LoadOrStore(slot, struct{}{}); busy {
			c.Header("Retry-After", "1")
			response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still in progress")
			c.Abort()
			return
		}
		defer inFlight.Delete(slot)

		existing, err := cfg.Repo.GetByKey(ctx, idempotencyKey, endpoint)
		if err != nil {
			log.Warn("idempotency lookup failed", zap.String("endpoint", endpoint), zap.Error(err))
			c.Next()
			return
		}

		if existing != nil && !existing.IsExpired(cfg.Clock.Now()) {
			c.Header(ReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		now := cfg.Clock.Now()
		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			CreatedAt:    now,
			ExpiresAt:    now.Add(cfg.TTL),
		}
		if err := cfg.Repo.Create(ctx, ikey); err != nil {
			log.Warn("idempotency key not stored", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}
}

// SweepIdempotencyKeys deletes expired keys on every tick until ctx is done
func SweepIdempotencyKeys(ctx context.Context, cfg IdempotencyConfig, every time.Duration) {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cfg.Repo.DeleteExpired(ctx, cfg.Clock.Now()); err != nil {
				cfg.Log.Warn("idempotency sweep failed", zap.Error(err))
			}
		}
	}
}
