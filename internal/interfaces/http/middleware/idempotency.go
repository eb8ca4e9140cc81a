package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client chosen key of a retryable request
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated request carrying an Idempotency-Key that
// was already accepted. Keys are scoped to the caller and the route. When
// the handler fails (status >= 400) the key is released so the client can
// retry with the same key, unless the failure left a payment applied
// (PARTIAL_COMPLETION): that key stays taken. Requests without the header
// pass through, and a store outage lets the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passThrough
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", getRequestID(c)))
			return
		}

		scoped := "http:" + GetJWTUserID(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request without key",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyConflict,
				"A request with this Idempotency-Key was already processed",
				getRequestID(c)))
			return
		}

		c.Next()

		if releasable(c) {
			// the request may already be gone; the key must still be freed
			if err := cfg.Store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

// releasable reports whether the response left nothing behind that a retry
// with the same key could apply twice
func releasable(c *gin.Context) bool {
	if c.Writer.Status() < http.StatusBadRequest {
		return false
	}
	return c.GetString(dto.ErrorCodeContextKey) != dto.CodePartialCompletion
}
