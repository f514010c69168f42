package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/apperror"
	"aquaplant/internal/core/idempotency"
	"aquaplant/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// Idempotency middleware replays the first response of a form submission
// retried with the same X-Idempotency-Key instead of applying it twice.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			_ = c.Error(apperror.NewValidation("failed to read request body").WithCause(err))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(c.Request.Context(), key, operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
				c.Abort()
				return
			}
			_ = c.Error(apperror.NewStoreUnavailable(err).WithDetail("component", "idempotency"))
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)

		c.Next()
	}
}

// CompleteIdempotency stores a successful response for replay (best-effort).
func CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	finishIdempotency(c, func(s idempotency.Store, key string) error {
		return s.CompleteKey(c.Request.Context(), key, statusCode, contentType, response)
	})
}

// failIdempotency stores an error response for replay (best-effort).
// Server-side failures release the key instead so the client can retry.
func failIdempotency(c *gin.Context, statusCode int, response any) {
	finishIdempotency(c, func(s idempotency.Store, key string) error {
		if statusCode >= http.StatusInternalServerError {
			return s.ReleaseKey(c.Request.Context(), key)
		}
		return s.FailKey(c.Request.Context(), key, statusCode, "application/json", response)
	})
}

func finishIdempotency(c *gin.Context, fn func(s idempotency.Store, key string) error) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return
	}
	store, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return
	}
	s, ok := store.(idempotency.Store)
	if !ok || s == nil {
		return
	}
	if err := fn(s, key); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent response",
			"key", key,
			"error", err,
		)
	}
}

// ReleaseIdempotency forgets the request's key so a retry runs again.
func ReleaseIdempotency(c *gin.Context) {
	finishIdempotency(c, func(s idempotency.Store, key string) error {
		return s.ReleaseKey(c.Request.Context(), key)
	})
}
