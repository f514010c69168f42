// Package idempotency defines the storage port behind the X-Idempotency-Key
// protection of form submissions.
package idempotency

import (
	"context"
	"time"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may stay unanswered before another
// request is allowed to reclaim it.
const StaleAfter = time.Minute

// Replay is the cached HTTP response of a completed operation.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller now owns the key,
	// a Replay when the operation already completed, or an error when the key
	// is in flight or was used for a different request.
	AcquireKey(ctx context.Context, key, operation, requestHash string) (*Replay, error)

	// CompleteKey stores a successful response for replay.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// FailKey stores an error response for replay.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// ReleaseKey forgets a key so the next request with it runs again.
	// Used for retryable failures such as an unreachable store.
	ReleaseKey(ctx context.Context, key string) error
}

// NormalizeStatus defaults a missing stored status to 200.
func NormalizeStatus(status int) int {
	if status == 0 {
		return 200
	}
	return status
}

// NormalizeContentType defaults a missing stored content type to JSON.
func NormalizeContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}
