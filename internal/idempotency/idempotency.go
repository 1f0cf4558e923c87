// Package idempotency lets clients retry a create call safely. The first
// request under a key reserves it; once it succeeds the stored response is
// replayed to every retry for the rest of the TTL.
package idempotency

import (
	"context"
	"errors"
	"time"
)

const DefaultTTL = 24 * time.Hour

var ErrInProgress = errors.New("idempotency key is already being processed")

const (
	statusProcessing = "processing"
	statusSuccess    = "success"
)

// Response is the stored outcome of a completed request.
type Response struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

type Store interface {
	// Reserve claims key. It returns the stored response when the key already
	// completed, ErrInProgress when another request holds it, and nil, nil when
	// the caller now owns the key.
	Reserve(ctx context.Context, key string) (*Response, error)
	// Complete stores the response for replay.
	Complete(ctx context.Context, key string, resp Response) error
	// Release forgets the key so the client may retry after a failure.
	Release(ctx context.Context, key string) error
}
