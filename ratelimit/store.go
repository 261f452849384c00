package ratelimit

import (
	"context"
	"time"
)

// Entry is the per-key window state.
type Entry struct {
	// Limit is the maximum number of requests in the window.
	Limit int `json:"limit"`
	// Used is the number of requests counted so far.
	Used int `json:"used"`
	// ResetAt marks the end of the current window.
	ResetAt time.Time `json:"reset_at"`
}

// Remaining returns how many requests are left in the window, never negative.
func (e *Entry) Remaining() int {
	if r := e.Limit - e.Used; r > 0 {
		return r
	}
	return 0
}

// Expired reports whether the window has lapsed at now. An expired entry is
// treated as absent by every store.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ResetAt)
}

// Store abstracts the window-entry backend. The reference implementation is
// MemoryStore; RedisStore satisfies the same contract against a shared
// backend.
type Store interface {
	// Get returns the live entry for key, or nil if absent or expired.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set stores an entry for key, replacing any existing one.
	Set(ctx context.Context, key string, e *Entry) error
	// Increment counts one request against key, starting a fresh window
	// with the given limit and length when the key is absent or expired.
	// It returns the entry after the increment.
	Increment(ctx context.Context, key string, limit int, window time.Duration) (*Entry, error)
	// Reset removes the entry for key.
	Reset(ctx context.Context, key string) error
}
