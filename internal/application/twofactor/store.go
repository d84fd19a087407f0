package twofactor

import (
	"context"
	"time"

	"github.com/news-api/internal/domain"
)

// Store holds at most one outstanding code per identity. Implementations
// synchronise internally; operations on one identity are linearizable and
// operations on different identities are independent.
type Store interface {
	// Put stores code for identity with expiry now+ttl, replacing any
	// previous record.
	Put(ctx context.Context, identity, code string, ttl time.Duration) error
	// Get returns the current record without checking expiry. It returns
	// domain.ErrNotFound when there is none.
	Get(ctx context.Context, identity string) (*domain.VerificationRecord, error)
	// Remove deletes the record for identity. Absent records are not an error.
	Remove(ctx context.Context, identity string) error
	// RemoveIfMatch deletes the record for rec.Identity only while it still
	// carries rec's code and expiry, and reports whether it did.
	RemoveIfMatch(ctx context.Context, rec *domain.VerificationRecord) (bool, error)
}
