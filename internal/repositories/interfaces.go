package repositories

import (
	"context"

	domain "github.com/tokosetara/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// SessionRepository persists checkout sessions keyed by session key. Sessions
// are read and written whole so every mutation is applied to a fresh copy.
type SessionRepository interface {
	Get(ctx context.Context, key string) (domain.CheckoutSession, error)
	Save(ctx context.Context, session domain.CheckoutSession) error
	Delete(ctx context.Context, key string) error
}
