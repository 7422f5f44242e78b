package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories"
)

// Error implements repositories.RepositoryError for the in-memory store.
type Error struct {
	op       string
	err      error
	notFound bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *Error) Unwrap() error       { return e.err }
func (e *Error) IsNotFound() bool    { return e != nil && e.notFound }
func (e *Error) IsConflict() bool    { return false }
func (e *Error) IsUnavailable() bool { return false }

var errSessionNotFound = errors.New("session not found")

// SessionRepository keeps checkout sessions in process memory. Intended for
// tests and local development without a Redis instance.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.CheckoutSession
}

// NewSessionRepository constructs an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.CheckoutSession)}
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// Get returns a copy of the stored session.
func (r *SessionRepository) Get(_ context.Context, key string) (domain.CheckoutSession, error) {
	key = strings.TrimSpace(key)

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[key]
	if !ok {
		return domain.CheckoutSession{}, &Error{op: "session.get", err: errSessionNotFound, notFound: true}
	}
	return cloneSession(session), nil
}

// Save stores a copy of the session.
func (r *SessionRepository) Save(_ context.Context, session domain.CheckoutSession) error {
	key := strings.TrimSpace(session.Key)
	if key == "" {
		return &Error{op: "session.save", err: errors.New("session key is required")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[key] = cloneSession(session)
	return nil
}

// Delete removes the session if present.
func (r *SessionRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, strings.TrimSpace(key))
	return nil
}

func cloneSession(s domain.CheckoutSession) domain.CheckoutSession {
	dup := s
	if s.Items != nil {
		dup.Items = make([]domain.LineItem, len(s.Items))
		copy(dup.Items, s.Items)
	}
	if s.Voucher != nil {
		voucher := *s.Voucher
		dup.Voucher = &voucher
	}
	if s.Shipping.Quotes != nil {
		dup.Shipping.Quotes = make([]domain.ShippingQuote, len(s.Shipping.Quotes))
		copy(dup.Shipping.Quotes, s.Shipping.Quotes)
	}
	return dup
}
