package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories"
)

const sessionKeyPrefix = "checkout:session:"

var errSessionKeyRequired = errors.New("session repository: session key is required")

// SessionRepository stores checkout sessions as JSON documents in Redis with a
// sliding TTL so abandoned carts expire on their own.
type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionRepository constructs a Redis backed session repository.
func NewSessionRepository(client *goredis.Client, ttl time.Duration) (*SessionRepository, error) {
	if client == nil {
		return nil, errors.New("session repository: redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session repository: ttl must be positive")
	}
	return &SessionRepository{client: client, ttl: ttl}, nil
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)

// Get loads the session stored under key.
func (r *SessionRepository) Get(ctx context.Context, key string) (domain.CheckoutSession, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.CheckoutSession{}, wrapError("session.get", errSessionKeyRequired)
	}

	raw, err := r.client.Get(ctx, sessionKeyPrefix+key).Bytes()
	if err != nil {
		return domain.CheckoutSession{}, wrapError("session.get", err)
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.CheckoutSession{}, wrapError("session.get", err)
	}
	session.Key = key
	return session, nil
}

// Save writes the session and refreshes its TTL.
func (r *SessionRepository) Save(ctx context.Context, session domain.CheckoutSession) error {
	key := strings.TrimSpace(session.Key)
	if key == "" {
		return wrapError("session.save", errSessionKeyRequired)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return wrapError("session.save", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		return wrapError("session.save", err)
	}
	return nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return wrapError("session.delete", errSessionKeyRequired)
	}
	if err := r.client.Del(ctx, sessionKeyPrefix+key).Err(); err != nil {
		return wrapError("session.delete", err)
	}
	return nil
}
