package session

import (
	"context"
	"time"
)

// Store persists sessions keyed by token. Get returns ErrSessionNotFound for
// unknown or already expired tokens. Delete of a missing token is not an
// error.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	UpdateActivity(ctx context.Context, token string, at time.Time) error
	Delete(ctx context.Context, token string) error
}
