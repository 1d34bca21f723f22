package session

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a token to a user until ExpiresAt.
type Session struct {
	ID             uuid.UUID `json:"id" bson:"session_id"`
	Token          string    `json:"token" bson:"_id"`
	UserID         uuid.UUID `json:"user_id" bson:"user_id"`
	Persistent     bool      `json:"persistent" bson:"persistent"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at" bson:"last_activity_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
