package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderFacebook:
		return true
	}
	return false
}

// User is a persisted identity. PasswordHash is set only for local accounts
// and never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	Provider     Provider  `json:"provider" bson:"provider"`
	ProviderID   string    `json:"-" bson:"provider_id"`
	Name         string    `json:"name" bson:"name"`
	Email        *string   `json:"email" bson:"email,omitempty"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// EmailAddress returns the email or "".
func (u *User) EmailAddress() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}

// Assertion is a claim that an identity exists, produced by registration or
// by an OAuth provider.
type Assertion struct {
	Provider     Provider
	ProviderID   string
	Name         string
	Email        string
	Avatar       string
	PasswordHash string
}

// Storage persists users. CreateUser must enforce both uniqueness rules and
// report violations as ErrProviderIDTaken or ErrEmailTaken. Lookups return
// ErrNotFound when nothing matches. Emails are passed already normalized.
type Storage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProvider(ctx context.Context, provider Provider, providerID string) (*User, error)
}
