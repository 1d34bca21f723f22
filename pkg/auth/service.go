package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/sanitizer"
	"github.com/dmitrymomot/noticeboard/pkg/validator"
)

// Service resolves identities and runs local registration and login.
type Service struct {
	storage Storage
	log     *slog.Logger
	cost    int
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBcryptCost sets the cost used by Register.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		log:     logger.Discard(),
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("auth"))
	return s
}

// ResolveOrCreate returns the user bound to (a.Provider, a.ProviderID),
// creating it on first sight. An existing user is returned unchanged. When a
// concurrent call wins the insert race, the winner's record is returned.
func (s *Service) ResolveOrCreate(ctx context.Context, a Assertion) (*User, error) {
	if err := validator.Apply(
		validator.Rule{
			Check: a.Provider.Valid,
			Error: validator.ValidationError{Field: "provider", Message: "unknown provider"},
		},
		validator.RequiredString("provider_id", a.ProviderID),
	); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByProvider(ctx, a.Provider, a.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	user = s.newUser(a)
	err = s.storage.CreateUser(ctx, user)
	switch {
	case err == nil:
		s.log.InfoContext(ctx, "user created", logger.UserID(user.ID), logger.Provider(string(user.Provider)))
		return user, nil
	case errors.Is(err, ErrProviderIDTaken):
		winner, lookupErr := s.storage.GetUserByProvider(ctx, a.Provider, a.ProviderID)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to load concurrently created identity: %w", lookupErr)
		}
		return winner, nil
	case errors.Is(err, ErrDuplicateIdentity):
		s.log.WarnContext(ctx, "email owned by another identity", logger.Provider(string(a.Provider)))
		return nil, err
	default:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
}

// Register creates a local account whose login identifier is its email.
func (s *Service) Register(ctx context.Context, identifier, password string) (*User, error) {
	email := sanitizer.NormalizeEmail(identifier)
	if err := validateCredentials(email, password, true); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := Hash(password, s.cost)
	if err != nil {
		return nil, err
	}

	user := s.newUser(Assertion{
		Provider:     ProviderLocal,
		ProviderID:   email,
		Name:         email,
		Email:        email,
		PasswordHash: hash,
	})
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrProviderIDTaken) || errors.Is(err, ErrDuplicateIdentity) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(user.ID), logger.Provider(string(ProviderLocal)))
	return user, nil
}

// Authenticate checks local credentials. Every failure matches
// ErrAuthenticationFailed except validation errors and storage failures.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	email := sanitizer.NormalizeEmail(identifier)
	if err := validateCredentials(email, password, false); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Provider != ProviderLocal {
		return nil, &AccountProviderMismatchError{Provider: user.Provider}
	}
	if user.PasswordHash == "" {
		return nil, ErrNoPasswordSet
	}
	if !Verify(password, user.PasswordHash) {
		s.log.DebugContext(ctx, "password mismatch", logger.UserID(user.ID))
		return nil, ErrInvalidPassword
	}
	return user, nil
}

// UserByID loads a user for an established session.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.storage.GetUserByID(ctx, id)
}

func (s *Service) newUser(a Assertion) *User {
	now := s.now().UTC()
	u := &User{
		ID:           uuid.New(),
		Provider:     a.Provider,
		ProviderID:   a.ProviderID,
		Name:         displayName(a),
		Avatar:       strings.TrimSpace(a.Avatar),
		PasswordHash: a.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if email := sanitizer.NormalizeEmail(a.Email); email != "" {
		u.Email = &email
	}
	return u
}

// displayName falls back to the email's local part, then to a generic label.
func displayName(a Assertion) string {
	if name := sanitizer.NormalizeWhitespace(a.Name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(sanitizer.NormalizeEmail(a.Email), "@"); ok && local != "" {
		return local
	}
	return string(a.Provider) + " user"
}

func validateCredentials(email, password string, registering bool) error {
	rules := []validator.Rule{
		validator.RequiredString("username", email),
	}
	if registering {
		rules = append(rules, validator.ValidEmail("username", email))
	}
	rules = append(rules,
		validator.RequiredString("password", password),
		validator.Rule{
			Check: func() bool { return len(password) <= maxPasswordBytes },
			Error: validator.ValidationError{Field: "password", Message: "must be at most 72 bytes long"},
		},
	)
	return validator.Apply(rules...)
}
