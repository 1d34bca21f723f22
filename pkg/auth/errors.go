package auth

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrAuthenticationFailed)
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrAuthenticationFailed)
	ErrNoPasswordSet   = fmt.Errorf("%w: account has no password", ErrAuthenticationFailed)

	ErrOAuthDenied    = fmt.Errorf("%w: authorization denied by provider", ErrAuthenticationFailed)
	ErrInvalidState   = fmt.Errorf("%w: invalid oauth state", ErrAuthenticationFailed)
	ErrInvalidCode    = fmt.Errorf("%w: invalid oauth code", ErrAuthenticationFailed)
	ErrInvalidProfile = fmt.Errorf("%w: provider profile has no subject", ErrAuthenticationFailed)
)

var (
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrEmailTaken is returned by storage when the email unique constraint is
	// violated.
	ErrEmailTaken = fmt.Errorf("%w: email already in use", ErrDuplicateIdentity)

	// ErrProviderIDTaken is returned by storage when the (provider,
	// provider_id) unique constraint is violated.
	ErrProviderIDTaken = errors.New("provider identity already exists")

	// ErrNotFound is returned by storage lookups that match nothing.
	ErrNotFound = errors.New("user does not exist")
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AccountProviderMismatchError rejects a local login against an account
// created through an OAuth provider.
type AccountProviderMismatchError struct {
	Provider Provider
}

func (e *AccountProviderMismatchError) Error() string {
	return fmt.Sprintf("authentication failed: account was created with %s", e.Provider)
}

func (e *AccountProviderMismatchError) Unwrap() error { return ErrAuthenticationFailed }
