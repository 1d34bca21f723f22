package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid session")
	ErrTokenGeneration = errors.New("failed to generate session token")
	ErrUnknownStore    = errors.New("unknown session store")
	ErrStoreFailure    = errors.New("session store failure")
)
