package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/metrics"
)

// UserLoader is satisfied by *auth.Service.
type UserLoader interface {
	UserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

// Manager runs the session life-cycle over a Store and a signed cookie.
type Manager struct {
	store   Store
	users   UserLoader
	cookies *cookie.Manager
	config  Config
	log     *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time

	activity  chan activityUpdate
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type activityUpdate struct {
	token string
	at    time.Time
}

func NewManager(store Store, users UserLoader, cookies *cookie.Manager, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		users:    users,
		cookies:  cookies,
		config:   DefaultConfig(),
		log:      logger.Discard(),
		metrics:  metrics.Nop{},
		now:      time.Now,
		activity: make(chan activityUpdate, 1000),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))

	go m.activityWorker()

	return m
}

// Establish starts a session for userID. Any session token carried by r is
// revoked first.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	if prev, err := m.token(r); err == nil {
		if err := m.store.Delete(ctx, prev); err != nil {
			m.log.WarnContext(ctx, "failed to revoke previous session", logger.Error(err))
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	s := &Session{
		ID:             uuid.New(),
		Token:          token,
		UserID:         userID,
		ExpiresAt:      now.Add(m.config.TTL),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	m.setCookie(w, token, m.config.TTL)
	m.metrics.SessionEvent(metrics.SessionEstablished)
	m.log.DebugContext(ctx, "session established", logger.UserID(userID))
	return s, nil
}

// Resolve returns the live session carried by r.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.token(r)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.now()) {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Attach returns the user behind r's session, or nil when there is no live
// session or its user no longer exists. It never fails.
func (m *Manager) Attach(ctx context.Context, r *http.Request) *auth.User {
	_, user := m.attach(ctx, r)
	return user
}

func (m *Manager) attach(ctx context.Context, r *http.Request) (*Session, *auth.User) {
	s, err := m.Resolve(ctx, r)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			m.log.WarnContext(ctx, "failed to resolve session", logger.Error(err))
		}
		return nil, nil
	}

	user, err := m.users.UserByID(ctx, s.UserID)
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			m.log.WarnContext(ctx, "failed to load session user", logger.UserID(s.UserID), logger.Error(err))
		}
		return nil, nil
	}

	if m.now().Sub(s.LastActivityAt) >= m.config.ActivityUpdateThreshold {
		m.queueActivity(s.Token)
	}
	return s, user
}

// SetLifetime applies the remember-me choice to r's session.
func (m *Manager) SetLifetime(ctx context.Context, w http.ResponseWriter, r *http.Request, remember bool) error {
	s, err := m.Resolve(ctx, r)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return ErrSessionNotFound
		}
		return errors.Join(ErrStoreFailure, err)
	}

	if remember {
		s.Persistent = true
		s.ExpiresAt = m.now().UTC().Add(m.config.RememberTTL)
		if err := m.store.Update(ctx, s); err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
		m.setCookie(w, s.Token, m.config.RememberTTL)
		m.metrics.SessionEvent(metrics.SessionRemembered)
		return nil
	}

	if s.Persistent {
		s.Persistent = false
		if bound := m.now().UTC().Add(m.config.TTL); s.ExpiresAt.After(bound) {
			s.ExpiresAt = bound
		}
		if err := m.store.Update(ctx, s); err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
	}
	m.setCookie(w, s.Token, 0)
	return nil
}

// Destroy revokes r's session and clears the cookie. Calling it without a
// session only clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, err := m.token(r); err == nil {
		if err := m.store.Delete(ctx, token); err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
		m.metrics.SessionEvent(metrics.SessionDestroyed)
	}
	m.cookies.Delete(w, m.config.CookieName)
	return nil
}

// Close stops the activity worker after flushing queued updates.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	<-m.stopped
	return nil
}

func (m *Manager) token(r *http.Request) (string, error) {
	token, err := m.cookies.GetSigned(r, m.config.CookieName)
	if err != nil || token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	m.cookies.SetSigned(w, m.config.CookieName, token, cookie.WithMaxAge(maxAge))
}

func (m *Manager) queueActivity(token string) {
	select {
	case m.activity <- activityUpdate{token: token, at: m.now().UTC()}:
	default:
		// full: drop, the next request will queue again
	}
}

func (m *Manager) activityWorker() {
	defer close(m.stopped)
	for {
		select {
		case u := <-m.activity:
			m.writeActivity(u)
		case <-m.done:
			for {
				select {
				case u := <-m.activity:
					m.writeActivity(u)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) writeActivity(u activityUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.UpdateActivity(ctx, u.token, u.at); err != nil && !errors.Is(err, ErrSessionNotFound) {
		m.log.Warn("failed to record session activity", logger.Error(err))
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
