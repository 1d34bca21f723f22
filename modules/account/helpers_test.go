package account_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/noticeboard/modules/account"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memoryUsers struct {
	mu    sync.Mutex
	users []*auth.User
}

func (s *memoryUsers) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Provider == u.Provider && e.ProviderID == u.ProviderID {
			return auth.ErrProviderIDTaken
		}
		if u.Email != nil && e.Email != nil && *e.Email == *u.Email {
			return auth.ErrEmailTaken
		}
	}
	cp := *u
	s.users = append(s.users, &cp)
	return nil
}

func (s *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *memoryUsers) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.ID == id })
}

func (s *memoryUsers) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.Email != nil && *u.Email == email })
}

func (s *memoryUsers) GetUserByProvider(_ context.Context, p auth.Provider, id string) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.Provider == p && u.ProviderID == id })
}

// fakeAdapter accepts the code "ok" and returns profile for it.
type fakeAdapter struct {
	provider auth.Provider
	profile  auth.Profile
}

func (a fakeAdapter) Provider() auth.Provider { return a.provider }

func (a fakeAdapter) AuthURL(state string) string {
	return "https://consent.example.com/" + string(a.provider) + "?state=" + state
}

func (a fakeAdapter) ResolveProfile(_ context.Context, code string) (auth.Profile, error) {
	if code != "ok" {
		return auth.Profile{}, auth.ErrInvalidCode
	}
	return a.profile, nil
}

type app struct {
	server  *httptest.Server
	authSvc *auth.Service
}

func newApp(t *testing.T, opts ...account.Option) *app {
	t.Helper()

	cookies, err := cookie.New(cookie.Config{Secrets: []string{testSecret}})
	require.NoError(t, err)

	authSvc := auth.NewService(&memoryUsers{}, auth.WithBcryptCost(bcrypt.MinCost))
	store := session.NewMemoryStore(0)
	sessions := session.NewManager(store, authSvc, cookies)
	t.Cleanup(func() { _ = sessions.Close() })

	google := auth.NewCoordinator(fakeAdapter{
		provider: auth.ProviderGoogle,
		profile:  auth.Profile{Subject: "g-1", Name: "Gina", Email: "gina@example.com"},
	}, authSvc)

	opts = append([]account.Option{account.WithOAuth(google)}, opts...)
	svc := account.NewService(account.Config{FrontendURL: "http://front.example.com"}, authSvc, sessions, cookies, opts...)

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/auth", svc.Handle())
	r.Get("/api/users/me", svc.CurrentUser())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &app{server: srv, authSvc: authSvc}
}

// client returns an HTTP client with a cookie jar that does not follow
// redirects.
func (a *app) client(t *testing.T) *http.Client {
	t.Helper()
	c := a.server.Client()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c.Jar = jar
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func (a *app) postJSON(t *testing.T, c *http.Client, path, body string) *http.Response {
	t.Helper()
	resp, err := c.Post(a.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *app) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
