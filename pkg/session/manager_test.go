package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type userMap struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
}

func (u *userMap) UserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if usr, ok := u.users[id]; ok {
		return usr, nil
	}
	return nil, auth.ErrNotFound
}

func (u *userMap) remove(id uuid.UUID) {
	u.mu.Lock()
	delete(u.users, id)
	u.mu.Unlock()
}

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	mgr   *session.Manager
	store *session.MemoryStore
	users *userMap
	clock *clock
	user  *auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cookies, err := cookie.New(cookie.Config{Secrets: []string{testSecret}})
	require.NoError(t, err)

	clk := &clock{t: time.Now()}
	store := session.NewMemoryStore(0)
	store.SetClock(clk.Now)

	u := &auth.User{ID: uuid.New(), Name: "Mia", Provider: auth.ProviderLocal}
	users := &userMap{users: map[uuid.UUID]*auth.User{u.ID: u}}

	mgr := session.NewManager(store, users, cookies,
		session.WithConfig(session.DefaultConfig()),
		session.WithClock(clk.Now),
	)
	t.Cleanup(func() {
		_ = mgr.Close()
		_ = store.Close()
	})
	return &fixture{mgr: mgr, store: store, users: users, clock: clk, user: u}
}

// sessionCookie returns the session cookie set on rec.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultConfig().CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func (f *fixture) establish(t *testing.T) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := f.mgr.Establish(context.Background(), rec, requestWith(nil), f.user.ID)
	require.NoError(t, err)
	return sessionCookie(t, rec)
}

func TestManager_Establish(t *testing.T) {
	t.Parallel()

	t.Run("issues a one day cookie and resolves the user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
		assert.True(t, c.HttpOnly)

		got := f.mgr.Attach(context.Background(), requestWith(c))
		require.NotNil(t, got)
		assert.Equal(t, f.user.ID, got.ID)
	})

	t.Run("rotates the token carried by the request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		old := f.establish(t)

		rec := httptest.NewRecorder()
		_, err := f.mgr.Establish(context.Background(), rec, requestWith(old), f.user.ID)
		require.NoError(t, err)
		fresh := sessionCookie(t, rec)

		assert.NotEqual(t, old.Value, fresh.Value)
		assert.Nil(t, f.mgr.Attach(context.Background(), requestWith(old)))
		assert.NotNil(t, f.mgr.Attach(context.Background(), requestWith(fresh)))
		assert.Equal(t, 1, f.store.Len())
	})

	t.Run("other devices keep their sessions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		laptop := f.establish(t)
		phone := f.establish(t)

		assert.NotNil(t, f.mgr.Attach(context.Background(), requestWith(laptop)))
		assert.NotNil(t, f.mgr.Attach(context.Background(), requestWith(phone)))
	})
}

func TestManager_Attach(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("never issued", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(nil)))
	})

	t.Run("tampered cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)
		c.Value = "x" + c.Value
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))
	})

	t.Run("unsigned token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := &http.Cookie{Name: session.DefaultConfig().CookieName, Value: strings.Repeat("a", 43)}
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))
	})

	t.Run("destroyed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		rec := httptest.NewRecorder()
		require.NoError(t, f.mgr.Destroy(ctx, rec, requestWith(c)))
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))

		cleared := sessionCookie(t, rec)
		assert.Equal(t, -1, cleared.MaxAge)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		f.clock.Advance(24*time.Hour + time.Second)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))
	})

	t.Run("user deleted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		f.users.remove(f.user.ID)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))
	})
}

func TestManager_SetLifetime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("remember keeps the session for seven days", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		rec := httptest.NewRecorder()
		require.NoError(t, f.mgr.SetLifetime(ctx, rec, requestWith(c), true))
		remembered := sessionCookie(t, rec)
		assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), remembered.MaxAge)

		f.clock.Advance(6 * 24 * time.Hour)
		assert.NotNil(t, f.mgr.Attach(ctx, requestWith(remembered)))

		f.clock.Advance(24*time.Hour + time.Second)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(remembered)))
	})

	t.Run("not remembered issues a browser session cookie", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		rec := httptest.NewRecorder()
		require.NoError(t, f.mgr.SetLifetime(ctx, rec, requestWith(c), false))
		sc := sessionCookie(t, rec)
		assert.Zero(t, sc.MaxAge)
		assert.True(t, sc.Expires.IsZero())

		assert.NotNil(t, f.mgr.Attach(ctx, requestWith(sc)))

		f.clock.Advance(24*time.Hour + time.Second)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(sc)))
	})

	t.Run("turning remember off restores the one day bound", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		c := f.establish(t)

		require.NoError(t, f.mgr.SetLifetime(ctx, httptest.NewRecorder(), requestWith(c), true))
		require.NoError(t, f.mgr.SetLifetime(ctx, httptest.NewRecorder(), requestWith(c), false))

		f.clock.Advance(2 * 24 * time.Hour)
		assert.Nil(t, f.mgr.Attach(ctx, requestWith(c)))
	})

	t.Run("without a session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		err := f.mgr.SetLifetime(ctx, httptest.NewRecorder(), requestWith(nil), true)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		cookies, err := cookie.New(cookie.Config{Secrets: []string{testSecret}})
		require.NoError(t, err)
		store := &failingStore{MemoryStore: session.NewMemoryStore(0), updateErr: errors.New("disk full")}
		users := &userMap{users: map[uuid.UUID]*auth.User{}}
		mgr := session.NewManager(store, users, cookies)
		t.Cleanup(func() { _ = mgr.Close() })

		rec := httptest.NewRecorder()
		_, err = mgr.Establish(ctx, rec, requestWith(nil), uuid.New())
		require.NoError(t, err)

		err = mgr.SetLifetime(ctx, httptest.NewRecorder(), requestWith(sessionCookie(t, rec)), true)
		assert.ErrorIs(t, err, session.ErrStoreFailure)
	})
}

func TestManager_Destroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	c := f.establish(t)

	require.NoError(t, f.mgr.Destroy(ctx, httptest.NewRecorder(), requestWith(c)))
	require.NoError(t, f.mgr.Destroy(ctx, httptest.NewRecorder(), requestWith(c)))
	require.NoError(t, f.mgr.Destroy(ctx, httptest.NewRecorder(), requestWith(nil)))
	assert.Zero(t, f.store.Len())
}

func TestManager_CloseConcurrent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.mgr.Close())
		}()
	}
	wg.Wait()
	assert.NoError(t, f.mgr.Close())
}

type failingStore struct {
	*session.MemoryStore
	updateErr error
}

func (s *failingStore) Update(context.Context, *session.Session) error { return s.updateErr }
