package auth_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

// memoryStorage enforces the same uniqueness rules as the Mongo storage.
type memoryStorage struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
	// creates counts successful inserts
	creates int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{users: make(map[uuid.UUID]*auth.User)}
}

func (s *memoryStorage) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Provider == u.Provider && existing.ProviderID == u.ProviderID {
			return auth.ErrProviderIDTaken
		}
		if u.Email != nil && existing.Email != nil && strings.EqualFold(*existing.Email, *u.Email) {
			return auth.ErrEmailTaken
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	s.creates++
	return nil
}

func (s *memoryStorage) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, auth.ErrNotFound
}

func (s *memoryStorage) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *memoryStorage) GetUserByProvider(_ context.Context, p auth.Provider, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Provider == p && u.ProviderID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *memoryStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type MockProviderAdapter struct {
	mock.Mock
}

func (m *MockProviderAdapter) Provider() auth.Provider {
	args := m.Called()
	return args.Get(0).(auth.Provider)
}

func (m *MockProviderAdapter) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProviderAdapter) ResolveProfile(ctx context.Context, code string) (auth.Profile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.Profile), args.Error(1)
}

type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) ResolveOrCreate(ctx context.Context, a auth.Assertion) (*auth.User, error) {
	args := m.Called(ctx, a)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}
