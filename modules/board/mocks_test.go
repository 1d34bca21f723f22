package board_test

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/modules/board"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

type memoryPosts struct {
	mu    sync.Mutex
	posts []*board.Post
}

func clonePost(p *board.Post) *board.Post {
	cp := *p
	cp.Comments = slices.Clone(p.Comments)
	return &cp
}

func (m *memoryPosts) ListPosts(context.Context) ([]*board.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*board.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		out = append(out, clonePost(m.posts[i]))
	}
	return out, nil
}

func (m *memoryPosts) find(id uuid.UUID) (int, *board.Post) {
	for i, p := range m.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (m *memoryPosts) GetPost(_ context.Context, id uuid.UUID) (*board.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, p := m.find(id); p != nil {
		return clonePost(p), nil
	}
	return nil, board.ErrPostNotFound
}

func (m *memoryPosts) CreatePost(_ context.Context, p *board.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, clonePost(p))
	return nil
}

func (m *memoryPosts) DeletePost(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, p := m.find(id)
	if p == nil {
		return board.ErrPostNotFound
	}
	m.posts = slices.Delete(m.posts, i, i+1)
	return nil
}

func (m *memoryPosts) AddComment(_ context.Context, postID uuid.UUID, c board.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, p := m.find(postID)
	if p == nil {
		return board.ErrPostNotFound
	}
	p.Comments = append(p.Comments, c)
	return nil
}

func (m *memoryPosts) DeleteComment(_ context.Context, postID, commentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, p := m.find(postID)
	if p == nil {
		return board.ErrPostNotFound
	}
	p.Comments = slices.DeleteFunc(p.Comments, func(c board.Comment) bool { return c.ID == commentID })
	return nil
}

type authorMap map[uuid.UUID]*auth.User

func (a authorMap) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*auth.User, error) {
	out := make(map[uuid.UUID]*auth.User)
	for _, id := range ids {
		if u, ok := a[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
