package board

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
)

// Storage persists posts. Mutations of a missing post return ErrPostNotFound.
type Storage interface {
	ListPosts(ctx context.Context) ([]*Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	CreatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, postID uuid.UUID, c Comment) error
	DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error
}

// Authors resolves author summaries; unknown ids are left out of the map.
type Authors interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*auth.User, error)
}
