package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/sanitizer"
	"github.com/dmitrymomot/noticeboard/pkg/validator"
)

const (
	maxTitleLen   = 200
	maxContentLen = 10000
	maxCommentLen = 2000
)

var (
	cleanTitle = sanitizer.Compose(sanitizer.StripControl, sanitizer.NormalizeWhitespace)
	cleanBody  = sanitizer.Compose(sanitizer.StripControl, strings.TrimSpace)
)

type Service struct {
	storage Storage
	authors Authors
	log     *slog.Logger
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

func NewService(storage Storage, authors Authors, opts ...Option) *Service {
	s := &Service{storage: storage, authors: authors, log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("board"))
	return s
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]PostView, error) {
	posts, err := s.storage.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	authors, err := s.loadAuthors(ctx, posts...)
	if err != nil {
		return nil, err
	}
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView(p, authors))
	}
	return views, nil
}

func (s *Service) Create(ctx context.Context, user *auth.User, title, content string) (PostView, error) {
	if err := auth.RequireAuthenticated(user); err != nil {
		return PostView{}, err
	}
	title, content = cleanTitle(title), cleanBody(content)
	if title == "" {
		return PostView{}, ErrTitleRequired
	}
	if err := validator.Apply(
		validator.MaxLenString("title", title, maxTitleLen),
		validator.MaxLenString("content", content, maxContentLen),
	); err != nil {
		return PostView{}, err
	}

	now := s.now().UTC()
	authorID := user.ID
	p := &Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		AuthorID:  &authorID,
		Comments:  []Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreatePost(ctx, p); err != nil {
		return PostView{}, fmt.Errorf("failed to create post: %w", err)
	}
	s.log.InfoContext(ctx, "post created", logger.UserID(user.ID), logger.Resource("post", p.ID))
	return postView(p, map[uuid.UUID]*auth.User{user.ID: user}), nil
}

// Delete removes a post and its comments. Only the author may do it.
func (s *Service) Delete(ctx context.Context, user *auth.User, id uuid.UUID) error {
	if err := auth.RequireAuthenticated(user); err != nil {
		return err
	}
	p, err := s.storage.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnership(user, p.AuthorID); err != nil {
		return err
	}
	if err := s.storage.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "post deleted", logger.UserID(user.ID), logger.Resource("post", id))
	return nil
}

// Comments returns the thread of a post, oldest first.
func (s *Service) Comments(ctx context.Context, postID uuid.UUID) ([]CommentView, error) {
	p, err := s.storage.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	authors, err := s.loadAuthors(ctx, p)
	if err != nil {
		return nil, err
	}
	return commentViews(p.Comments, authors), nil
}

// AddComment appends a comment and returns the updated thread.
func (s *Service) AddComment(ctx context.Context, user *auth.User, postID uuid.UUID, content string) ([]CommentView, error) {
	if err := auth.RequireAuthenticated(user); err != nil {
		return nil, err
	}
	content = cleanBody(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if err := validator.Apply(validator.MaxLenString("content", content, maxCommentLen)); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	authorID := user.ID
	c := Comment{ID: uuid.New(), Content: content, AuthorID: &authorID, CreatedAt: now, UpdatedAt: now}
	if err := s.storage.AddComment(ctx, postID, c); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "comment added", logger.UserID(user.ID), logger.Resource("post", postID))
	return s.Comments(ctx, postID)
}

// DeleteComment removes a comment. Only the comment's author may do it.
func (s *Service) DeleteComment(ctx context.Context, user *auth.User, postID, commentID uuid.UUID) error {
	if err := auth.RequireAuthenticated(user); err != nil {
		return err
	}
	p, err := s.storage.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	c := p.comment(commentID)
	if c == nil {
		return ErrCommentNotFound
	}
	if err := auth.RequireOwnership(user, c.AuthorID); err != nil {
		return err
	}
	return s.storage.DeleteComment(ctx, postID, commentID)
}

func (s *Service) loadAuthors(ctx context.Context, posts ...*Post) (map[uuid.UUID]*auth.User, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id *uuid.UUID) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; !ok {
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}
	for _, p := range posts {
		add(p.AuthorID)
		for i := range p.Comments {
			add(p.Comments[i].AuthorID)
		}
	}
	authors, err := s.authors.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	return authors, nil
}

func postView(p *Post, authors map[uuid.UUID]*auth.User) PostView {
	return PostView{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Content,
		Author:    authorOf(p.AuthorID, authors, true),
		Comments:  commentViews(p.Comments, authors),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func commentViews(comments []Comment, authors map[uuid.UUID]*auth.User) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentView{
			ID:        c.ID.String(),
			Content:   c.Content,
			Author:    authorOf(c.AuthorID, authors, false),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out
}

// authorOf returns nil for anonymous or deleted authors. Comments show the
// name only.
func authorOf(id *uuid.UUID, authors map[uuid.UUID]*auth.User, full bool) *Author {
	if id == nil {
		return nil
	}
	u, ok := authors[*id]
	if !ok {
		return nil
	}
	a := &Author{ID: u.ID.String(), Name: u.Name}
	if full {
		a.Email = u.Email
		a.Avatar = u.Avatar
	}
	return a
}
