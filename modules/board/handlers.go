package board

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/binder"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PostRequest struct {
	PostID string `json:"-" path:"id"`
}

type CreateCommentRequest struct {
	PostID  string `json:"-" path:"id"`
	Content string `json:"content"`
}

type CommentRequest struct {
	PostID    string `json:"-" path:"id"`
	CommentID string `json:"-" path:"commentID"`
}

// API exposes a Service over HTTP.
type API struct {
	svc          *Service
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewAPI(svc *Service, log *slog.Logger, errorHandler handler.ErrorHandler[handler.Context]) *API {
	if log == nil {
		log = logger.Discard()
	}
	if errorHandler == nil {
		errorHandler = handler.JSONErrorHandler[handler.Context](log, ErrorMapper)
	}
	return &API{svc: svc, errorHandler: errorHandler}
}

// Handle returns the router to mount at /api/posts. Write routes expect the
// session middleware upstream.
func (a *API) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(a.list,
		handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
	))
	r.Get("/{id}/comments", handler.Wrap(a.comments,
		handler.WithBinders[handler.Context, PostRequest](binder.Path()),
		handler.WithErrorHandler[handler.Context, PostRequest](a.errorHandler),
	))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/", handler.Wrap(a.create,
			handler.WithBinders[handler.Context, CreatePostRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, CreatePostRequest](a.errorHandler),
		))
		r.Delete("/{id}", handler.Wrap(a.delete,
			handler.WithBinders[handler.Context, PostRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, PostRequest](a.errorHandler),
		))
		r.Post("/{id}/comments", handler.Wrap(a.addComment,
			handler.WithBinders[handler.Context, CreateCommentRequest](binder.JSON(), binder.Path()),
			handler.WithErrorHandler[handler.Context, CreateCommentRequest](a.errorHandler),
		))
		r.Delete("/{id}/comments/{commentID}", handler.Wrap(a.deleteComment,
			handler.WithBinders[handler.Context, CommentRequest](binder.Path()),
			handler.WithErrorHandler[handler.Context, CommentRequest](a.errorHandler),
		))
	})

	return r
}

func (a *API) list(ctx handler.Context, _ struct{}) handler.Response {
	posts, err := a.svc.List(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(posts)
}

func (a *API) create(ctx handler.Context, req CreatePostRequest) handler.Response {
	post, err := a.svc.Create(ctx, auth.UserFromContext(ctx), req.Title, req.Content)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(post, handler.WithStatus(http.StatusCreated))
}

func (a *API) delete(ctx handler.Context, req PostRequest) handler.Response {
	id, err := parseID(req.PostID, ErrPostNotFound)
	if err != nil {
		return handler.Error(err)
	}
	if err := a.svc.Delete(ctx, auth.UserFromContext(ctx), id); err != nil {
		return handler.Error(err)
	}
	return handler.Message("Post deleted")
}

func (a *API) comments(ctx handler.Context, req PostRequest) handler.Response {
	id, err := parseID(req.PostID, ErrPostNotFound)
	if err != nil {
		return handler.Error(err)
	}
	comments, err := a.svc.Comments(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(comments)
}

func (a *API) addComment(ctx handler.Context, req CreateCommentRequest) handler.Response {
	id, err := parseID(req.PostID, ErrPostNotFound)
	if err != nil {
		return handler.Error(err)
	}
	comments, err := a.svc.AddComment(ctx, auth.UserFromContext(ctx), id, req.Content)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(comments, handler.WithStatus(http.StatusCreated))
}

func (a *API) deleteComment(ctx handler.Context, req CommentRequest) handler.Response {
	postID, err := parseID(req.PostID, ErrPostNotFound)
	if err != nil {
		return handler.Error(err)
	}
	commentID, err := parseID(req.CommentID, ErrCommentNotFound)
	if err != nil {
		return handler.Error(err)
	}
	if err := a.svc.DeleteComment(ctx, auth.UserFromContext(ctx), postID, commentID); err != nil {
		return handler.Error(err)
	}
	return handler.Message("Comment deleted")
}

// parseID treats a malformed id as a missing resource.
func parseID(raw string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
