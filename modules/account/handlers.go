package account

import (
	"net/http"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/binder"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

var bindJSON = binder.JSON()

// CredentialsRequest carries local credentials. Identifier is accepted as an
// alias of Username.
type CredentialsRequest struct {
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r CredentialsRequest) identity() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Identifier
}

type SessionOptionsRequest struct {
	Remember bool `json:"remember"`
}

// UserView is the public projection of a user.
type UserView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	Avatar string  `json:"avatar"`
}

func viewOf(u *auth.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{ID: u.ID.String(), Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

func (s *Service) register(ctx handler.Context, req CredentialsRequest) handler.Response {
	if req.identity() == "" || req.Password == "" {
		return handler.Error(errMissingCredentials)
	}

	user, err := s.auth.Register(ctx, req.identity(), req.Password)
	s.recordAuth(auth.ProviderLocal, err)
	if err != nil {
		return handler.Error(err)
	}

	return handler.JSON(map[string]any{
		"message": "Registration successful",
		"user":    map[string]string{"email": user.EmailAddress()},
	}, handler.WithStatus(http.StatusCreated))
}

func (s *Service) login(ctx handler.Context, req CredentialsRequest) handler.Response {
	if req.identity() == "" || req.Password == "" {
		return handler.Error(errMissingCredentials)
	}

	user, err := s.auth.Authenticate(ctx, req.identity(), req.Password)
	s.recordAuth(auth.ProviderLocal, err)
	if err != nil {
		return handler.Error(err)
	}

	if _, err := s.sessions.Establish(ctx, ctx.ResponseWriter(), ctx.Request(), user.ID); err != nil {
		return handler.Error(handler.NewHTTPError(http.StatusInternalServerError, "Login failed", err))
	}

	s.log.InfoContext(ctx, "user logged in", logger.UserID(user.ID), logger.Provider(string(auth.ProviderLocal)))
	return handler.JSON(map[string]any{
		"message": "Login successful",
		"user":    viewOf(user),
	})
}

func (s *Service) sessionOptions(ctx handler.Context, req SessionOptionsRequest) handler.Response {
	if err := s.sessions.SetLifetime(ctx, ctx.ResponseWriter(), ctx.Request(), req.Remember); err != nil {
		if mapped, ok := ErrorMapper(err); ok {
			return handler.Error(mapped)
		}
		return handler.Error(handler.NewHTTPError(http.StatusInternalServerError, "Failed to update session settings", err))
	}
	if req.Remember {
		return handler.Message("Remember me enabled for 7 days")
	}
	return handler.Message("Session will expire when browser closes")
}

func (s *Service) me(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(map[string]any{"user": viewOf(auth.UserFromContext(ctx))})
}

func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return handler.Error(handler.NewHTTPError(http.StatusInternalServerError, "Logout failed", err))
	}
	return handler.Message("Logged out successfully")
}

func (s *Service) failure(handler.Context, struct{}) handler.Response {
	return handler.JSON(handler.ErrorBody{Error: "Authentication failed"}, handler.WithStatus(http.StatusUnauthorized))
}
