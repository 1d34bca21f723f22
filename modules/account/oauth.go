package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

func stateCookieName(p auth.Provider) string { return "nb.oauth_state_" + string(p) }

func (s *Service) oauthStart(c *auth.Coordinator) handler.HandlerFunc[handler.Context, struct{}] {
	return func(ctx handler.Context, _ struct{}) handler.Response {
		url, state, err := c.Start()
		if err != nil {
			return handler.Error(err)
		}
		s.cookies.SetSigned(ctx.ResponseWriter(), stateCookieName(c.Provider()), state,
			cookie.WithMaxAge(s.cfg.StateCookieTTL))
		return handler.Redirect(url, http.StatusTemporaryRedirect)
	}
}

// oauthCallback sends every failure to the failure page; only the log line
// tells them apart.
func (s *Service) oauthCallback(c *auth.Coordinator) handler.HandlerFunc[handler.Context, struct{}] {
	return func(ctx handler.Context, _ struct{}) handler.Response {
		w, r := ctx.ResponseWriter(), ctx.Request()
		provider := c.Provider()
		name := stateCookieName(provider)

		expected, _ := s.cookies.GetSigned(r, name)
		s.cookies.Delete(w, name)

		user, err := c.Callback(ctx, r.URL.Query(), expected)
		s.recordAuth(provider, err)
		if err != nil {
			if errors.Is(err, auth.ErrAuthenticationFailed) || errors.Is(err, auth.ErrDuplicateIdentity) {
				s.log.InfoContext(ctx, "oauth sign-in rejected", logger.Provider(string(provider)), logger.Error(err))
			} else {
				s.log.ErrorContext(ctx, "oauth sign-in failed", logger.Provider(string(provider)), logger.Error(err))
			}
			return handler.Redirect(s.cfg.FailurePath, http.StatusSeeOther)
		}

		if _, err := s.sessions.Establish(ctx, w, r, user.ID); err != nil {
			s.log.ErrorContext(ctx, "failed to establish session", logger.UserID(user.ID), logger.Error(err))
			return handler.Redirect(s.cfg.FailurePath, http.StatusSeeOther)
		}

		s.log.InfoContext(ctx, "user logged in", logger.UserID(user.ID), logger.Provider(string(provider)))
		return handler.Redirect(s.cfg.FrontendURL, http.StatusSeeOther)
	}
}
