package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/metrics"
	"github.com/dmitrymomot/noticeboard/pkg/ratelimiter"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

// Authenticator is satisfied by *auth.Service.
type Authenticator interface {
	Register(ctx context.Context, identifier, password string) (*auth.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*auth.User, error)
}

// Sessions is satisfied by *session.Manager.
type Sessions interface {
	Establish(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*session.Session, error)
	SetLifetime(ctx context.Context, w http.ResponseWriter, r *http.Request, remember bool) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type Service struct {
	cfg          Config
	auth         Authenticator
	sessions     Sessions
	cookies      *cookie.Manager
	oauth        []*auth.Coordinator
	limiter      ratelimiter.Limiter
	limitKey     ratelimiter.KeyFunc
	metrics      metrics.Recorder
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Service)

// WithOAuth mounts /{provider} and /{provider}/callback for every coordinator.
func WithOAuth(coordinators ...*auth.Coordinator) Option {
	return func(s *Service) {
		for _, c := range coordinators {
			if c != nil {
				s.oauth = append(s.oauth, c)
			}
		}
	}
}

// WithRateLimit throttles /login and /register per key. Each route gets its
// own bucket.
func WithRateLimit(l ratelimiter.Limiter, key ratelimiter.KeyFunc) Option {
	return func(s *Service) {
		s.limiter = l
		s.limitKey = key
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

func NewService(cfg Config, authn Authenticator, sessions Sessions, cookies *cookie.Manager, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg.withDefaults(),
		auth:     authn,
		sessions: sessions,
		cookies:  cookies,
		metrics:  metrics.Nop{},
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("account"))
	if s.errorHandler == nil {
		s.errorHandler = handler.JSONErrorHandler[handler.Context](s.log, ErrorMapper)
	}
	return s
}

// Handle returns the router to mount at /auth.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(s.throttle("register")).Post("/register", handler.Wrap(s.register,
		handler.WithBinders[handler.Context, CredentialsRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, CredentialsRequest](s.errorHandler),
	))
	r.With(s.throttle("login")).Post("/login", handler.Wrap(s.login,
		handler.WithBinders[handler.Context, CredentialsRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, CredentialsRequest](s.errorHandler),
	))

	r.Post("/session-options", handler.Wrap(s.sessionOptions,
		handler.WithBinders[handler.Context, SessionOptionsRequest](bindJSON),
		handler.WithErrorHandler[handler.Context, SessionOptionsRequest](s.errorHandler),
	))

	me := handler.Wrap(s.me, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
	r.Get("/me", me)

	logout := handler.Wrap(s.logout, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
	r.Get("/logout", logout)
	r.Post("/logout", logout)

	r.Get("/failure", handler.Wrap(s.failure))

	for _, c := range s.oauth {
		p := string(c.Provider())
		r.Get("/"+p, handler.Wrap(s.oauthStart(c), handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))
		r.Get("/"+p+"/callback", handler.Wrap(s.oauthCallback(c), handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler)))
	}

	return r
}

// CurrentUser answers GET /api/users/me with the same body as /auth/me.
func (s *Service) CurrentUser() http.HandlerFunc {
	return handler.Wrap(s.me, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
}

func (s *Service) throttle(route string) func(http.Handler) http.Handler {
	if s.limiter == nil || s.limitKey == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimiter.Middleware(s.limiter,
		ratelimiter.Composite(ratelimiter.Prefix(route), s.limitKey),
		ratelimiter.WithLogger(s.log),
		ratelimiter.OnDenied(func(*http.Request) { s.metrics.RateLimited(route) }),
	)
}

func (s *Service) recordAuth(provider auth.Provider, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrDuplicateIdentity):
		outcome = metrics.OutcomeDuplicate
	case errors.Is(err, auth.ErrAuthenticationFailed):
		outcome = metrics.OutcomeFailure
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.AuthAttempt(string(provider), outcome)
}
