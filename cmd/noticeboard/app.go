package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/noticeboard/handler"
	"github.com/dmitrymomot/noticeboard/modules/account"
	"github.com/dmitrymomot/noticeboard/modules/board"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/clientip"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/cors"
	"github.com/dmitrymomot/noticeboard/pkg/httpserver"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
	"github.com/dmitrymomot/noticeboard/pkg/metrics"
	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
	"github.com/dmitrymomot/noticeboard/pkg/ratelimiter"
	nbredis "github.com/dmitrymomot/noticeboard/pkg/redis"
	"github.com/dmitrymomot/noticeboard/pkg/requestid"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

const banner = "Backend running with MongoDB, Google & Facebook Auth!"

// app holds the wired components served by the HTTP router.
type app struct {
	log              *slog.Logger
	account          *account.Service
	posts            *board.API
	sessions         *session.Manager
	clientIP         *clientip.Resolver
	cors             cors.Config
	collector        *metrics.Collector
	gatherer         prometheus.Gatherer
	checks           []httpserver.Check
	readinessTimeout time.Duration
	closers          []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
}

func connectMongo(ctx context.Context, cfg appConfig) (*mongo.Database, error) {
	db, err := nbmongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return db, nil
}

func indexSets(cfg appConfig) []nbmongo.IndexSet {
	sets := []nbmongo.IndexSet{
		account.UserIndexes(cfg.Account.UsersCollection),
		board.PostIndexes(cfg.PostsCollection),
	}
	if cfg.Session.Store == session.StoreMongo {
		sets = append(sets, session.Indexes(cfg.Session.MongoCollection))
	}
	return sets
}

// buildApp connects the backends and wires every component. Close releases
// the connections in reverse order.
func buildApp(ctx context.Context, cfg appConfig, log *slog.Logger) (_ *app, err error) {
	a := &app{
		log:              log,
		cors:             cfg.CORS,
		clientIP:         clientip.NewResolver(cfg.ClientIP),
		readinessTimeout: cfg.ReadinessTimeout,
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	db, err := connectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closerFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.Client().Disconnect(ctx)
	}))
	a.checks = append(a.checks, httpserver.Check{Name: "mongodb", Probe: nbmongo.Healthcheck(db.Client())})

	if err := nbmongo.EnsureIndexes(ctx, db, indexSets(cfg)...); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	var rdb *goredis.Client
	if cfg.needsRedis() {
		rdb, err = nbredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rdb)
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Probe: nbredis.Healthcheck(rdb)})
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.collector = metrics.NewCollector(reg)
		a.gatherer = reg
		recorder = a.collector
	}

	cookies, err := cookie.New(cfg.Cookie)
	if err != nil {
		return nil, fmt.Errorf("cookie manager: %w", err)
	}

	backends := session.Backends{Mongo: db}
	if rdb != nil {
		backends.Redis = rdb
	}
	store, err := session.NewStore(cfg.Session, backends)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	users := account.NewMongoStorage(db, cfg.Account.UsersCollection)
	authSvc := auth.NewService(users,
		auth.WithLogger(log),
		auth.WithBcryptCost(cfg.BcryptCost),
	)

	rl, err := newLimiter(cfg, rdb)
	if err != nil {
		return nil, err
	}
	if rl.closer != nil {
		a.closers = append(a.closers, rl.closer)
	}

	a.sessions = session.NewManager(store, authSvc, cookies,
		session.WithConfig(cfg.Session),
		session.WithLogger(log),
		session.WithMetrics(recorder),
	)
	a.closers = append(a.closers, a.sessions)

	errorHandler := handler.JSONErrorHandler[handler.Context](log, account.ErrorMapper, board.ErrorMapper)

	a.account = account.NewService(cfg.Account, authSvc, a.sessions, cookies,
		account.WithOAuth(oauthCoordinators(cfg, authSvc, log)...),
		account.WithRateLimit(rl.bucket, clientKey),
		account.WithMetrics(recorder),
		account.WithLogger(log),
		account.WithErrorHandler(errorHandler),
	)

	posts := board.NewService(board.NewMongoStorage(db, cfg.PostsCollection), users, board.WithLogger(log))
	a.posts = board.NewAPI(posts, log, errorHandler)

	return a, nil
}

type limiter struct {
	bucket *ratelimiter.Bucket
	closer io.Closer
}

func newLimiter(cfg appConfig, rdb *goredis.Client) (limiter, error) {
	var (
		store  ratelimiter.Store
		closer io.Closer
	)
	switch cfg.RateLimitStore {
	case "memory", "":
		ms := ratelimiter.NewMemoryStore()
		store = ms
		closer = closerFunc(func() error { ms.Close(); return nil })
	case "redis":
		store = ratelimiter.NewRedisStore(rdb, "ratelimit:")
	default:
		return limiter{}, fmt.Errorf("unknown rate limit store %q", cfg.RateLimitStore)
	}
	bucket, err := ratelimiter.NewBucket(store, cfg.RateLimit)
	if err != nil {
		return limiter{}, fmt.Errorf("rate limiter: %w", err)
	}
	return limiter{bucket: bucket, closer: closer}, nil
}

func clientKey(r *http.Request) string {
	return clientip.FromContext(r.Context())
}

func oauthCoordinators(cfg appConfig, resolver auth.IdentityResolver, log *slog.Logger) []*auth.Coordinator {
	var out []*auth.Coordinator
	if cfg.Google.Enabled() {
		out = append(out, auth.NewCoordinator(auth.NewGoogleAdapter(cfg.Google), resolver, auth.WithCoordinatorLogger(log)))
	} else {
		log.Warn("google sign-in disabled: credentials not configured", logger.Provider(string(auth.ProviderGoogle)))
	}
	if cfg.Facebook.Enabled() {
		out = append(out, auth.NewCoordinator(auth.NewFacebookAdapter(cfg.Facebook), resolver, auth.WithCoordinatorLogger(log)))
	} else {
		log.Warn("facebook sign-in disabled: credentials not configured", logger.Provider(string(auth.ProviderFacebook)))
	}
	return out
}

// routes builds the root router.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(a.clientIP.Middleware)
	if a.collector != nil {
		r.Use(a.collector.Middleware)
	}
	r.Use(cors.Middleware(a.cors))

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, a.readinessTimeout, a.checks...))
	if a.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(a.gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(a.sessions.Middleware)

		r.Get("/", handler.Wrap(func(handler.Context, struct{}) handler.Response {
			return handler.Message(banner)
		}))
		r.Get("/api/users/me", a.account.CurrentUser())
		r.Mount("/auth", a.account.Handle())
		r.Mount("/api/posts", a.posts.Handle())
	})

	return r
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
