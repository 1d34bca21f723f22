package main

import (
	"time"

	"github.com/dmitrymomot/noticeboard/modules/account"
	"github.com/dmitrymomot/noticeboard/pkg/auth"
	"github.com/dmitrymomot/noticeboard/pkg/clientip"
	"github.com/dmitrymomot/noticeboard/pkg/config"
	"github.com/dmitrymomot/noticeboard/pkg/cookie"
	"github.com/dmitrymomot/noticeboard/pkg/cors"
	"github.com/dmitrymomot/noticeboard/pkg/httpserver"
	"github.com/dmitrymomot/noticeboard/pkg/mongo"
	"github.com/dmitrymomot/noticeboard/pkg/ratelimiter"
	"github.com/dmitrymomot/noticeboard/pkg/redis"
	"github.com/dmitrymomot/noticeboard/pkg/session"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"noticeboard"`

	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	PostsCollection  string        `env:"POSTS_COLLECTION" envDefault:"posts"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
	MetricsEnabled   bool          `env:"METRICS_ENABLED" envDefault:"true"`
	RateLimitStore   string        `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	HTTP      httpserver.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Cookie    cookie.Config
	Session   session.Config
	Account   account.Config
	Google    auth.GoogleOAuthConfig
	Facebook  auth.FacebookOAuthConfig
	RateLimit ratelimiter.Config
	ClientIP  clientip.Config
	CORS      cors.Config
}

// needsRedis reports whether any component is configured to use Redis.
func (c appConfig) needsRedis() bool {
	return c.Session.Store == session.StoreRedis || c.RateLimitStore == "redis"
}

func loadConfig(envFiles []string) (appConfig, error) {
	if len(envFiles) > 0 {
		if err := config.LoadEnv(envFiles...); err != nil {
			return appConfig{}, err
		}
	}
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{cfg.Account.FrontendURL}
	}
	return cfg, nil
}
