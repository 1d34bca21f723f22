package account

import "time"

type Config struct {
	// FrontendURL receives the browser after a successful OAuth sign-in.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// FailurePath receives the browser after a failed OAuth sign-in.
	FailurePath     string        `env:"AUTH_FAILURE_PATH" envDefault:"/auth/failure"`
	StateCookieTTL  time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	UsersCollection string        `env:"USERS_COLLECTION" envDefault:"users"`
}

func (c Config) withDefaults() Config {
	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:3000"
	}
	if c.FailurePath == "" {
		c.FailurePath = "/auth/failure"
	}
	if c.StateCookieTTL <= 0 {
		c.StateCookieTTL = 10 * time.Minute
	}
	if c.UsersCollection == "" {
		c.UsersCollection = "users"
	}
	return c
}
