package session

import "time"

// Store kinds accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Store      string `env:"SESSION_STORE" envDefault:"mongo"`
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"nb.sid"`

	// TTL bounds every session; RememberTTL replaces it after remember-me.
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL" envDefault:"168h"`

	// ActivityUpdateThreshold is the minimum gap between LastActivityAt writes.
	ActivityUpdateThreshold time.Duration `env:"SESSION_ACTIVITY_UPDATE_THRESHOLD" envDefault:"5m"`

	// CleanupInterval drives the MemoryStore sweeper (0 disables it).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	RedisPrefix     string `env:"SESSION_REDIS_PREFIX" envDefault:"session:"`
	MongoCollection string `env:"SESSION_MONGO_COLLECTION" envDefault:"sessions"`
}

func DefaultConfig() Config {
	return Config{
		Store:                   StoreMongo,
		CookieName:              "nb.sid",
		TTL:                     24 * time.Hour,
		RememberTTL:             7 * 24 * time.Hour,
		ActivityUpdateThreshold: 5 * time.Minute,
		CleanupInterval:         5 * time.Minute,
		RedisPrefix:             "session:",
		MongoCollection:         "sessions",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.RememberTTL <= 0 {
		c.RememberTTL = d.RememberTTL
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = d.RedisPrefix
	}
	if c.MongoCollection == "" {
		c.MongoCollection = d.MongoCollection
	}
	return c
}
