package session

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Backends holds the connections a store may need. Only the one matching
// Config.Store has to be set.
type Backends struct {
	Redis redis.Cmdable
	Mongo *mongo.Database
}

// NewStore builds the store selected by cfg.Store.
func NewStore(cfg Config, b Backends) (Store, error) {
	cfg = cfg.withDefaults()
	switch cfg.Store {
	case StoreMemory:
		return NewMemoryStore(cfg.CleanupInterval), nil
	case StoreRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("%w: redis store needs a redis client", ErrUnknownStore)
		}
		return NewRedisStore(b.Redis, cfg.RedisPrefix), nil
	case StoreMongo:
		if b.Mongo == nil {
			return nil, fmt.Errorf("%w: mongo store needs a database", ErrUnknownStore)
		}
		return NewMongoStore(b.Mongo, cfg.MongoCollection), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}
