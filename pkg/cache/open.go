package cache

import (
	"cmp"
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config selects and configures a backend. It is embedded in the CLI config
// file under [cache].
type Config struct {
	Backend string `toml:"backend" validate:"omitempty,oneof=file badger redis mongo none"`
	Dir     string `toml:"dir"`

	RedisURL string `toml:"redis_url" validate:"required_if=Backend redis"`

	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// Namespace prefixes every key, see ScopedKeyer.
	Namespace string `toml:"namespace"`
}

// Open builds the cache described by cfg. An empty backend means file.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		c, err = asCache(NewFileCache(cfg.Dir))
	case BackendBadger:
		c, err = asCache(NewBadgerCache(BadgerOptions{Dir: cfg.Dir, Logger: logger}))
	case BackendRedis:
		if err := errors.ValidateURL(cfg.RedisURL, "redis", "rediss", "unix"); err != nil {
			return nil, err
		}
		c, err = asCache(NewRedisCache(ctx, cfg.RedisURL))
	case BackendMongo:
		if err := errors.ValidateURL(cfg.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return nil, err
		}
		c, err = asCache(NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection))
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("opened cache", "backend", cmp.Or(cfg.Backend, BackendFile))
	}
	return c, nil
}

// asCache drops typed nil pointers so a failed constructor yields a nil
// interface.
func asCache[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Keyer returns the keyer for cfg, scoped when a namespace is set.
func (cfg Config) Keyer() Keyer {
	if cfg.Namespace == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), cfg.Namespace+":")
}
