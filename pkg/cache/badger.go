package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
)

// BadgerCache stores entries in an embedded Badger database, using
// Badger's native per-entry TTL.
type BadgerCache struct {
	db *badger.DB
}

// BadgerOptions configures NewBadgerCache.
type BadgerOptions struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in RAM.
	InMemory bool

	// Logger receives Badger's own log lines. Nil silences them.
	Logger *log.Logger
}

// NewBadgerCache opens (or creates) a Badger database.
func NewBadgerCache(opts BadgerOptions) (*BadgerCache, error) {
	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errors.New("badger cache: directory is required")
		}
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", opts.Dir, err)
		}
		bo = badger.DefaultOptions(opts.Dir)
	}
	bo = bo.WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bo = bo.WithLogger(badgerLogger{opts.Logger.WithPrefix("badger")})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// Get retrieves a value.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value.
func (c *BadgerCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a value.
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear drops every entry.
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// badgerLogger adapts a charmbracelet logger to badger.Logger.
type badgerLogger struct{ l *log.Logger }

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...any)    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...any)   { b.l.Debugf(format, args...) }

var _ Cache = (*BadgerCache)(nil)
