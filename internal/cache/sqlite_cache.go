package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/logging"
)

// SQLiteCache is a TTL cache of API responses in the response_cache table.
type SQLiteCache struct {
	db  *sqlx.DB
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

// cacheEntry represents a cached row
type cacheEntry struct {
	Key       string `db:"key"`
	Data      []byte `db:"data"`
	ExpiresAt int64  `db:"expires_at"` // unix milliseconds
}

// NewSQLiteCache creates a cache on db
func NewSQLiteCache(db *sqlx.DB, ttl time.Duration, log *zap.Logger) *SQLiteCache {
	return &SQLiteCache{
		db:  db,
		ttl: ttl,
		log: logging.OrNop(log),
		now: time.Now,
	}
}

// Get retrieves a value from the cache. Expired entries are removed.
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	ctx := context.Background()

	var entry cacheEntry
	err := c.db.GetContext(ctx, &entry,
		`SELECT key, data, expires_at FROM response_cache WHERE key = ?`, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	if c.now().UnixMilli() >= entry.ExpiresAt {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM response_cache WHERE key = ?`, key); err != nil {
			c.log.Warn("failed to drop expired cache entry", zap.Error(err))
		}
		return nil, false
	}

	c.log.Debug("cache hit", zap.String("key", key))
	return entry.Data, true
}

// Set stores a value in the cache
func (c *SQLiteCache) Set(key string, value []byte) error {
	entry := cacheEntry{
		Key:       key,
		Data:      value,
		ExpiresAt: c.now().Add(c.ttl).UnixMilli(),
	}
	_, err := c.db.NamedExecContext(context.Background(),
		`INSERT INTO response_cache (key, data, expires_at) VALUES (:key, :data, :expires_at)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		entry)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.ExecContext(context.Background(), `DELETE FROM response_cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Cleanup removes expired entries and returns how many were dropped
func (c *SQLiteCache) Cleanup() (int64, error) {
	res, err := c.db.ExecContext(context.Background(),
		`DELETE FROM response_cache WHERE expires_at <= ?`, c.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
