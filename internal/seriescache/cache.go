package seriescache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// ErrLocked reports that another process holds the cache lock.
var ErrLocked = errors.New("series cache is locked by another process")

// Cache is a SQLite-backed map of series ID to available episode count.
// Entries older than the TTL are treated as absent.
type Cache struct {
	db   *sql.DB
	lock *flock.Flock
	path string
	ttl  time.Duration
}

// Open initializes or connects to the cache database, acquiring its file
// lock. A ttl of zero or below disables expiry.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, lock: lock, path: path, ttl: ttl}
	if err := cache.migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return cache, nil
}

func (c *Cache) migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS series_counts (
            series_id     TEXT PRIMARY KEY,
            episode_count INTEGER NOT NULL,
            updated_at    TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("create series_counts table: %w", err)
	}
	return nil
}

// Get returns the cached count for a series. ok is false when the entry is
// absent or expired.
func (c *Cache) Get(ctx context.Context, seriesID string) (count int, ok bool, err error) {
	var updatedAt string
	row := c.db.QueryRowContext(ctx,
		`SELECT episode_count, updated_at FROM series_counts WHERE series_id = ?`, seriesID)
	if err := row.Scan(&count, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query series count: %w", err)
	}

	if c.ttl > 0 {
		stored, parseErr := time.Parse(time.RFC3339Nano, updatedAt)
		if parseErr != nil || time.Since(stored) > c.ttl {
			return 0, false, nil
		}
	}
	return count, true, nil
}

// Put stores or refreshes the count for a series.
func (c *Cache) Put(ctx context.Context, seriesID string, count int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO series_counts (series_id, episode_count, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(series_id) DO UPDATE SET
            episode_count = excluded.episode_count,
            updated_at = excluded.updated_at`,
		seriesID, count, now)
	if err != nil {
		return fmt.Errorf("store series count: %w", err)
	}
	return nil
}

// Prune deletes expired entries and reports how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-c.ttl).Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM series_counts WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune series cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return removed, nil
}

// Close releases the database and the file lock.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.db != nil {
		firstErr = c.db.Close()
	}
	if c.lock != nil {
		if err := c.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
