package mediacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"flareader/internal/config"
	"flareader/internal/logging"
)

// Cache is a persistent decoded-media store. It is safe for concurrent use.
type Cache struct {
	db      *sql.DB
	path    string
	memory  *lru.Cache[string, Entry]
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *slog.Logger
}

// Stats summarizes cache contents.
type Stats struct {
	Path         string
	Entries      int
	ByKind       map[Kind]int
	RawBytes     int64
	StoredBytes  int64
	MemoryLoaded int
}

// Open connects to the cache database described by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Cache, error) {
	if cfg == nil {
		return nil, errors.New("mediacache requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(ctx, cfg.CachePath(), cfg.Cache.MemoryEntries, logger)
}

// OpenPath connects to the cache database at path. memoryEntries bounds the
// in-memory front; zero disables it.
func OpenPath(ctx context.Context, path string, memoryEntries int, logger *slog.Logger) (*Cache, error) {
	ctx = ensureContext(ctx)
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "mediacache")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Cache{db: db, path: path, logger: logger}
	if err := c.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if memoryEntries > 0 {
		c.memory, err = lru.New[string, Entry](memoryEntries)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
	}
	if c.encoder, err = zstd.NewWriter(nil); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	if c.decoder, err = zstd.NewReader(nil); err != nil {
		_ = c.encoder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return c, nil
}

// Path returns the database location.
func (c *Cache) Path() string {
	return c.path
}

// Close releases the database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Lookup returns the entry stored under key.
func (c *Cache) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	ctx = ensureContext(ctx)
	if c.memory != nil {
		if e, ok := c.memory.Get(key); ok {
			return e, true, nil
		}
	}

	var (
		e        Entry
		kind     string
		rawSize  int64
		payload  []byte
		notFound bool
	)
	err := retryOnBusy(ctx, func() error {
		row := c.db.QueryRowContext(ctx,
			`SELECT kind, width, height, sample_rate, channels, detail, raw_size, payload
             FROM media_entries WHERE key = ?`, key)
		scanErr := row.Scan(&kind, &e.Width, &e.Height, &e.SampleRate, &e.Channels, &e.Detail, &rawSize, &payload)
		if errors.Is(scanErr, sql.ErrNoRows) {
			notFound = true
			return nil
		}
		return scanErr
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	if notFound {
		return Entry{}, false, nil
	}

	raw, err := c.decoder.DecodeAll(payload, make([]byte, 0, rawSize))
	if err != nil {
		c.logger.Warn("cached payload undecodable; dropping entry",
			logging.String("key", key),
			logging.String(logging.FieldEventType, "mediacache_entry_corrupt"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'flareader cache clear' if this repeats"),
			logging.String(logging.FieldImpact, "the media item is decoded again"))
		_ = c.delete(ctx, key)
		return Entry{}, false, nil
	}
	e.Kind = Kind(kind)
	e.Payload = raw

	_ = retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, `UPDATE media_entries SET last_used_at = ? WHERE key = ?`, time.Now().UnixNano(), key)
		return err
	})
	if c.memory != nil {
		c.memory.Add(key, e)
	}
	return e, true, nil
}

// Store writes e under key, replacing any previous entry.
func (c *Cache) Store(ctx context.Context, key string, e Entry) error {
	ctx = ensureContext(ctx)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	compressed := c.encoder.EncodeAll(e.Payload, nil)
	now := time.Now().UnixNano()
	err := retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO media_entries (
                key, kind, width, height, sample_rate, channels, detail,
                raw_size, payload, created_at, last_used_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			key, string(e.Kind), e.Width, e.Height, e.SampleRate, e.Channels, e.Detail,
			len(e.Payload), compressed, now, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	if c.memory != nil {
		c.memory.Add(key, e)
	}
	c.logger.Debug("cached decoded media",
		logging.String("key", key),
		logging.String("kind", string(e.Kind)),
		logging.Int("raw_bytes", len(e.Payload)),
		logging.Int("stored_bytes", len(compressed)))
	return nil
}

// Stats reports entry counts and sizes.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{Path: c.path, ByKind: make(map[Kind]int)}
	rows, err := c.db.QueryContext(ctx,
		`SELECT kind, COUNT(1), COALESCE(SUM(raw_size), 0), COALESCE(SUM(LENGTH(payload)), 0)
         FROM media_entries GROUP BY kind`)
	if err != nil {
		return stats, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind          string
			count         int
			raw, compress int64
		)
		if err := rows.Scan(&kind, &count, &raw, &compress); err != nil {
			return stats, err
		}
		stats.ByKind[Kind(kind)] = count
		stats.Entries += count
		stats.RawBytes += raw
		stats.StoredBytes += compress
	}
	if c.memory != nil {
		stats.MemoryLoaded = c.memory.Len()
	}
	return stats, rows.Err()
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := c.db.ExecContext(ctx, `DELETE FROM media_entries`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	if c.memory != nil {
		c.memory.Purge()
	}
	return removed, nil
}

// Prune removes entries not used since before and returns how many were
// deleted.
func (c *Cache) Prune(ctx context.Context, before time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := c.db.ExecContext(ctx, `DELETE FROM media_entries WHERE last_used_at < ?`, before.UnixNano())
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	if removed > 0 && c.memory != nil {
		c.memory.Purge()
	}
	return removed, nil
}

func (c *Cache) delete(ctx context.Context, key string) error {
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, `DELETE FROM media_entries WHERE key = ?`, key)
		return err
	})
}
