// Package boltcache keeps resolved redirects in a local BoltDB file.
package boltcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/shortify/internal/server/cache"
)

var bucketRedirects = []byte("redirects")

type entry struct {
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// Cache represents BoltDB redirect cache
type Cache struct {
	nextSweep time.Time
	db        *bbolt.DB
	now       func() time.Time
	ttl       time.Duration
	mu        sync.Mutex
}

var _ cache.Cache = (*Cache)(nil)

// New opens (or creates) the cache file at dbPath
// Entries older than ttl are treated as missing
func New(ctx context.Context, dbPath string, ttl time.Duration) (*Cache, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRedirects)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create redirects bucket: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns cached URL for the code
func (c *Cache) Get(ctx context.Context, code string) (string, error) {
	var e entry

	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRedirects).Get([]byte(code))
		if data == nil {
			return cache.ErrMiss
		}

		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	// просроченные записи вычищает Set, не чаще раза за ttl
	if !c.now().Before(e.ExpiresAt) {
		return "", cache.ErrMiss
	}

	return e.URL, nil
}

// Set stores URL for the code.
// Expired entries are swept in the same transaction, at most once per ttl.
func (c *Cache) Set(ctx context.Context, code, url string) error {
	now := c.now()
	data, err := json.Marshal(entry{URL: url, ExpiresAt: now.Add(c.ttl)})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	sweep := c.sweepDue(now)

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRedirects)
		if sweep {
			if err := purgeExpired(b, now); err != nil {
				return err
			}
		}
		if err := b.Put([]byte(code), data); err != nil {
			return fmt.Errorf("failed to save cache entry: %w", err)
		}
		return nil
	})
}

func (c *Cache) sweepDue(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Before(c.nextSweep) {
		return false
	}
	c.nextSweep = now.Add(c.ttl)
	return true
}

// purgeExpired удаляет просроченные и нечитаемые записи
func purgeExpired(b *bbolt.Bucket, now time.Time) error {
	var stale [][]byte

	// bbolt не позволяет удалять ключи внутри ForEach
	err := b.ForEach(func(k, v []byte) error {
		var e entry
		if err := json.Unmarshal(v, &e); err != nil || !now.Before(e.ExpiresAt) {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan cache entries: %w", err)
	}

	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("failed to purge cache entry: %w", err)
		}
	}

	return nil
}

// Delete drops the code from cache
func (c *Cache) Delete(ctx context.Context, code string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRedirects).Delete([]byte(code)); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
		return nil
	})
}

// Close closes the database file
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
