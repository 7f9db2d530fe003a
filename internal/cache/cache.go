// Package cache is a disk-backed, content-addressable store for compressed
// artifacts. One file per key under a single directory; the file's mtime is
// the only staleness signal. Expired entries are ignored on read and
// overwritten by the next Store for the same key — there is no eviction.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const fileSuffix = ".bin"

var ErrMiss = errors.New("cache miss")

// Key is the hex sha256 digest of the request inputs. Identical
// (url, rawSize) pairs always map to the same key.
func Key(sourceURL, rawSize string) string {
	sum := sha256.Sum256([]byte(sourceURL + "|" + rawSize))
	return hex.EncodeToString(sum[:])
}

type Cache struct {
	dir string
	ttl time.Duration
}

func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Get returns the stored bytes for key, or ErrMiss if the entry is absent or
// older than the TTL. Stale entries are left on disk.
func (c *Cache) Get(key string) ([]byte, error) {
	p := c.path(key)

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("stat cache entry: %w", err)
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, ErrMiss
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	return data, nil
}

// Store persists bytes for key, replacing any previous entry. The write goes
// to a temp file first and is published with a rename, so readers never see a
// half-written entry.
func (c *Cache) Store(key string, data []byte) error {
	tmp := filepath.Join(c.dir, "tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileSuffix)
}
