// Package cache keeps slow-changing API listings (images, add-on
// catalog) on disk between runs.
package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const appDir = "xervo"

// entry is the on-disk form of a cached value.
type entry struct {
	StoredAt time.Time       `json:"storedAt"`
	Value    json.RawMessage `json:"value"`
}

// Cache is a directory of JSON entries. A nil Cache, or one with an
// empty directory, caches nothing.
type Cache struct {
	dir string
	now func() time.Time
}

// New returns a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

// NewDefault returns a cache under the OS user cache directory.
func NewDefault() *Cache {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return New(filepath.Join(base, appDir))
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) disabled() bool {
	return c == nil || c.dir == ""
}

// Get decodes the entry for key into dest when it is younger than ttl.
// Expired and unreadable entries count as misses.
func (c *Cache) Get(key string, ttl time.Duration, dest any) (bool, error) {
	if c.disabled() || ttl <= 0 {
		return false, nil
	}

	data, err := os.ReadFile(c.pathForKey(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, nil
	}
	if c.now().Sub(e.StoredAt) > ttl {
		_ = os.Remove(c.pathForKey(key))
		return false, nil
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Set stores value under key, replacing any previous entry atomically.
func (c *Cache) Set(key string, value any) error {
	if c.disabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(entry{StoredAt: c.now().UTC(), Value: raw})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.pathForKey(key))
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) error {
	if c.disabled() {
		return nil
	}
	err := os.Remove(c.pathForKey(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c.disabled() {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Fetch returns the cached value for key, or calls load and caches its
// result. A failed cache write does not fail the fetch.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if ok, _ := c.Get(key, ttl, &cached); ok {
		return cached, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = c.Set(key, v)
	return v, nil
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
}
