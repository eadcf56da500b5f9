// Package cache provides the local response cache: a content-addressed,
// TTL-bounded file store that wraps provider calls so identical requests
// within the TTL window skip network I/O entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultContentTTL bounds how long cached provider responses are reused.
const DefaultContentTTL = 24 * time.Hour

// Key builds a stable cache key from the request parts: the first 16 hex
// characters of a sha256 digest over the parts joined with "|".
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// entry is the on-disk representation of one cached value.
type entry struct {
	Key      string          `json:"key"`
	CachedAt time.Time       `json:"cached_at"`
	TTLSecs  int64           `json:"ttl_seconds"`
	Payload  json.RawMessage `json:"payload"`
}

// Store is a keyed-file cache rooted at a local directory. It supports
// concurrent GetOrFetch calls with at most one upstream fetch per key
// within a TTL window (per-key locking).
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore opens (creating if needed) a cache rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the cache root directory.
func (s *Store) Dir() string { return s.dir }

// GetOrFetch returns the cached payload for key if present and fresh.
// Otherwise it calls fn, persists the result, and returns it. Corrupted
// or unreadable entries degrade to a fetch rather than failing the run.
// The second return value reports whether the payload came from cache.
func (s *Store) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if payload, ok := s.read(key); ok {
		return payload, true, nil
	}

	payload, err := fn(ctx)
	if err != nil {
		return nil, false, err
	}

	// A write failure is not fatal: the fetch succeeded, so return the
	// payload and let the next run re-fetch.
	_ = s.write(key, ttl, payload)
	return payload, false, nil
}

// Invalidate removes the entry for key, forcing a re-fetch on next use.
func (s *Store) Invalidate(key string) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Purge deletes every content entry and returns how many were removed.
// The model side-cache (models.json) shares the directory and survives a
// purge: it records which upstream models work, not cached responses.
func (s *Store) Purge() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range matches {
		if filepath.Base(path) == modelsFileName {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// read loads the entry for key, returning false on miss, expiry, or any
// corruption (which is treated as a miss).
func (s *Store) read(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupted entry: drop it and degrade to a fetch.
		_ = os.Remove(s.path(key))
		return nil, false
	}

	ttl := time.Duration(e.TTLSecs) * time.Second
	if ttl <= 0 || time.Since(e.CachedAt) > ttl {
		return nil, false
	}
	return e.Payload, true
}

func (s *Store) write(key string, ttl time.Duration, payload []byte) error {
	e := entry{
		Key:      key,
		CachedAt: time.Now(),
		TTLSecs:  int64(ttl / time.Second),
		Payload:  json.RawMessage(payload),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// Write-then-rename so a crashed run never leaves a truncated entry.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// DefaultDir returns the per-user cache directory for pulsewatch.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(base, "pulsewatch"), nil
}
