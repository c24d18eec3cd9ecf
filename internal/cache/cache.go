// Package cache stores upstream API responses on disk, keyed by request URL.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a cached response is considered fresh.
const DefaultTTL = 2 * time.Hour

// State describes a cache lookup result.
type State int

const (
	// Missing means no entry exists for the URL.
	Missing State = iota
	// Fresh means the entry is younger than the TTL.
	Fresh
	// Expired means the entry exists but is older than the TTL.
	// Expired entries are still returned so they can serve as a fallback.
	Expired
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Expired:
		return "expired"
	default:
		return "missing"
	}
}

// Store is a directory of cached responses.
type Store struct {
	now func() time.Time
	Dir string
	TTL time.Duration
}

// New returns a store rooted at dir. A non-positive ttl selects DefaultTTL.
func New(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{Dir: dir, TTL: ttl, now: time.Now}
}

// Path returns the cache file for url: <dir>/<md5(url)>.json.
func (s *Store) Path(url string) string {
	sum := md5.Sum([]byte(url))
	return filepath.Join(s.Dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached body for url and its freshness.
// A missing entry is not an error.
func (s *Store) Get(url string) ([]byte, State, error) {
	path := s.Path(url)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Missing, nil
	}
	if err != nil {
		return nil, Missing, fmt.Errorf("stat cache %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Missing, fmt.Errorf("read cache %s: %w", path, err)
	}

	if s.now().Sub(info.ModTime()) < s.TTL {
		return data, Fresh, nil
	}
	return data, Expired, nil
}

// Put stores data for url, creating the cache directory if needed.
func (s *Store) Put(url string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := s.Path(url)
	tmp, err := os.CreateTemp(s.Dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}

	return nil
}
