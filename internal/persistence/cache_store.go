package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"statusdash/internal/models"
	"statusdash/internal/providers"
	"statusdash/internal/structures"
	"strings"
	"time"
)

const cacheFileExt = ".json"

var cacheKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// CacheStore keeps one JSON file per key. Corrupt files are removed on read
// and reported as absent; expired entries are reported as absent but left
// on disk until the next Store overwrites them.
type CacheStore struct {
	dir    string
	files  *FileManager
	logger providers.Logger
	now    func() time.Time
}

func NewCacheStore(conf *structures.Config, files *FileManager, logger providers.Logger) (*CacheStore, error) {
	if err := files.EnsureDir(conf.Paths.CacheDir); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &CacheStore{
		dir:    conf.Paths.CacheDir,
		files:  files,
		logger: logger,
		now:    time.Now,
	}, nil
}

// SetClock replaces the time source used for stamping and expiry.
func (s *CacheStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CacheStore) Dir() string {
	return s.dir
}

func ValidCacheKey(key string) bool {
	return cacheKeyPattern.MatchString(key)
}

func (s *CacheStore) filePath(key string) string {
	return filepath.Join(s.dir, key+cacheFileExt)
}

// Load returns the entry for key if it exists, parses, and is not older than
// maxAge. A non-positive maxAge disables the age check.
func (s *CacheStore) Load(key string, maxAge time.Duration) (*models.CacheEntry, bool) {
	entry, status := s.Lookup(key, maxAge)
	return entry, status == models.LoadHit
}

// Lookup is Load with the reason for a miss.
func (s *CacheStore) Lookup(key string, maxAge time.Duration) (*models.CacheEntry, models.LoadStatus) {
	if !ValidCacheKey(key) {
		return nil, models.LoadInvalidKey
	}

	path := s.filePath(key)
	data, err := s.files.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warnf(providers.TypeStore, "Unable to read cache entry %s: %s", path, err)
		}
		return nil, models.LoadMissing
	}

	entry, err := models.ParseCacheEntry(key, data)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Discarding corrupt cache entry %s: %s", path, err)
		if err := s.files.Remove(path); err != nil {
			s.logger.Debugf(providers.TypeStore, "Unable to remove %s: %s", path, err)
		}
		return nil, models.LoadCorrupt
	}

	if entry.Expired(s.now(), maxAge) {
		return nil, models.LoadExpired
	}
	return entry, models.LoadHit
}

// Store overwrites the entry for key unconditionally and returns what was
// written, including the fresh timestamp.
func (s *CacheStore) Store(key string, payload models.Payload) (*models.CacheEntry, error) {
	if !ValidCacheKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	entry := models.NewCacheEntry(key, payload, s.now())
	data, err := models.MarshalCacheEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.files.WriteFile(s.filePath(key), data, FileMode); err != nil {
		return nil, fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return entry, nil
}

// Keys lists the keys that currently have a file, valid or not.
func (s *CacheStore) Keys() ([]string, error) {
	names, err := s.files.ListDir(s.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key, ok := strings.CutSuffix(name, cacheFileExt)
		if !ok || !ValidCacheKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
