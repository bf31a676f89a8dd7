package models

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

var ErrInvalidCacheEntry = errors.New("invalid cache entry")

// Payload is opaque to the cache; it only has to be a JSON object.
type Payload map[string]any

type CacheEntry struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Payload   Payload   `json:"payload"`
}

func NewCacheEntry(key string, payload Payload, now time.Time) *CacheEntry {
	if payload == nil {
		payload = Payload{}
	}
	return &CacheEntry{
		Source:    key,
		FetchedAt: now.UTC(),
		Payload:   payload,
	}
}

// Age is measured from FetchedAt to now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Expired reports whether the entry is older than maxAge. A non-positive
// maxAge never expires.
func (e *CacheEntry) Expired(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && e.Age(now) > maxAge
}

// ParseCacheEntry decodes an entry stored under key. The entry must name
// the same source, carry a timestamp and an object payload.
func ParseCacheEntry(key string, data []byte) (*CacheEntry, error) {
	var entry CacheEntry
	if err := decodeValue(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCacheEntry, err)
	}
	switch {
	case entry.Source != key:
		return nil, fmt.Errorf("%w: source %q does not match key %q", ErrInvalidCacheEntry, entry.Source, key)
	case entry.FetchedAt.IsZero():
		return nil, fmt.Errorf("%w: missing fetched_at", ErrInvalidCacheEntry)
	case entry.Payload == nil:
		return nil, fmt.Errorf("%w: payload is not an object", ErrInvalidCacheEntry)
	}
	entry.FetchedAt = entry.FetchedAt.UTC()
	return &entry, nil
}

func MarshalCacheEntry(e *CacheEntry) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadStatus explains why a cache lookup did or did not produce an entry.
type LoadStatus int

const (
	LoadHit LoadStatus = iota
	LoadMissing
	LoadExpired
	LoadCorrupt
	LoadInvalidKey
)

func (s LoadStatus) String() string {
	switch s {
	case LoadHit:
		return "hit"
	case LoadExpired:
		return "expired"
	case LoadCorrupt:
		return "corrupt"
	case LoadInvalidKey:
		return "invalid_key"
	default:
		return "missing"
	}
}
