package interfaces

import (
	"statusdash/internal/models"
	"time"
)

type ConfigStoreInterface interface {
	Read() (*models.Document, error)
	Update(partial []byte) (*models.Document, error)
	Apply(update *models.DocumentUpdate) (*models.Document, error)
	Path() string
}

type CacheStoreInterface interface {
	Load(key string, maxAge time.Duration) (*models.CacheEntry, bool)
	Lookup(key string, maxAge time.Duration) (*models.CacheEntry, models.LoadStatus)
	Store(key string, payload models.Payload) (*models.CacheEntry, error)
	Keys() ([]string, error)
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}
