package services

import (
	"errors"
	"fmt"
	"sort"
	"statusdash/internal/models"
	"statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	"statusdash/internal/structures"
	"time"
)

var (
	ErrUnknownWidget = errors.New("unknown widget")
	ErrEntryNotFound = errors.New("cache entry not found")
)

const statusUnavailable = "unavailable"

// PayloadFactory builds a fresh default payload on every call.
type PayloadFactory func() models.Payload

type WidgetServiceInterface interface {
	Get(key string) (models.Payload, error)
	Ingest(key string, payload models.Payload) (*models.CacheEntry, error)
	Entry(key string) (*models.CacheEntry, error)
	Keys() ([]string, error)
	Widgets() []string
}

// WidgetService serves widget payloads from the cache store, falling back
// to a stored default when the entry is missing, expired or corrupt.
type WidgetService struct {
	store    interfaces.CacheStoreInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
	maxAge   time.Duration
	defaults map[string]PayloadFactory
}

func NewWidgetService(conf *structures.Config, store interfaces.CacheStoreInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) *WidgetService {
	return &WidgetService{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		maxAge:   conf.Widgets.MaxAge,
		defaults: DefaultPayloads(),
	}
}

// DefaultPayloads is the registry of widgets with their placeholder data.
func DefaultPayloads() map[string]PayloadFactory {
	return map[string]PayloadFactory{
		"weather": func() models.Payload {
			return models.Payload{
				"status":      statusUnavailable,
				"temperature": nil,
				"unit":        "°C",
				"condition":   "",
				"location":    "",
			}
		},
		"news": func() models.Payload {
			return models.Payload{
				"status":   statusUnavailable,
				"headline": "",
				"items":    []any{},
			}
		},
		"astronomy": func() models.Payload {
			return models.Payload{
				"status":     statusUnavailable,
				"moon_phase": "",
				"sunrise":    "",
				"sunset":     "",
			}
		},
		"calendar": func() models.Payload {
			return models.Payload{
				"status":   statusUnavailable,
				"upcoming": []any{},
			}
		},
		"health": func() models.Payload {
			return models.Payload{
				"status": statusUnavailable,
			}
		},
	}
}

func (ws *WidgetService) Widgets() []string {
	names := make([]string, 0, len(ws.defaults))
	for name := range ws.defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the cached payload for a known widget. On a miss the default
// payload is stored and returned; a failed store still serves the default.
func (ws *WidgetService) Get(key string) (models.Payload, error) {
	factory, ok := ws.defaults[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, key)
	}

	entry, status := ws.store.Lookup(key, ws.maxAge)
	ws.metrics.IncStoreLookups(key, status.String())
	if status == models.LoadHit {
		return entry.Payload, nil
	}

	ws.logger.Debugf(providers.TypeStore, "Serving default payload for %s (%s)", key, status)
	ws.metrics.IncDefaultFallbacks(key)
	payload := factory()
	if _, err := ws.persist(key, payload); err != nil {
		ws.logger.Errorf(providers.TypeStore, "Unable to store default payload for %s: %s", key, err)
	}
	return payload, nil
}

// Ingest stores caller-supplied data under key, replacing what was there.
func (ws *WidgetService) Ingest(key string, payload models.Payload) (*models.CacheEntry, error) {
	entry, err := ws.persist(key, payload)
	if err != nil {
		return nil, err
	}
	ws.logger.Debugf(providers.TypeStore, "Stored %s (%d fields)", key, len(entry.Payload))
	return entry, nil
}

// Entry returns the stored entry regardless of its age.
func (ws *WidgetService) Entry(key string) (*models.CacheEntry, error) {
	entry, status := ws.store.Lookup(key, 0)
	if status != models.LoadHit {
		return nil, fmt.Errorf("%w: %s (%s)", ErrEntryNotFound, key, status)
	}
	return entry, nil
}

func (ws *WidgetService) Keys() ([]string, error) {
	return ws.store.Keys()
}

func (ws *WidgetService) persist(key string, payload models.Payload) (*models.CacheEntry, error) {
	start := time.Now()
	entry, err := ws.store.Store(key, payload)
	ws.metrics.ObservePersistenceDuration(time.Since(start))
	return entry, err
}
