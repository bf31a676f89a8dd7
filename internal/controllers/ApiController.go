package controllers

import (
	"errors"
	"io"
	"net/http"
	"statusdash/internal/models"
	"statusdash/internal/persistence"
	"statusdash/internal/providers"
	"statusdash/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type detailResponse struct {
	Detail string `json:"detail"`
}

// ApiController serves widget payloads and raw cache entries.
type ApiController struct {
	logger  providers.Logger
	widgets services.WidgetServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, widgets services.WidgetServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		widgets: widgets,
		cache:   cache,
	}
}

func widgetCacheKey(key string) string {
	return "widget:" + key
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	body, _ := json.Marshal(detailResponse{Detail: detail})
	writeJSON(w, status, body)
}

// readBody reads at most maxRequestBodySize bytes. It writes the error
// response itself and returns false when the body cannot be used.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeDetail(w, http.StatusBadRequest, "unreadable request body")
		}
		return nil, false
	}
	return data, true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if errors.Is(err, services.ErrUnknownWidget) {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Unable to compute %s: %s", cacheKey, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Unable to encode %s: %s", cacheKey, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

// Widget returns the handler for one read-through widget endpoint.
func (ac *ApiController) Widget(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac.serveFromCacheOrCompute(w, widgetCacheKey(key), func() (any, error) {
			return ac.widgets.Get(key)
		})
	}
}

// GetEntry returns the stored entry for {key} with its provenance.
func (ac *ApiController) GetEntry(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	entry, err := ac.widgets.Entry(key)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			writeDetail(w, http.StatusNotFound, "not found")
			return
		}
		ac.logger.Errorf(providers.TypeGet, "Unable to load entry %s: %s", key, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	gson, err := json.Marshal(entry)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, gson)
}

// IngestEntry stores the JSON object in the request body under {key}.
func (ac *ApiController) IngestEntry(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	var payload models.Payload
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		writeDetail(w, http.StatusBadRequest, "payload must be a JSON object")
		return
	}

	entry, err := ac.widgets.Ingest(key, payload)
	if err != nil {
		if errors.Is(err, persistence.ErrInvalidKey) {
			writeDetail(w, http.StatusBadRequest, "invalid cache key")
			return
		}
		ac.logger.Errorf(providers.TypePost, "Unable to store %s: %s", key, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ac.cache.Del(widgetCacheKey(key))
	ac.logger.Infof(providers.TypePost, "Ingested %s", key)

	gson, err := json.Marshal(entry)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, gson)
}
