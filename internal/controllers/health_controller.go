package controllers

import (
	"fmt"
	"net/http"
	"statusdash/internal/models"
	"statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	"statusdash/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

const healthKey = "health"

type HealthController struct {
	logger    providers.Logger
	store     interfaces.ConfigStoreInterface
	widgets   services.WidgetServiceInterface
	startTime time.Time
	now       func() time.Time
}

type healthResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	ConfigOK      bool      `json:"config_ok"`
	CacheKeys     int       `json:"cache_keys"`
	Timestamp     time.Time `json:"timestamp"`
}

func (hc *HealthController) snapshot() healthResponse {
	now := hc.now()
	uptime := now.Sub(hc.startTime)

	_, err := hc.store.Read()
	configOK := err == nil

	keys, err := hc.widgets.Keys()
	if err != nil {
		hc.logger.Warnf(providers.TypeGet, "Unable to list cache keys: %s", err)
	}

	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		ConfigOK:      configOK,
		CacheKeys:     len(keys),
		Timestamp:     now.UTC(),
	}
	if !configOK {
		resp.Status = "degraded"
	}
	return resp
}

// Health reports liveness and the state of both stores. Every check is also
// recorded as the health widget's payload.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp := hc.snapshot()
	hc.recordResponse(resp)

	status := http.StatusOK
	if !resp.ConfigOK {
		status = http.StatusServiceUnavailable
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, gson)
}

// RecordSnapshot stores a fresh health snapshot without serving a request.
func (hc *HealthController) RecordSnapshot() {
	hc.recordResponse(hc.snapshot())
}

func (hc *HealthController) recordResponse(resp healthResponse) {
	hc.record(models.Payload{
		"status":         resp.Status,
		"uptime_seconds": int(resp.UptimeSeconds),
		"config_ok":      resp.ConfigOK,
		"timestamp":      resp.Timestamp,
	})
}

// RecordStartup stores the initial health snapshot.
func (hc *HealthController) RecordStartup() {
	hc.record(models.Payload{
		"status":     "ok",
		"started_at": hc.startTime.UTC(),
	})
}

func (hc *HealthController) record(payload models.Payload) {
	if _, err := hc.widgets.Ingest(healthKey, payload); err != nil {
		hc.logger.Warnf(providers.TypeStore, "Unable to record health snapshot: %s", err)
	}
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(logger providers.Logger, store interfaces.ConfigStoreInterface, widgets services.WidgetServiceInterface) *HealthController {
	return &HealthController{
		logger:    logger,
		store:     store,
		widgets:   widgets,
		startTime: time.Now(),
		now:       time.Now,
	}
}
