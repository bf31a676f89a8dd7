package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"statusdash/internal/models"
	"statusdash/internal/persistence"
	"statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	"statusdash/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

const (
	invalidConfiguration = "invalid configuration"
	stormModeKey         = "storm_mode"
)

type ConfigController struct {
	logger  providers.Logger
	store   interfaces.ConfigStoreInterface
	widgets services.WidgetServiceInterface
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewConfigController(logger providers.Logger, store interfaces.ConfigStoreInterface, widgets services.WidgetServiceInterface, metrics providers.MetricsProviderInterface) *ConfigController {
	return &ConfigController{
		logger:  logger,
		store:   store,
		widgets: widgets,
		metrics: metrics,
		now:     time.Now,
	}
}

func (cc *ConfigController) writeDocument(w http.ResponseWriter, doc *models.Document) {
	data, err := models.MarshalDocument(doc)
	if err != nil {
		cc.logger.Errorf(providers.TypeApp, "Unable to encode configuration: %s", err)
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (cc *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := cc.store.Read()
	if err != nil {
		cc.logger.Errorf(providers.TypeGet, "Unable to read configuration: %s", err)
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
		return
	}
	cc.writeDocument(w, doc)
}

// UpdateConfig applies a partial document. Rejected input leaves the
// stored configuration untouched.
func (cc *ConfigController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		cc.metrics.IncConfigUpdates("invalid")
		return
	}

	doc, err := cc.store.Update(data)
	if err != nil {
		cc.updateFailed(w, err)
		return
	}
	cc.metrics.IncConfigUpdates("ok")
	cc.writeDocument(w, doc)
}

func (cc *ConfigController) updateFailed(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persistence.ErrConfigValidation):
		cc.logger.Warnf(providers.TypePost, "Rejected configuration update: %s", err)
		cc.metrics.IncConfigUpdates("invalid")
		writeDetail(w, http.StatusBadRequest, invalidConfiguration)
	case errors.Is(err, persistence.ErrConfigCorrupt):
		cc.logger.Errorf(providers.TypePost, "Stored configuration is corrupt: %s", err)
		cc.metrics.IncConfigUpdates("corrupt")
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
	default:
		cc.logger.Errorf(providers.TypePost, "Unable to update configuration: %s", err)
		cc.metrics.IncConfigUpdates("error")
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
	}
}

func (cc *ConfigController) writeStormMode(w http.ResponseWriter, storm models.StormModeSettings) {
	payload := models.Payload{"enabled": storm.Enabled, "last_triggered": storm.LastTriggered}
	if _, err := cc.widgets.Ingest(stormModeKey, payload); err != nil {
		cc.logger.Warnf(providers.TypeStore, "Unable to record storm mode snapshot: %s", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// TriggerStorm enables storm mode and stamps the trigger time.
func (cc *ConfigController) TriggerStorm(w http.ResponseWriter, r *http.Request) {
	triggered := cc.now().UTC()
	doc, err := cc.store.Apply(&models.DocumentUpdate{
		StormMode: &models.StormModeSettings{Enabled: true, LastTriggered: &triggered},
	})
	if err != nil {
		cc.updateFailed(w, err)
		return
	}
	cc.metrics.IncConfigUpdates("ok")
	cc.logger.Infof(providers.TypePost, "Storm mode triggered at %s", triggered.Format(time.RFC3339))
	cc.writeStormMode(w, doc.StormMode)
}

func (cc *ConfigController) GetStormMode(w http.ResponseWriter, r *http.Request) {
	doc, err := cc.store.Read()
	if err != nil {
		cc.logger.Errorf(providers.TypeGet, "Unable to read configuration: %s", err)
		writeDetail(w, http.StatusInternalServerError, invalidConfiguration)
		return
	}
	cc.writeStormMode(w, doc.StormMode)
}

// UpdateStormMode merges the fields present in the body into the current
// storm mode settings.
func (cc *ConfigController) UpdateStormMode(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		cc.metrics.IncConfigUpdates("invalid")
		return
	}

	doc, err := cc.store.Read()
	if err != nil {
		cc.updateFailed(w, err)
		return
	}

	storm := doc.StormMode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&storm); err != nil {
		cc.logger.Warnf(providers.TypePost, "Rejected storm mode update: %s", err)
		cc.metrics.IncConfigUpdates("invalid")
		writeDetail(w, http.StatusBadRequest, invalidConfiguration)
		return
	}

	doc, err = cc.store.Apply(&models.DocumentUpdate{StormMode: &storm})
	if err != nil {
		cc.updateFailed(w, err)
		return
	}
	cc.metrics.IncConfigUpdates("ok")
	cc.logger.Infof(providers.TypePost, "Storm mode updated: enabled=%t", doc.StormMode.Enabled)
	cc.writeStormMode(w, doc.StormMode)
}
