package models

import "time"

const (
	MinDurationSeconds = 5
	MaxDurationSeconds = 600

	defaultModuleSeconds = 20
)

// Document is the dashboard configuration persisted as a single JSON file.
// Sections and fields missing from a file take their defaults; partial
// changes go through DocumentUpdate.
type Document struct {
	Display   DisplaySettings   `json:"display"`
	APIKeys   APIKeys           `json:"api_keys"`
	MQTT      MQTTSettings      `json:"mqtt"`
	Wifi      WifiSettings      `json:"wifi"`
	StormMode StormModeSettings `json:"storm_mode"`
	UI        UISettings        `json:"ui"`
}

type ModuleSettings struct {
	Name            string `json:"name" validate:"required"`
	Enabled         bool   `json:"enabled"`
	DurationSeconds int    `json:"duration_seconds" validate:"required|int|min:5|max:600"`
}

func newModule(name string) ModuleSettings {
	return ModuleSettings{Name: name, Enabled: true, DurationSeconds: defaultModuleSeconds}
}

// UnmarshalJSON fills fields absent from data with the module defaults.
func (m *ModuleSettings) UnmarshalJSON(data []byte) error {
	type plain ModuleSettings
	p := plain(newModule(""))
	if err := decodeValue(data, &p); err != nil {
		return err
	}
	*m = ModuleSettings(p)
	return nil
}

type DisplaySettings struct {
	Timezone           string           `json:"timezone" validate:"required|timezone"`
	Rotation           string           `json:"rotation"`
	ModuleCycleSeconds int              `json:"module_cycle_seconds" validate:"required|int|min:5|max:600"`
	Modules            []ModuleSettings `json:"modules"`
}

type APIKeys struct {
	Weather   *string `json:"weather,omitempty"`
	News      *string `json:"news,omitempty"`
	Astronomy *string `json:"astronomy,omitempty"`
	Calendar  *string `json:"calendar,omitempty"`
}

type MQTTSettings struct {
	Enabled  bool    `json:"enabled"`
	Host     string  `json:"host"`
	Port     int     `json:"port" validate:"required|int|min:1|max:65535"`
	Topic    string  `json:"topic"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

type WifiSettings struct {
	Interface string  `json:"interface"`
	SSID      *string `json:"ssid,omitempty"`
	PSK       *string `json:"psk,omitempty"`
}

type StormModeSettings struct {
	Enabled       bool       `json:"enabled"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
}

// DocumentUpdate carries any subset of the top-level sections. A nil
// section is left untouched by Apply.
type DocumentUpdate struct {
	Display   *DisplaySettings   `json:"display,omitempty"`
	APIKeys   *APIKeys           `json:"api_keys,omitempty"`
	MQTT      *MQTTSettings      `json:"mqtt,omitempty"`
	Wifi      *WifiSettings      `json:"wifi,omitempty"`
	StormMode *StormModeSettings `json:"storm_mode,omitempty"`
	UI        *UISettings        `json:"ui,omitempty"`
}

// Empty reports whether the update names no section at all.
func (u *DocumentUpdate) Empty() bool {
	return u.Display == nil && u.APIKeys == nil && u.MQTT == nil &&
		u.Wifi == nil && u.StormMode == nil && u.UI == nil
}

// Apply returns a copy of d with every section present in u replaced
// wholesale. d itself is not modified.
func (d *Document) Apply(u *DocumentUpdate) *Document {
	merged := d.Clone()
	if u == nil {
		return merged
	}
	if u.Display != nil {
		merged.Display = u.Display.clone()
	}
	if u.APIKeys != nil {
		merged.APIKeys = *u.APIKeys
	}
	if u.MQTT != nil {
		merged.MQTT = *u.MQTT
	}
	if u.Wifi != nil {
		merged.Wifi = *u.Wifi
	}
	if u.StormMode != nil {
		merged.StormMode = *u.StormMode
		if merged.StormMode.LastTriggered != nil {
			ts := merged.StormMode.LastTriggered.UTC()
			merged.StormMode.LastTriggered = &ts
		}
	}
	if u.UI != nil {
		merged.UI = u.UI.clone()
	}
	return merged
}

// Clone copies the slices and maps so the result can be mutated freely.
// Pointer fields to immutable values (strings, times) are shared.
func (d *Document) Clone() *Document {
	c := *d
	c.Display = d.Display.clone()
	c.UI = d.UI.clone()
	return &c
}

func (s DisplaySettings) clone() DisplaySettings {
	if s.Modules != nil {
		s.Modules = append([]ModuleSettings(nil), s.Modules...)
	}
	return s
}

func NewDefaultDocument() *Document {
	return &Document{
		Display: DisplaySettings{
			Timezone:           "Europe/Madrid",
			Rotation:           "left",
			ModuleCycleSeconds: defaultModuleSeconds,
			Modules: []ModuleSettings{
				newModule("clock"),
				newModule("weather"),
				newModule("moon"),
				newModule("news"),
				newModule("events"),
				newModule("calendar"),
			},
		},
		MQTT: MQTTSettings{
			Host:  "localhost",
			Port:  1883,
			Topic: "pantalla/reloj",
		},
		Wifi: WifiSettings{
			Interface: "wlan2",
		},
		UI: NewDefaultUISettings(),
	}
}
