package models

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

type RotationSettings struct {
	Enabled     bool     `json:"enabled"`
	DurationSec int      `json:"duration_sec" validate:"required|int|min:3|max:3600"`
	Panels      []string `json:"panels"`
}

type ClockSettings struct {
	Format string `json:"format"`
}

type TemperatureSettings struct {
	Unit string `json:"unit"`
}

type FixedSettings struct {
	Clock       ClockSettings       `json:"clock"`
	Temperature TemperatureSettings `json:"temperature"`
}

// MapSettings.Center is [lat, lon].
type MapSettings struct {
	Provider    string    `json:"provider"`
	Center      []float64 `json:"center"`
	Zoom        int       `json:"zoom" validate:"int|min:0|max:18"`
	Interactive bool      `json:"interactive"`
	Controls    bool      `json:"controls"`
}

var scrollPresets = map[string]bool{"slow": true, "normal": true, "fast": true}

// ScrollSpeed is either a named preset or a number, never both.
type ScrollSpeed struct {
	Preset string
	Value  float64
}

func SpeedPreset(name string) ScrollSpeed {
	return ScrollSpeed{Preset: name}
}

func (s ScrollSpeed) MarshalJSON() ([]byte, error) {
	if s.Preset != "" {
		return json.Marshal(s.Preset)
	}
	return []byte(strconv.FormatFloat(s.Value, 'f', -1, 64)), nil
}

func (s *ScrollSpeed) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var preset string
		if err := json.Unmarshal(data, &preset); err != nil {
			return err
		}
		*s = ScrollSpeed{Preset: preset}
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("speed must be a number or one of slow, normal, fast: %w", err)
	}
	*s = ScrollSpeed{Value: value}
	return nil
}

func (s ScrollSpeed) validate() error {
	if s.Preset != "" {
		if !scrollPresets[s.Preset] {
			return fmt.Errorf("speed %q is not one of slow, normal, fast", s.Preset)
		}
		return nil
	}
	if s.Value <= 0 {
		return fmt.Errorf("speed must be positive")
	}
	return nil
}

type ScrollSettings struct {
	Enabled   bool        `json:"enabled"`
	Direction string      `json:"direction" validate:"required|in:left,up"`
	Speed     ScrollSpeed `json:"speed"`
	GapPx     int         `json:"gap_px" validate:"int|min:0|max:480"`
}

func newScroll(direction, speed string, gap int) ScrollSettings {
	return ScrollSettings{Enabled: true, Direction: direction, Speed: SpeedPreset(speed), GapPx: gap}
}

// UnmarshalJSON fills fields absent from data with the scroll defaults.
func (s *ScrollSettings) UnmarshalJSON(data []byte) error {
	type plain ScrollSettings
	p := plain(newScroll("left", "normal", 48))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ScrollSettings(p)
	return nil
}

type TextSettings struct {
	Scroll map[string]ScrollSettings `json:"scroll"`
}

// UnmarshalJSON replaces the default panels when scroll is given, instead
// of merging into them.
func (t *TextSettings) UnmarshalJSON(data []byte) error {
	type plain TextSettings
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Scroll == nil {
		p.Scroll = defaultScroll()
	}
	*t = TextSettings(p)
	return nil
}

func defaultScroll() map[string]ScrollSettings {
	return map[string]ScrollSettings{
		"news":        newScroll("left", "normal", 48),
		"ephemerides": newScroll("up", "slow", 24),
		"forecast":    newScroll("up", "slow", 24),
	}
}

// UISettings is the only section that tolerates unknown keys. They are kept
// in Extra and written back after the known fields.
type UISettings struct {
	Rotation RotationSettings `json:"rotation"`
	Fixed    FixedSettings    `json:"fixed"`
	Map      MapSettings      `json:"map"`
	Text     TextSettings     `json:"text"`

	Extra map[string]json.RawMessage `json:"-"`
}

type uiSettingsAlias UISettings

var uiKnownFields = []string{"rotation", "fixed", "map", "text"}

func (u UISettings) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(uiSettingsAlias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}

	keys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		if isKnownUIField(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(u.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON starts from the defaults. Unknown keys below the top level
// are dropped.
func (u *UISettings) UnmarshalJSON(data []byte) error {
	alias := uiSettingsAlias(NewDefaultUISettings())
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	alias.Extra = nil
	for k, v := range raw {
		if isKnownUIField(k) {
			continue
		}
		if alias.Extra == nil {
			alias.Extra = make(map[string]json.RawMessage)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, v); err != nil {
			return err
		}
		alias.Extra[k] = json.RawMessage(compact.Bytes())
	}

	*u = UISettings(alias)
	return nil
}

func isKnownUIField(name string) bool {
	for _, f := range uiKnownFields {
		if f == name {
			return true
		}
	}
	return false
}

func (u UISettings) clone() UISettings {
	if u.Rotation.Panels != nil {
		u.Rotation.Panels = append([]string(nil), u.Rotation.Panels...)
	}
	if u.Map.Center != nil {
		u.Map.Center = append([]float64(nil), u.Map.Center...)
	}
	if u.Text.Scroll != nil {
		scroll := make(map[string]ScrollSettings, len(u.Text.Scroll))
		for k, v := range u.Text.Scroll {
			scroll[k] = v
		}
		u.Text.Scroll = scroll
	}
	if u.Extra != nil {
		extra := make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		u.Extra = extra
	}
	return u
}

func NewDefaultUISettings() UISettings {
	return UISettings{
		Rotation: RotationSettings{
			Enabled:     true,
			DurationSec: 10,
			Panels:      []string{"news", "ephemerides", "moon", "forecast", "calendar"},
		},
		Fixed: FixedSettings{
			Clock:       ClockSettings{Format: "HH:mm"},
			Temperature: TemperatureSettings{Unit: "C"},
		},
		Map: MapSettings{
			Provider: "osm",
			Center:   []float64{0, 0},
			Zoom:     2,
		},
		Text: TextSettings{Scroll: defaultScroll()},
	}
}
