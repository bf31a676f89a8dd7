package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
	_ "time/tzdata"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

var (
	ErrInvalidDocument = errors.New("invalid configuration document")
	ErrTrailingData    = errors.New("unexpected data after JSON value")
)

func init() {
	validate.AddValidator("timezone", func(val any) bool {
		name, ok := val.(string)
		if !ok || name == "" {
			return false
		}
		_, err := time.LoadLocation(name)
		return err == nil
	})
}

func invalid(section string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, section, reason)
}

func validateStruct(section string, s any) error {
	v := validate.Struct(s)
	if !v.Validate() {
		return invalid(section, v.Errors.One())
	}
	return nil
}

func (s *DisplaySettings) Validate() error {
	if err := validateStruct("display", s); err != nil {
		return err
	}
	for i := range s.Modules {
		if err := validateStruct(fmt.Sprintf("display.modules[%d]", i), &s.Modules[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MQTTSettings) Validate() error {
	return validateStruct("mqtt", s)
}

func (s *UISettings) Validate() error {
	if err := validateStruct("ui.rotation", &s.Rotation); err != nil {
		return err
	}
	if err := validateStruct("ui.map", &s.Map); err != nil {
		return err
	}
	if len(s.Map.Center) != 2 {
		return invalid("ui.map.center", "must be [lat, lon]")
	}
	if lat := s.Map.Center[0]; lat < -90 || lat > 90 {
		return invalid("ui.map.center", "lat must be within [-90, 90]")
	}
	if lon := s.Map.Center[1]; lon < -180 || lon > 180 {
		return invalid("ui.map.center", "lon must be within [-180, 180]")
	}
	for panel, scroll := range s.Text.Scroll {
		section := "ui.text.scroll." + panel
		if err := validateStruct(section, &scroll); err != nil {
			return err
		}
		if err := scroll.Speed.validate(); err != nil {
			return invalid(section, err.Error())
		}
	}
	return nil
}

// Validate checks every section against its rules. Out of range values are
// reported, never clamped.
func (d *Document) Validate() error {
	return (&DocumentUpdate{
		Display:   &d.Display,
		APIKeys:   &d.APIKeys,
		MQTT:      &d.MQTT,
		Wifi:      &d.Wifi,
		StormMode: &d.StormMode,
		UI:        &d.UI,
	}).Validate()
}

// Validate checks only the sections present in the update.
func (u *DocumentUpdate) Validate() error {
	if u.Display != nil {
		if err := u.Display.Validate(); err != nil {
			return err
		}
	}
	if u.MQTT != nil {
		if err := u.MQTT.Validate(); err != nil {
			return err
		}
	}
	if u.UI != nil {
		if err := u.UI.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// decodeValue decodes exactly one JSON value. Unknown fields and trailing
// bytes are errors.
func decodeValue(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// parseSections decodes every section present in data on top of its
// defaults. Absent and null sections stay nil.
func parseSections(data []byte) (*DocumentUpdate, bool, error) {
	var raw map[string]json.RawMessage
	if err := decodeValue(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	u := &DocumentUpdate{}
	defaults := NewDefaultDocument()
	for key, msg := range raw {
		if isNull(msg) {
			continue
		}
		var target any
		switch key {
		case "display":
			u.Display = &defaults.Display
			target = u.Display
		case "api_keys":
			u.APIKeys = &defaults.APIKeys
			target = u.APIKeys
		case "mqtt":
			u.MQTT = &defaults.MQTT
			target = u.MQTT
		case "wifi":
			u.Wifi = &defaults.Wifi
			target = u.Wifi
		case "storm_mode":
			u.StormMode = &defaults.StormMode
			target = u.StormMode
		case "ui":
			u.UI = &defaults.UI
			target = u.UI
		default:
			return nil, false, invalid(key, "unknown section")
		}
		if err := decodeValue(msg, target); err != nil {
			return nil, false, invalid(key, err.Error())
		}
	}
	return u, raw != nil, nil
}

// ParseUpdate decodes a partial document. Unknown top-level or section keys
// are rejected, except inside ui. Fields missing from a present section
// take their defaults.
func ParseUpdate(data []byte) (*DocumentUpdate, error) {
	u, _, err := parseSections(data)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// ParseDocument decodes and validates a complete document. Missing
// sections take their defaults.
func ParseDocument(data []byte) (*Document, error) {
	u, isObject, err := parseSections(data)
	if err != nil {
		return nil, err
	}
	if !isObject {
		return nil, fmt.Errorf("%w: document must be a JSON object", ErrInvalidDocument)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return NewDefaultDocument().Apply(u), nil
}

// MarshalDocument renders the on-disk form: two-space indent, absent
// optional values omitted.
func MarshalDocument(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
