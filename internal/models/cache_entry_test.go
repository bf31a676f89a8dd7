package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheEntry_StampsUTC(t *testing.T) {
	local := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -5*3600))
	e := NewCacheEntry("weather", Payload{"temp": 21.5}, local)

	assert.Equal(t, "weather", e.Source)
	assert.Equal(t, time.UTC, e.FetchedAt.Location())
	assert.True(t, local.Equal(e.FetchedAt))
}

func TestNewCacheEntry_NilPayloadBecomesObject(t *testing.T) {
	e := NewCacheEntry("news", nil, time.Now())
	assert.NotNil(t, e.Payload)
}

func TestCacheEntry_Expired(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := NewCacheEntry("weather", Payload{}, at)

	assert.False(t, e.Expired(at.Add(15*time.Minute), 15*time.Minute))
	assert.True(t, e.Expired(at.Add(15*time.Minute+time.Second), 15*time.Minute))
	assert.False(t, e.Expired(at.Add(1000*time.Hour), 0))
}

func TestCacheEntry_MarshalParseRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
	e := NewCacheEntry("weather", Payload{"temp": 21.5, "summary": "clear"}, at)

	data, err := MarshalCacheEntry(e)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"source\": \"weather\""))
	assert.Contains(t, string(data), `"fetched_at": "2024-05-06T07:08:09.123Z"`)

	parsed, err := ParseCacheEntry("weather", data)
	require.NoError(t, err)
	assert.Equal(t, e, parsed)
}

func TestParseCacheEntry_AcceptsOffsetTimestamps(t *testing.T) {
	data := []byte(`{"source": "news", "fetched_at": "2024-05-06T07:08:09+00:00", "payload": {"items": []}}`)
	e, err := ParseCacheEntry("news", data)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), e.FetchedAt)
}

func TestParseCacheEntry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "\x00\x01garbage"},
		{"wrong source", `{"source": "news", "fetched_at": "2024-01-01T00:00:00Z", "payload": {}}`},
		{"missing timestamp", `{"source": "weather", "payload": {}}`},
		{"bad timestamp", `{"source": "weather", "fetched_at": "yesterday", "payload": {}}`},
		{"null payload", `{"source": "weather", "fetched_at": "2024-01-01T00:00:00Z", "payload": null}`},
		{"array payload", `{"source": "weather", "fetched_at": "2024-01-01T00:00:00Z", "payload": [1, 2]}`},
		{"unknown field", `{"source": "weather", "fetched_at": "2024-01-01T00:00:00Z", "payload": {}, "ttl": 5}`},
		{"trailing garbage", `{"source": "weather", "fetched_at": "2024-01-01T00:00:00Z", "payload": {}}` + "\x00\x01garbage"},
		{"second value", `{"source": "weather", "fetched_at": "2024-01-01T00:00:00Z", "payload": {}}{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCacheEntry("weather", []byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidCacheEntry)
		})
	}
}

func TestParseCacheEntry_TrailingData(t *testing.T) {
	data, err := MarshalCacheEntry(NewCacheEntry("weather", Payload{"temp": 3}, time.Now()))
	require.NoError(t, err)

	_, err = ParseCacheEntry("weather", append(data, "}garbage"...))
	assert.ErrorIs(t, err, ErrInvalidCacheEntry)
	assert.ErrorIs(t, err, ErrTrailingData)

	// trailing whitespace is not data
	_, err = ParseCacheEntry("weather", append(data, " \n\t"...))
	assert.NoError(t, err)
}

func TestLoadStatus_String(t *testing.T) {
	assert.Equal(t, "hit", LoadHit.String())
	assert.Equal(t, "missing", LoadMissing.String())
	assert.Equal(t, "expired", LoadExpired.String())
	assert.Equal(t, "corrupt", LoadCorrupt.String())
	assert.Equal(t, "invalid_key", LoadInvalidKey.String())
}
