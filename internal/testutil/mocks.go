package testutil

import (
	"statusdash/internal/models"
	"statusdash/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockConfigStore implements interfaces.ConfigStoreInterface.
type MockConfigStore struct {
	mu          sync.Mutex
	Doc         *models.Document
	ReadErr     error
	UpdateErr   error
	UpdateCalls [][]byte
	ApplyCalls  []*models.DocumentUpdate
}

func (m *MockConfigStore) Read() (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Doc, nil
}

func (m *MockConfigStore) Update(partial []byte) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, partial)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	return m.Doc, nil
}

func (m *MockConfigStore) Apply(update *models.DocumentUpdate) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyCalls = append(m.ApplyCalls, update)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.Doc = m.Doc.Apply(update)
	return m.Doc, nil
}

func (m *MockConfigStore) Path() string { return "/mock/config.json" }

// MockCacheStore implements interfaces.CacheStoreInterface in memory.
// MockCompressor implements the persistence CompressorInterface as the
// identity transform and counts Close calls.
type MockCompressor struct {
	mu     sync.Mutex
	Closed int
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
}

func (m *MockCompressor) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

type MockCacheStore struct {
	mu       sync.Mutex
	Entries  map[string]*models.CacheEntry
	Now      func() time.Time
	StoreErr error
	Stores   int
}

func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{Entries: make(map[string]*models.CacheEntry), Now: time.Now}
}

func (m *MockCacheStore) Load(key string, maxAge time.Duration) (*models.CacheEntry, bool) {
	e, status := m.Lookup(key, maxAge)
	return e, status == models.LoadHit
}

func (m *MockCacheStore) Lookup(key string, maxAge time.Duration) (*models.CacheEntry, models.LoadStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Entries[key]
	if !ok {
		return nil, models.LoadMissing
	}
	if e.Expired(m.Now(), maxAge) {
		return nil, models.LoadExpired
	}
	return e, models.LoadHit
}

func (m *MockCacheStore) Store(key string, payload models.Payload) (*models.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return nil, m.StoreErr
	}
	m.Stores++
	e := models.NewCacheEntry(key, payload, m.Now())
	m.Entries[key] = e
	return e, nil
}

func (m *MockCacheStore) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// Clock is a settable time source for expiry tests.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      map[string]int
	CacheHits     int
	CacheMisses   int
	Lookups       map[string]int
	Fallbacks     map[string]int
	ConfigUpdates map[string]int
	Persists      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:      make(map[string]int),
		Lookups:       make(map[string]int),
		Fallbacks:     make(map[string]int),
		ConfigUpdates: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// IncStoreLookups counts under "key/outcome".
func (m *MockMetrics) IncStoreLookups(key string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups[key+"/"+outcome]++
}

func (m *MockMetrics) IncDefaultFallbacks(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks[key]++
}

func (m *MockMetrics) IncConfigUpdates(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfigUpdates[result]++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}
