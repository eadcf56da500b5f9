package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// modelsFileName is the model side-cache file inside the cache directory.
const modelsFileName = "models.json"

// DefaultModelTTL bounds how long a remembered model choice is trusted.
// Longer than the content TTL: which upstream model works changes rarely,
// and re-probing failed models on every run is wasteful.
const DefaultModelTTL = 6 * 24 * time.Hour

// ModelCache remembers which upstream model last served each provider
// successfully, so later runs skip the failed-model probing. It is an
// explicit injected component, not ambient global state, so adapters can
// be tested with a fresh one.
type ModelCache struct {
	path string
	ttl  time.Duration

	mu sync.Mutex
}

type modelRecord struct {
	Model     string    `json:"model"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewModelCache creates a model side-cache stored under dir.
func NewModelCache(dir string, ttl time.Duration) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultModelTTL
	}
	return &ModelCache{path: filepath.Join(dir, modelsFileName), ttl: ttl}
}

// Get returns the remembered model for provider, if fresh.
func (m *ModelCache) Get(provider string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.load()
	rec, ok := records[provider]
	if !ok || rec.Model == "" {
		return "", false
	}
	if time.Since(rec.UpdatedAt) > m.ttl {
		return "", false
	}
	return rec.Model, true
}

// Put records that model successfully served provider.
func (m *ModelCache) Put(provider, model string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.load()
	records[provider] = modelRecord{Model: model, UpdatedAt: time.Now()}

	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	// Best effort: a failed write just means re-probing next run.
	_ = os.WriteFile(m.path, data, 0o644)
}

// load reads the records file; corruption degrades to an empty map.
func (m *ModelCache) load() map[string]modelRecord {
	records := make(map[string]modelRecord)
	data, err := os.ReadFile(m.path)
	if err != nil {
		return records
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return make(map[string]modelRecord)
	}
	return records
}
