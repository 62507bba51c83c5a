package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// WatchStats counts delivered events for one watched path.
type WatchStats struct {
	Events map[string]int64 `json:"events"` // keyed by event kind
	Total  int64            `json:"total"`
}

// Stats holds persistent per-watch counters.
type Stats struct {
	Watches     map[string]*WatchStats `json:"watches,omitempty"`
	TotalEvents int64                  `json:"total_events"`
}

// Manager handles loading and saving stats with debounced writes.
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager persisting to path; an empty
// path selects the default location.
func NewManager(path string) *Manager {
	if path == "" {
		path = defaultPath()
	}
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// defaultPath returns the default stats file path.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".driftwatch-stats.json"
	}
	return filepath.Join(home, ".driftwatch", "stats.json")
}

// Load loads stats from disk.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No stats file yet, start fresh
			m.stats = Stats{}
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &m.stats)
}

// Save saves stats to disk immediately.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats without acquiring the lock (caller must hold lock).
func (m *Manager) saveLocked() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// Record counts one delivered event and schedules a debounced save.
func (m *Manager) Record(watchPath, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stats.Watches == nil {
		m.stats.Watches = make(map[string]*WatchStats)
	}
	ws, ok := m.stats.Watches[watchPath]
	if !ok {
		ws = &WatchStats{Events: make(map[string]int64)}
		m.stats.Watches[watchPath] = ws
	}
	ws.Events[kind]++
	ws.Total++
	m.stats.TotalEvents++
	m.dirty = true

	// Cancel any pending save timer
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	// Schedule a debounced save
	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// TotalEvents returns the lifetime delivered-event count.
func (m *Manager) TotalEvents() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.TotalEvents
}

// Watch returns a copy of the counters for one watch path.
func (m *Manager) Watch(watchPath string) WatchStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws, ok := m.stats.Watches[watchPath]
	if !ok {
		return WatchStats{}
	}
	events := make(map[string]int64, len(ws.Events))
	for kind, count := range ws.Events {
		events[kind] = count
	}
	return WatchStats{Events: events, Total: ws.Total}
}

// Close ensures any pending saves are written.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
