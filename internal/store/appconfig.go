package store

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// RunState mirrors the status window's counters for persistence.
type RunState struct {
	IsRunning      bool   `json:"is_running"`
	IsPaused       bool   `json:"is_paused"`
	CurrentRange   string `json:"current_range"`
	RecruitsCount  int    `json:"recruits_count"`
	TotalProcessed int    `json:"total_processed"`
	FailedInvites  int    `json:"failed_invites"`
}

// Geometry is the last known status window placement: x, y, width, height.
type Geometry [4]int

// AppConfig is the content of config.json.
type AppConfig struct {
	WindowGeometry *Geometry `json:"window_geometry"`
	LastRange      string    `json:"last_range"`
	Faction        string    `json:"faction"`
	TotalRecruits  int       `json:"total_recruits"`
	State          RunState  `json:"state"`
}

// DefaultAppConfig is used when config.json is missing or unreadable.
func DefaultAppConfig() AppConfig {
	return AppConfig{Faction: config.DefaultFaction}
}

// ConfigStore guards config.json. Every setter persists immediately.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	cfg  AppConfig
}

// OpenConfig loads config.json. A missing file is created with defaults; an
// unreadable one falls back to defaults and the read error is returned for
// logging.
func OpenConfig(path string) (*ConfigStore, error) {
	s := &ConfigStore{path: path, cfg: DefaultAppConfig()}

	var cfg AppConfig
	if err := readJSON(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, s.save()
		}
		slog.Warn(config.MsgPersistFallback,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path,
			config.LogKeyError, err)
		return s, err
	}

	if cfg.Faction == "" {
		cfg.Faction = config.DefaultFaction
	}
	s.cfg = cfg
	return s, nil
}

// Get returns a copy of the current configuration.
func (s *ConfigStore) Get() AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	if cfg.WindowGeometry != nil {
		g := *cfg.WindowGeometry
		cfg.WindowGeometry = &g
	}
	return cfg
}

// SaveGeometry records the window placement.
func (s *ConfigStore) SaveGeometry(g Geometry) error {
	return s.update(func(c *AppConfig) { c.WindowGeometry = &g })
}

// SaveFaction records the selected faction.
func (s *ConfigStore) SaveFaction(faction string) error {
	return s.update(func(c *AppConfig) { c.Faction = faction })
}

// SaveLastRange records the last validated range input.
func (s *ConfigStore) SaveLastRange(r string) error {
	return s.update(func(c *AppConfig) { c.LastRange = r })
}

// SaveState records the run state.
func (s *ConfigStore) SaveState(st RunState) error {
	return s.update(func(c *AppConfig) { c.State = st })
}

// AddRecruits increments the lifetime recruit counter.
func (s *ConfigStore) AddRecruits(n int) error {
	if n <= 0 {
		return nil
	}
	return s.update(func(c *AppConfig) { c.TotalRecruits += n })
}

func (s *ConfigStore) update(fn func(*AppConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
	return s.save()
}

func (s *ConfigStore) save() error {
	return writeJSON(s.path, s.cfg)
}
