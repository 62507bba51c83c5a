package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so intervals can be written as strings
// like "500ms" or "2s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Watch configures one watched path.
type Watch struct {
	Path string `yaml:"path"`
	// Interval overrides the global polling interval when set.
	Interval Duration `yaml:"interval,omitempty"`
}

// Config holds the watcher configuration.
type Config struct {
	// Interval is the default polling interval.
	Interval Duration `yaml:"interval"`
	// QueueSize bounds the shared event queue.
	QueueSize int `yaml:"queue_size"`
	// CacheDir stores persisted snapshots; empty selects the default
	// location, "none" disables persistence.
	CacheDir string  `yaml:"cache_dir,omitempty"`
	Watches  []Watch `yaml:"watches,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Interval:  Duration(time.Second),
		QueueSize: 1024,
	}
}

// Load reads and validates a YAML config file, applying defaults for
// anything left unset.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the watcher cannot run
// with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", time.Duration(c.Interval))
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	for i, w := range c.Watches {
		if w.Path == "" {
			return fmt.Errorf("watches[%d]: path is required", i)
		}
		if w.Interval < 0 {
			return fmt.Errorf("watches[%d]: interval must not be negative", i)
		}
	}
	return nil
}
