// Package config loads viewer configuration from an optional YAML file.
// Every field has a compiled-in default so the viewer runs with no file at
// all; the file only overrides what it names.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full viewer configuration.
type Config struct {
	// Backend websocket endpoint.
	ServerURL string `yaml:"server_url"`

	// Reconnect backoff bounds and liveness ping cadence, as Go duration
	// strings ("500ms", "10s").
	ReconnectMin string `yaml:"reconnect_min"`
	ReconnectMax string `yaml:"reconnect_max"`
	PingInterval string `yaml:"ping_interval"`

	// Window and isometric scene metrics.
	WindowW int     `yaml:"window_w"`
	WindowH int     `yaml:"window_h"`
	TileW   float64 `yaml:"tile_w"`
	TileH   float64 `yaml:"tile_h"`

	// Effect thresholds.
	DangerThreshold  float64 `yaml:"danger_threshold"`  // danger above this starts the halo
	ConsumptionDelta float64 `yaml:"consumption_delta"` // resource drop that triggers a bar flash
	SpeechSeconds    float64 `yaml:"speech_seconds"`    // bubble display duration
	MaxParticles     int     `yaml:"max_particles"`     // per-region particle budget

	// Optional stream capture path (empty disables recording).
	JournalPath string `yaml:"journal_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:        "ws://localhost:8000/ws",
		ReconnectMin:     "500ms",
		ReconnectMax:     "15s",
		PingInterval:     "20s",
		WindowW:          1280,
		WindowH:          800,
		TileW:            96,
		TileH:            48,
		DangerThreshold:  0.45,
		ConsumptionDelta: 12,
		SpeechSeconds:    4,
		MaxParticles:     160,
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; a present but unparseable one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for name, s := range map[string]string{
		"reconnect_min": c.ReconnectMin,
		"reconnect_max": c.ReconnectMax,
		"ping_interval": c.PingInterval,
	} {
		if _, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	if c.TileW <= 0 || c.TileH <= 0 {
		return fmt.Errorf("config tile metrics must be positive (%gx%g)", c.TileW, c.TileH)
	}
	return nil
}

// Durations returns the parsed backoff and ping settings. Call after Load;
// values are known valid then.
func (c Config) Durations() (reconnectMin, reconnectMax, pingInterval time.Duration) {
	reconnectMin, _ = time.ParseDuration(c.ReconnectMin)
	reconnectMax, _ = time.ParseDuration(c.ReconnectMax)
	pingInterval, _ = time.ParseDuration(c.PingInterval)
	return reconnectMin, reconnectMax, pingInterval
}
