package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Monitor MonitorConfig `yaml:"monitor"`
	Route   RouteConfig   `yaml:"route"`
}

// SimConfig holds settings for the simulator connection.
type SimConfig struct {
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	LocalPort int      `yaml:"local_port"` // 0 = ephemeral
	Timeout   Duration `yaml:"timeout"`    // per-receive window, 0 = block
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// MonitorConfig holds settings for the telemetry polling loop.
type MonitorConfig struct {
	Interval Duration `yaml:"interval"`
	Datarefs []string `yaml:"datarefs"`
}

// RouteConfig holds a waypoint list pushed to the simulator at startup.
type RouteConfig struct {
	Waypoints []Waypoint `yaml:"waypoints"`
}

// Waypoint is one configured route point.
type Waypoint struct {
	Lat float32 `yaml:"lat"`
	Lon float32 `yaml:"lon"`
	Alt float32 `yaml:"alt"` // meters above MSL
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			Host:      "localhost",
			Port:      49009,
			LocalPort: 0,
			Timeout:   Duration(100 * time.Millisecond),
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/xpcmon.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/flight.db",
		},
		Monitor: MonitorConfig{
			Interval: Duration(1 * time.Second),
			Datarefs: []string{
				"sim/flightmodel/position/latitude",
				"sim/flightmodel/position/longitude",
				"sim/flightmodel/position/elevation",
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.Port < 0 || c.Sim.Port > 65535 {
		return fmt.Errorf("sim.port %d out of range [0, 65535]", c.Sim.Port)
	}
	if c.Sim.LocalPort < 0 || c.Sim.LocalPort > 65535 {
		return fmt.Errorf("sim.local_port %d out of range [0, 65535]", c.Sim.LocalPort)
	}
	if c.Sim.Timeout < 0 {
		return fmt.Errorf("sim.timeout must be non-negative")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# xpcgo Configuration
# -------------------
# Supported Duration units: ns, us, ms, s, m, h, d (day), w (week)
# sim.timeout of 0 blocks receives indefinitely.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
