package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Training  TrainingConfig  `yaml:"training"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Limits    LimitsConfig    `yaml:"limits"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Dir         string `yaml:"dir"`
	SessionFile string `yaml:"session_file"`
	HistoryFile string `yaml:"history_file"`
}

type CatalogConfig struct {
	// Path to a catalog YAML file. Empty means the embedded default.
	Path string `yaml:"path"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ReducedVolumeConfig is the table behind the reduced-volume modifier:
// subtract N sets, never below the floor, for exercises in the listed
// categories. Template revisions disagree on which categories qualify, so
// this stays configurable.
type ReducedVolumeConfig struct {
	SubtractSets int      `yaml:"subtract_sets"`
	Floor        int      `yaml:"floor"`
	Categories   []string `yaml:"categories"`
}

type TrainingConfig struct {
	ReducedVolume  ReducedVolumeConfig `yaml:"reduced_volume"`
	DefaultRestSec int                 `yaml:"default_rest_sec"`
}

type AnalyticsConfig struct {
	StreakToleranceDays int     `yaml:"streak_tolerance_days"`
	RPEThreshold        float64 `yaml:"rpe_threshold"`
	RPEWindow           int     `yaml:"rpe_window"`
}

type LimitsConfig struct {
	MaxWeightKg float64 `yaml:"max_weight_kg"`
	MaxRPE      float64 `yaml:"max_rpe"`
}

// SessionPath returns the full path of the session-state resource.
func (s StorageConfig) SessionPath() string {
	return filepath.Join(s.Dir, s.SessionFile)
}

// HistoryPath returns the full path of the history resource.
func (s StorageConfig) HistoryPath() string {
	return filepath.Join(s.Dir, s.HistoryFile)
}

// Load reads config from a YAML file, fills defaults, then applies
// environment variable overrides. Env vars use the prefix SETLOG_:
//
//	SETLOG_SERVER_HOST, SETLOG_SERVER_PORT,
//	SETLOG_STORAGE_DIR, SETLOG_CATALOG_PATH,
//	SETLOG_TS_ENABLED, SETLOG_TS_HOSTNAME, SETLOG_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.SessionFile == "" {
		c.Storage.SessionFile = "workout_data.json"
	}
	if c.Storage.HistoryFile == "" {
		c.Storage.HistoryFile = "workout_history.json"
	}
	if c.Training.ReducedVolume.SubtractSets == 0 {
		c.Training.ReducedVolume.SubtractSets = 1
	}
	if c.Training.ReducedVolume.Floor == 0 {
		c.Training.ReducedVolume.Floor = 1
	}
	if c.Training.ReducedVolume.Categories == nil {
		c.Training.ReducedVolume.Categories = []string{"strength", "tendon"}
	}
	if c.Training.DefaultRestSec == 0 {
		c.Training.DefaultRestSec = 90
	}
	if c.Analytics.StreakToleranceDays == 0 {
		c.Analytics.StreakToleranceDays = 2
	}
	if c.Analytics.RPEThreshold == 0 {
		c.Analytics.RPEThreshold = 7
	}
	if c.Analytics.RPEWindow == 0 {
		c.Analytics.RPEWindow = 3
	}
	if c.Limits.MaxWeightKg == 0 {
		c.Limits.MaxWeightKg = 500
	}
	if c.Limits.MaxRPE == 0 {
		c.Limits.MaxRPE = 10
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SETLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SETLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SETLOG_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("SETLOG_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("SETLOG_TS_ENABLED"); v != "" {
		cfg.Tailscale.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SETLOG_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("SETLOG_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Training.ReducedVolume.SubtractSets < 0 {
		return fmt.Errorf("training.reduced_volume.subtract_sets must not be negative")
	}
	if c.Training.ReducedVolume.Floor < 1 {
		return fmt.Errorf("training.reduced_volume.floor must be at least 1")
	}
	if c.Analytics.StreakToleranceDays < 1 {
		return fmt.Errorf("analytics.streak_tolerance_days must be at least 1")
	}
	if c.Analytics.RPEThreshold < 0 || c.Analytics.RPEThreshold > 10 {
		return fmt.Errorf("analytics.rpe_threshold must be in [0,10]")
	}
	if c.Analytics.RPEWindow < 1 {
		return fmt.Errorf("analytics.rpe_window must be at least 1")
	}
	if c.Limits.MaxWeightKg <= 0 {
		return fmt.Errorf("limits.max_weight_kg must be positive")
	}
	if c.Limits.MaxRPE <= 0 || c.Limits.MaxRPE > 10 {
		return fmt.Errorf("limits.max_rpe must be in (0,10]")
	}
	return nil
}
