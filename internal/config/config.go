// Package config loads and validates the DevPulse YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level DevPulse configuration.
type Config struct {
	Version       string          `yaml:"version"`
	User          string          `yaml:"user"`
	ScanDirs      []ScanDirectory `yaml:"scan_directories"`
	HiddenRepos   []string        `yaml:"hidden_repos,omitempty"`
	Server        ServerConfig    `yaml:"server"`
	AutoDiscovery AutoDiscovery   `yaml:"auto_discovery,omitempty"`
	Performance   Performance     `yaml:"performance,omitempty"`
	Notify        NotifyConfig    `yaml:"notify,omitempty"`
	Monitoring    Monitoring      `yaml:"monitoring,omitempty"`
	UI            UIPreferences   `yaml:"ui,omitempty"`
}

// ScanDirectory configures a single directory scanned for git repositories.
type ScanDirectory struct {
	Path            string   `yaml:"path"`
	Enabled         bool     `yaml:"enabled"`
	Recursive       bool     `yaml:"recursive"`
	MaxDepth        int      `yaml:"max_depth"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
	ExcludeFolders  []string `yaml:"exclude_folders,omitempty"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	DataDir  string `yaml:"data_dir"`
	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"` // advertised URL for CLI clients
}

// AutoDiscovery controls background rescans and filesystem watching.
type AutoDiscovery struct {
	Enabled      bool     `yaml:"enabled"`
	WatchPaths   []string `yaml:"watch_paths,omitempty"`
	ScanInterval string   `yaml:"scan_interval,omitempty"` // Go duration, e.g. "5m"
}

// Performance holds scan tuning knobs.
type Performance struct {
	MaxParallelScans int    `yaml:"max_parallel_scans"`
	CacheTTL         string `yaml:"cache_ttl,omitempty"` // Go duration, e.g. "5m"
}

// NotifyConfig configures the optional NATS event publisher.
type NotifyConfig struct {
	URL           string `yaml:"url,omitempty"` // empty disables publishing
	SubjectPrefix string `yaml:"subject_prefix,omitempty"`
}

// Monitoring configures metrics exposure.
type Monitoring struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsPath    string `yaml:"metrics_path,omitempty"`
}

// UIPreferences mirrors the dashboard defaults persisted server-side.
type UIPreferences struct {
	DefaultView string `yaml:"default_view,omitempty"` // grid | list | visualization
}

// Load reads, expands, defaults, and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// Overlay .env before expansion so ${VAR} references resolve.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version != "" && !strings.HasPrefix(cfg.Version, "1.") {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected 1.x)", cfg.Version)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = "./devpulse-data"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Performance.MaxParallelScans <= 0 {
		cfg.Performance.MaxParallelScans = 10
	}
	if cfg.Performance.CacheTTL == "" {
		cfg.Performance.CacheTTL = "5m"
	}
	if cfg.AutoDiscovery.ScanInterval == "" {
		cfg.AutoDiscovery.ScanInterval = "5m"
	}
	if cfg.Notify.SubjectPrefix == "" {
		cfg.Notify.SubjectPrefix = "devpulse"
	}
	if cfg.Monitoring.MetricsPath == "" {
		cfg.Monitoring.MetricsPath = "/metrics"
	}
	if cfg.UI.DefaultView == "" {
		cfg.UI.DefaultView = "grid"
	}

	for i := range cfg.ScanDirs {
		d := &cfg.ScanDirs[i]
		d.Path = expandPath(d.Path)
		if d.MaxDepth <= 0 {
			d.MaxDepth = 1
		}
		if d.ExcludePatterns == nil {
			d.ExcludePatterns = []string{"node_modules", ".venv", "__pycache__", ".pytest_cache"}
		}
	}
	for i := range cfg.AutoDiscovery.WatchPaths {
		cfg.AutoDiscovery.WatchPaths[i] = expandPath(cfg.AutoDiscovery.WatchPaths[i])
	}
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
		}
	}
	return filepath.Clean(p)
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Version: "1.0",
		User:    "default",
		ScanDirs: []ScanDirectory{
			{
				Path:      "~/projects",
				Enabled:   true,
				Recursive: true,
				MaxDepth:  2,
			},
		},
		Server: ServerConfig{
			Port:     8090,
			DataDir:  "./devpulse-data",
			LogLevel: "info",
		},
		AutoDiscovery: AutoDiscovery{
			Enabled:      true,
			ScanInterval: "5m",
		},
		Performance: Performance{
			MaxParallelScans: 10,
			CacheTTL:         "5m",
		},
		Monitoring: Monitoring{
			MetricsEnabled: true,
			MetricsPath:    "/metrics",
		},
		UI: UIPreferences{DefaultView: "grid"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
