package config

import (
	"fmt"
	"time"
)

// Validate checks semantic correctness after defaults were applied.
func Validate(cfg *Config) error {
	if len(cfg.ScanDirs) == 0 {
		return fmt.Errorf("at least one scan directory is required")
	}
	seen := make(map[string]bool, len(cfg.ScanDirs))
	for i, d := range cfg.ScanDirs {
		if d.Path == "" {
			return fmt.Errorf("scan_directories[%d]: path is required", i)
		}
		if seen[d.Path] {
			return fmt.Errorf("scan_directories[%d]: duplicate path %s", i, d.Path)
		}
		seen[d.Path] = true
		if d.Recursive && d.MaxDepth > 10 {
			return fmt.Errorf("scan_directories[%d]: max_depth %d exceeds limit of 10", i, d.MaxDepth)
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	if _, err := time.ParseDuration(cfg.Performance.CacheTTL); err != nil {
		return fmt.Errorf("performance.cache_ttl: %w", err)
	}
	if _, err := time.ParseDuration(cfg.AutoDiscovery.ScanInterval); err != nil {
		return fmt.Errorf("auto_discovery.scan_interval: %w", err)
	}

	switch cfg.UI.DefaultView {
	case "grid", "list", "visualization":
	default:
		return fmt.Errorf("ui.default_view %q must be grid, list, or visualization", cfg.UI.DefaultView)
	}

	switch cfg.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q must be debug, info, warn, or error", cfg.Server.LogLevel)
	}

	return nil
}

// CacheTTL returns the parsed scan cache TTL. Call after Load.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Performance.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ScanInterval returns the parsed auto-discovery rescan interval. Call after Load.
func (c *Config) ScanInterval() time.Duration {
	d, err := time.ParseDuration(c.AutoDiscovery.ScanInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
