package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
scan_directories:
  - path: /tmp/projects
    enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Performance.MaxParallelScans)
	assert.Equal(t, "grid", cfg.UI.DefaultView)
	assert.Equal(t, 1, cfg.ScanDirs[0].MaxDepth)
	assert.Contains(t, cfg.ScanDirs[0].ExcludePatterns, "node_modules")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, `
version: "9.0"
scan_directories:
  - path: /tmp/projects
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported configuration version")
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("DEVPULSE_TEST_DIR", "/srv/repos")
	path := writeConfig(t, `
version: "1.0"
scan_directories:
  - path: ${DEVPULSE_TEST_DIR}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/repos", cfg.ScanDirs[0].Path)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no scan dirs", func(c *Config) { c.ScanDirs = nil }, "at least one scan directory"},
		{"duplicate path", func(c *Config) {
			c.ScanDirs = append(c.ScanDirs, c.ScanDirs[0])
		}, "duplicate path"},
		{"bad port", func(c *Config) { c.Server.Port = -1 }, "out of range"},
		{"bad ttl", func(c *Config) { c.Performance.CacheTTL = "soon" }, "cache_ttl"},
		{"bad view", func(c *Config) { c.UI.DefaultView = "mosaic" }, "default_view"},
		{"excessive depth", func(c *Config) {
			c.ScanDirs[0].Recursive = true
			c.ScanDirs[0].MaxDepth = 50
		}, "max_depth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				ScanDirs: []ScanDirectory{{Path: "/tmp/projects", MaxDepth: 1}},
			}
			applyDefaults(cfg)
			tc.mutate(cfg)
			err := Validate(cfg)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestInitAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devpulse.yaml")
	require.NoError(t, Init(path, false))

	// Second init without force must refuse to overwrite.
	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.AutoDiscovery.Enabled)
	assert.NotEmpty(t, cfg.ScanDirs)
}
