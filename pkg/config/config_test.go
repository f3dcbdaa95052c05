package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Harness.Dir = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "index.html", cfg.Harness.File)
	assert.Zero(t, cfg.Harness.ServerPort)
	assert.Equal(t, 60*time.Second, cfg.Timing.Watchdog)
	assert.Equal(t, 10*time.Second, cfg.Timing.TabRetry)
	assert.Equal(t, DefaultExtraArgsEnv, cfg.Browser.ExtraArgsEnv)
	assert.Equal(t, 32768, cfg.Browser.DebugPortMin)
	assert.Equal(t, 60999, cfg.Browser.DebugPortMax)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with dir are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing harness dir",
			mutate:  func(c *Config) { c.Harness.Dir = "" },
			wantErr: "harness dir",
		},
		{
			name:    "missing harness file",
			mutate:  func(c *Config) { c.Harness.File = "" },
			wantErr: "harness file",
		},
		{
			name:    "bad server port",
			mutate:  func(c *Config) { c.Harness.ServerPort = 70000 },
			wantErr: "server port",
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Browser.Variant = "netscape" },
			wantErr: "variant",
		},
		{
			name:   "known variant accepted",
			mutate: func(c *Config) { c.Browser.Variant = "chromium" },
		},
		{
			name:    "inverted debug port range",
			mutate:  func(c *Config) { c.Browser.DebugPortMin = 50000; c.Browser.DebugPortMax = 40000 },
			wantErr: "debug port range",
		},
		{
			name:    "zero watchdog",
			mutate:  func(c *Config) { c.Timing.Watchdog = 0 },
			wantErr: "watchdog",
		},
		{
			name:    "negative tab retry",
			mutate:  func(c *Config) { c.Timing.TabRetry = -time.Second },
			wantErr: "tab retry",
		},
		{
			name:    "malformed tab pattern",
			mutate:  func(c *Config) { c.Harness.TabURLPattern = "[" },
			wantErr: "tab_url_pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCompileTabPattern(t *testing.T) {
	cfg := validConfig(t)

	g, err := cfg.CompileTabPattern()
	require.NoError(t, err)
	assert.Nil(t, g, "no pattern configured means no glob")

	cfg.Harness.TabURLPattern = "http://127.0.0.1:*/index.html"
	g, err = cfg.CompileTabPattern()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.True(t, g.Match("http://127.0.0.1:51000/index.html"))
	assert.False(t, g.Match("http://example.com/index.html"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "browsertest.yaml")
	contents := `
harness:
  dir: /srv/harness
  file: suite.html
browser:
  variant: dev
  headless: true
  extra_args: ["--disable-gpu"]
timing:
  watchdog: 90s
  tab_retry: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/harness", cfg.Harness.Dir)
	assert.Equal(t, "suite.html", cfg.Harness.File)
	assert.Equal(t, "dev", cfg.Browser.Variant)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"--disable-gpu"}, cfg.Browser.ExtraArgs)
	assert.Equal(t, 90*time.Second, cfg.Timing.Watchdog)
	assert.Equal(t, 5*time.Second, cfg.Timing.TabRetry)

	// Unspecified fields keep defaults.
	assert.Equal(t, DefaultExtraArgsEnv, cfg.Browser.ExtraArgsEnv)
	assert.Equal(t, 32768, cfg.Browser.DebugPortMin)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("harness: ["), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
