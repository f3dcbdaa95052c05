// Package config defines the run configuration for browsertest: which
// harness to serve, which browser to prefer, and the orchestrator's tunable
// timing parameters. Configuration comes from an optional YAML file overlaid
// by CLI flags; defaults are always valid.
package config

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/browsertest/pkg/browser"
)

// DefaultExtraArgsEnv is the environment variable consulted for additional
// space-separated browser launch arguments.
const DefaultExtraArgsEnv = "BROWSERTEST_CHROME_ARGS"

// Config is the full run configuration.
type Config struct {
	// Harness selects what gets served and which page carries the tests.
	Harness HarnessConfig `yaml:"harness"`

	// Browser selects and parameterizes the browser to launch.
	Browser BrowserConfig `yaml:"browser"`

	// Timing holds the orchestrator's tunable durations.
	Timing TimingConfig `yaml:"timing"`
}

// HarnessConfig describes the static test harness.
type HarnessConfig struct {
	// Dir is the directory served as the harness root.
	Dir string `yaml:"dir"`

	// File is the harness page, concatenated onto the served base URL.
	File string `yaml:"file"`

	// ServerPort is the port for the harness server; 0 lets the OS pick.
	ServerPort int `yaml:"server_port"`

	// TabURLPattern is an optional glob matched against tab URLs in
	// addition to the default exact/trailing-path predicate.
	TabURLPattern string `yaml:"tab_url_pattern"`
}

// BrowserConfig describes browser selection and launch parameters.
type BrowserConfig struct {
	// Variant pins a specific browser variant. Empty means best available.
	Variant string `yaml:"variant"`

	// PreferRuntime probes the runtime-bundled browser before the
	// installed channels when resolving best-available.
	PreferRuntime bool `yaml:"prefer_runtime"`

	// Headless appends the headless launch flag.
	Headless bool `yaml:"headless"`

	// ExtraArgs are appended to the fixed launch argument set.
	ExtraArgs []string `yaml:"extra_args"`

	// ExtraArgsEnv names an environment variable holding additional
	// space-separated launch arguments. Defaults to DefaultExtraArgsEnv.
	ExtraArgsEnv string `yaml:"extra_args_env"`

	// DebugPortMin and DebugPortMax bound the random remote debugging
	// port range. A high private range keeps collision risk low.
	DebugPortMin int `yaml:"debug_port_min"`
	DebugPortMax int `yaml:"debug_port_max"`
}

// TimingConfig holds the orchestrator's tunable durations.
type TimingConfig struct {
	// Watchdog is the idle window with no console activity after which
	// the run times out.
	Watchdog time.Duration `yaml:"watchdog"`

	// TabRetry is the budget for finding the harness tab after launch.
	TabRetry time.Duration `yaml:"tab_retry"`
}

// DefaultConfig returns a configuration that is valid as-is apart from the
// harness directory, which the caller must supply.
func DefaultConfig() *Config {
	return &Config{
		Harness: HarnessConfig{
			File:       "index.html",
			ServerPort: 0,
		},
		Browser: BrowserConfig{
			ExtraArgsEnv: DefaultExtraArgsEnv,
			DebugPortMin: 32768,
			DebugPortMax: 60999,
		},
		Timing: TimingConfig{
			Watchdog: 60 * time.Second,
			TabRetry: 10 * time.Second,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Harness.Dir == "" {
		return fmt.Errorf("harness dir is required")
	}
	if c.Harness.File == "" {
		return fmt.Errorf("harness file is required")
	}
	if c.Harness.ServerPort < 0 || c.Harness.ServerPort > 65535 {
		return fmt.Errorf("server port %d out of range", c.Harness.ServerPort)
	}
	if c.Browser.Variant != "" && !browser.Variant(c.Browser.Variant).Valid() {
		return fmt.Errorf("unknown browser variant %q", c.Browser.Variant)
	}
	if c.Browser.DebugPortMin <= 1024 || c.Browser.DebugPortMax > 65535 ||
		c.Browser.DebugPortMin > c.Browser.DebugPortMax {
		return fmt.Errorf("invalid debug port range [%d, %d]",
			c.Browser.DebugPortMin, c.Browser.DebugPortMax)
	}
	if c.Timing.Watchdog <= 0 {
		return fmt.Errorf("watchdog duration must be positive")
	}
	if c.Timing.TabRetry <= 0 {
		return fmt.Errorf("tab retry budget must be positive")
	}
	if _, err := c.CompileTabPattern(); err != nil {
		return err
	}
	return nil
}

// CompileTabPattern compiles the optional tab URL glob. Returns nil when no
// pattern is configured.
func (c *Config) CompileTabPattern() (glob.Glob, error) {
	if c.Harness.TabURLPattern == "" {
		return nil, nil
	}
	g, err := glob.Compile(c.Harness.TabURLPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tab_url_pattern %q: %w", c.Harness.TabURLPattern, err)
	}
	return g, nil
}
