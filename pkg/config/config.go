// Package config defines the YAML configuration for a deckshot run.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
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

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the configuration for a capture run.
type Config struct {
	// Target presentation URL
	URL string `yaml:"url" json:"url"`

	// Capture limits and pacing
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Browser launch configuration
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Output configuration
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CaptureConfig defines capture loop budgets. Zero values fall back to
// the engine defaults.
type CaptureConfig struct {
	// MaxFrames caps the number of frames captured in one session
	MaxFrames int `yaml:"max_frames" json:"max_frames"`

	// MinInterval is the minimum spacing between two frame captures
	MinInterval Duration `yaml:"min_interval" json:"min_interval"`

	// RecaptureAttempts bounds the re-capture loop after a duplicate frame
	RecaptureAttempts int `yaml:"recapture_attempts" json:"recapture_attempts"`

	// NavigateRetries bounds retries of a failed navigation call
	NavigateRetries int `yaml:"navigate_retries" json:"navigate_retries"`

	// CallTimeout bounds every agent call
	CallTimeout Duration `yaml:"call_timeout" json:"call_timeout"`

	// PlatformHint overrides platform detection when set
	PlatformHint string `yaml:"platform_hint" json:"platform_hint"`

	// Gate holds best-effort unlock credentials (email, passcode)
	Gate GateConfig `yaml:"gate" json:"gate"`
}

// GateConfig holds credentials for best-effort access-gate bypass.
type GateConfig struct {
	Email    string `yaml:"email" json:"email"`
	Passcode string `yaml:"passcode" json:"passcode"`
}

// BrowserConfig defines browser launch behavior.
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	NavTimeout     Duration `yaml:"nav_timeout" json:"nav_timeout"`
}

// OutputConfig defines where captured frames and the run summary land.
type OutputConfig struct {
	Dir     string `yaml:"dir" json:"dir"`
	Summary bool   `yaml:"summary" json:"summary"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" json:"level"`

	// Dir enables rotated file logging when set
	Dir string `yaml:"dir" json:"dir"`
}

// Default returns a configuration with usable defaults for everything
// except the target URL.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			MaxFrames:         100,
			MinInterval:       Duration(500 * time.Millisecond),
			RecaptureAttempts: 3,
			NavigateRetries:   3,
			CallTimeout:       Duration(10 * time.Second),
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			NavTimeout:     Duration(30 * time.Second),
		},
		Output: OutputConfig{
			Dir:     "frames",
			Summary: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("target url is required")
	}

	if c.Capture.MaxFrames <= 0 {
		return fmt.Errorf("max_frames must be positive")
	}
	if c.Capture.MinInterval < 0 {
		return fmt.Errorf("min_interval cannot be negative")
	}
	if c.Capture.RecaptureAttempts < 0 {
		return fmt.Errorf("recapture_attempts cannot be negative")
	}
	if c.Capture.NavigateRetries < 0 {
		return fmt.Errorf("navigate_retries cannot be negative")
	}
	if c.Capture.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive")
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("viewport dimensions must be positive")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output dir is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
