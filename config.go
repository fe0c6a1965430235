package ember

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Config holds everything a Game needs at construction. Zero fields are
// replaced by DefaultConfig values in NewGame, so a partially filled struct
// is fine.
type Config struct {
	Title  string `toml:"title"`
	Parent string `toml:"parent"` // surface target name; informational for desktop hosts
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	// Framerate is the fixed simulation rate in updates per second.
	Framerate float64 `toml:"framerate"`
	// MaxAccumulation caps unconsumed time in milliseconds. Raised to the
	// step length whenever the framerate makes a step longer than this.
	MaxAccumulation float64 `toml:"max_accumulation"`
	TimeScale       float64 `toml:"time_scale"`
	// BootRetry is how long boot waits before re-checking host readiness.
	BootRetry time.Duration `toml:"boot_retry"`

	BackgroundColor string `toml:"background_color"` // "#rrggbb[aa]"
	ShowFPS         bool   `toml:"show_fps"`
	Debug           bool   `toml:"debug"`
	ScreenshotDir   string `toml:"screenshot_dir"`
	AssetRoot       string `toml:"asset_root"`
	Seed            uint64 `toml:"seed"` // 0 seeds from the clock

	Audio   AudioConfig   `toml:"audio"`
	Logging LoggingConfig `toml:"logging"`

	// Logger overrides the logger built from Logging.
	Logger *zap.Logger `toml:"-"`
}

// AudioConfig controls the sound output.
type AudioConfig struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
}

// LoggingConfig selects level ("debug", "info", ...) and format ("json" or "console").
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults: an 800x600 surface, 60 updates
// per second, 32ms of catch-up and a 13ms boot retry.
const (
	DefaultWidth           = 800
	DefaultHeight          = 600
	DefaultFramerate       = 60
	DefaultMaxAccumulation = 32
	DefaultBootRetry       = 13 * time.Millisecond
	DefaultSampleRate      = 44100
)

// DefaultConfig returns a Config populated with framework defaults.
func DefaultConfig() Config {
	return Config{
		Title:           "ember",
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Framerate:       DefaultFramerate,
		MaxAccumulation: DefaultMaxAccumulation,
		TimeScale:       1,
		BootRetry:       DefaultBootRetry,
		BackgroundColor: "#000000",
		ScreenshotDir:   "screenshots",
		AssetRoot:       "assets",
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: DefaultSampleRate,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := DecodeConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig parses TOML data and overlays it on DefaultConfig.
func DecodeConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Framerate <= 0 {
		c.Framerate = d.Framerate
	}
	if c.MaxAccumulation <= 0 {
		c.MaxAccumulation = d.MaxAccumulation
	}
	if c.TimeScale == 0 {
		c.TimeScale = d.TimeScale
	}
	if c.BootRetry <= 0 {
		c.BootRetry = d.BootRetry
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = d.BackgroundColor
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	return c
}
