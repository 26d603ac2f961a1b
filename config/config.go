package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Layout conventions inherited from the renderer this front-end was built
// against. Column positions are counted in half cells and rows are drawn at
// twice the font's natural line height.
const (
	DefaultDPIScale      = 2.0
	DefaultColumnFactor  = 2
	DefaultLineSpacing   = 2.0
	DefaultBaselineRatio = 0.7
)

const (
	DefaultRows          = 50
	DefaultCols          = 100
	DefaultWindowWidth   = 800
	DefaultWindowHeight  = 600
	DefaultFontSize      = 20.0
	DefaultReadBufSize   = 4096
	DefaultReadInterval  = time.Millisecond
	DefaultResizeEvery   = 100 * time.Millisecond
	DefaultCaptureFormat = "png"
)

type Config struct {
	Shell         string  `json:"shell"`
	Theme         string  `json:"theme"`
	FontPath      string  `json:"font_path"`
	FontSize      float64 `json:"font_size"`
	WindowWidth   float64 `json:"window_width"`
	WindowHeight  float64 `json:"window_height"`
	Rows          int     `json:"rows"`
	Cols          int     `json:"cols"`
	DPIScale      float64 `json:"dpi_scale"`
	ColumnFactor  int     `json:"column_factor"`
	LineSpacing   float64 `json:"line_spacing"`
	BaselineRatio float64 `json:"baseline_ratio"`
	ReadBufSize   int     `json:"read_buffer_size"`
	CaptureDir    string  `json:"capture_dir"`
	CaptureFormat string  `json:"capture_format"` // png, gif, bmp or tiff
	LogOutput     string  `json:"log_output"`
	Debug         bool    `json:"debug"`

	// Durations are stored in milliseconds.
	ReadIntervalMS int `json:"read_interval_ms"`
	ResizeEveryMS  int `json:"resize_interval_ms"`
}

func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Shell:          shell,
		Theme:          "gruvbox",
		FontSize:       DefaultFontSize,
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
		Rows:           DefaultRows,
		Cols:           DefaultCols,
		DPIScale:       DefaultDPIScale,
		ColumnFactor:   DefaultColumnFactor,
		LineSpacing:    DefaultLineSpacing,
		BaselineRatio:  DefaultBaselineRatio,
		ReadBufSize:    DefaultReadBufSize,
		ReadIntervalMS: int(DefaultReadInterval / time.Millisecond),
		ResizeEveryMS:  int(DefaultResizeEvery / time.Millisecond),
		CaptureFormat:  DefaultCaptureFormat,
	}
}

// ReadInterval is the pause between two pty reads.
func (c *Config) ReadInterval() time.Duration {
	return time.Duration(c.ReadIntervalMS) * time.Millisecond
}

// ResizeInterval is the cadence at which window geometry is applied to the
// session.
func (c *Config) ResizeInterval() time.Duration {
	return time.Duration(c.ResizeEveryMS) * time.Millisecond
}

// Validate replaces unusable values with defaults. A zero value in the
// settings file means "not set".
func (c *Config) Validate() {
	d := Default()
	if c.Shell == "" {
		c.Shell = d.Shell
	}
	if _, ok := Themes[c.Theme]; !ok {
		c.Theme = d.Theme
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	if c.Rows <= 0 {
		c.Rows = d.Rows
	}
	if c.Cols <= 0 {
		c.Cols = d.Cols
	}
	if c.DPIScale <= 0 {
		c.DPIScale = d.DPIScale
	}
	if c.ColumnFactor <= 0 {
		c.ColumnFactor = d.ColumnFactor
	}
	if c.LineSpacing <= 0 {
		c.LineSpacing = d.LineSpacing
	}
	if c.BaselineRatio <= 0 || c.BaselineRatio > 1 {
		c.BaselineRatio = d.BaselineRatio
	}
	if c.ReadBufSize <= 0 {
		c.ReadBufSize = d.ReadBufSize
	}
	if c.ReadIntervalMS <= 0 {
		c.ReadIntervalMS = d.ReadIntervalMS
	}
	if c.ResizeEveryMS <= 0 {
		c.ResizeEveryMS = d.ResizeEveryMS
	}
	switch c.CaptureFormat {
	case "png", "gif", "bmp", "tiff":
	default:
		c.CaptureFormat = d.CaptureFormat
	}
}

func (c *Config) GetTheme() *ColorScheme {
	p, ok := Themes[c.Theme]
	if !ok {
		return Themes["gruvbox"]
	}
	return p
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "termcanvas", "settings.json")
}

func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads settings from path, layered over the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

func (c *Config) Save() error {
	return c.SaveFile(ConfigPath())
}

func (c *Config) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
