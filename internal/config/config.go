// Package config loads photosort settings and the persisted source and
// destination folders.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	appDirName       = "photosort"
	settingsFileName = "settings.toml"
	foldersFileName  = "folders.txt"
	logFileName      = "photosort.log"
)

// Logging controls log output. The terminal belongs to the sorter UI, so
// logs go to a file by default.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Preview bounds the image shown while sorting. MaxWidth and MaxHeight are
// preview pixels; CropFill is the share of the window used by the crop
// selector.
type Preview struct {
	MaxWidth    int     `toml:"max_width"`
	MaxHeight   int     `toml:"max_height"`
	CropFill    float64 `toml:"crop_fill"`
	JPEGQuality int     `toml:"jpeg_quality"`
}

// Config is the contents of settings.toml.
type Config struct {
	Logging Logging `toml:"logging"`
	Preview Preview `toml:"preview"`
}

// Dir returns override when set, otherwise the per-user config directory.
func Dir(override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return expandHome(strings.TrimSpace(override))
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// SettingsPath and FoldersPath name the files inside dir.
func SettingsPath(dir string) string { return filepath.Join(dir, settingsFileName) }
func FoldersPath(dir string) string  { return filepath.Join(dir, foldersFileName) }

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open settings: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse settings %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LogPath returns the configured log file, defaulting to one in dir.
func (c Config) LogPath(dir string) (string, error) {
	if c.Logging.File == "" {
		return filepath.Join(dir, logFileName), nil
	}
	return expandHome(c.Logging.File)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Preview.CropFill == 0 {
		c.Preview.CropFill = defaultCropFill
	}
	if c.Preview.JPEGQuality == 0 {
		c.Preview.JPEGQuality = defaultJPEGQuality
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Preview.MaxWidth <= 0 || c.Preview.MaxHeight <= 0 {
		return fmt.Errorf("preview: max_width and max_height must be positive")
	}
	if c.Preview.CropFill <= 0 || c.Preview.CropFill > 1 {
		return fmt.Errorf("preview.crop_fill: must be in (0, 1], got %v", c.Preview.CropFill)
	}
	if c.Preview.JPEGQuality < 1 || c.Preview.JPEGQuality > 100 {
		return fmt.Errorf("preview.jpeg_quality: must be in [1, 100], got %d", c.Preview.JPEGQuality)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
