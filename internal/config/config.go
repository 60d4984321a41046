// Package config loads txt2pdf settings. Sources are layered as defaults,
// then a YAML file, then TXT2PDF_* environment variables; the CLI applies
// flags last and re-validates.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-txt2pdf/internal/logging"
	"github.com/alnah/go-txt2pdf/internal/render"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
	ErrEnvParse       = errors.New("failed to parse environment")
)

// Defaults.
const (
	DefaultInputDir      = "input_txt"
	DefaultOutputDir     = "output_pdf"
	DefaultFontName      = "Vazir"
	DefaultFontPath      = "font/Vazirmatn-Regular.ttf"
	DefaultMaxUnitSizeMB = 10
	DefaultFileWorkers   = 4
	DefaultBatchSize     = 100
	DefaultCacheSize     = 4096
	DefaultTimeout       = 30 * time.Second
	DefaultPageSize      = "a4"
	DefaultLogLevel      = "INFO"
	DefaultLogFormat     = "pretty"

	// MaxWorkers bounds every worker setting.
	MaxWorkers = 32
)

// InputConfig defines input settings.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig defines output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// FontConfig names the TrueType font used for rendering.
type FontConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ChunkingConfig controls how files are split.
type ChunkingConfig struct {
	MaxUnitSizeMB float64 `yaml:"maxUnitSizeMB"` // soft budget per artifact, MiB
}

// RenderConfig controls the document backend and its pools.
type RenderConfig struct {
	Format      string        `yaml:"format"`      // pdf, html, chrome
	PageSize    string        `yaml:"pageSize"`    // a4
	Workers     int           `yaml:"workers"`     // chunk workers per file, 0 = auto
	FileWorkers int           `yaml:"fileWorkers"` // files in flight
	Timeout     time.Duration `yaml:"timeout"`     // browser page load
	Verify      bool          `yaml:"verify"`      // read back page counts
}

// LayoutConfig controls line classification and batch shaping.
type LayoutConfig struct {
	BatchSize         int  `yaml:"batchSize"`
	ShapeWorkers      int  `yaml:"shapeWorkers"`
	DropSeparatorRows bool `yaml:"dropSeparatorRows"`
}

// ShapingConfig controls the shaping cache.
type ShapingConfig struct {
	CacheSize int `yaml:"cacheSize"` // 0 disables the cache
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Config is the full configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Font     FontConfig     `yaml:"font"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Render   RenderConfig   `yaml:"render"`
	Layout   LayoutConfig   `yaml:"layout"`
	Shaping  ShapingConfig  `yaml:"shaping"`
	Log      LogConfig      `yaml:"log"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Input:    InputConfig{Dir: DefaultInputDir},
		Output:   OutputConfig{Dir: DefaultOutputDir},
		Font:     FontConfig{Name: DefaultFontName, Path: DefaultFontPath},
		Chunking: ChunkingConfig{MaxUnitSizeMB: DefaultMaxUnitSizeMB},
		Render: RenderConfig{
			Format:      string(render.FormatPDF),
			PageSize:    DefaultPageSize,
			FileWorkers: DefaultFileWorkers,
			Timeout:     DefaultTimeout,
		},
		Layout:  LayoutConfig{BatchSize: DefaultBatchSize, ShapeWorkers: 1},
		Shaping: ShapingConfig{CacheSize: DefaultCacheSize},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment, then validates it. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := unmarshalStrict(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

var pageSizes = []string{DefaultPageSize}

var logLevels = []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}

// Validate checks value ranges. Called by Load, and again by callers that
// modify a Config afterwards.
func (c *Config) Validate() error {
	if !(c.Chunking.MaxUnitSizeMB > 0) {
		return invalid("chunking.maxUnitSizeMB", c.Chunking.MaxUnitSizeMB, "must be > 0")
	}
	if err := checkWorkers("render.workers", c.Render.Workers); err != nil {
		return err
	}
	if err := checkWorkers("render.fileWorkers", c.Render.FileWorkers); err != nil {
		return err
	}
	if err := checkWorkers("layout.shapeWorkers", c.Layout.ShapeWorkers); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return invalid("render.format", c.Render.Format, fmt.Sprintf("want one of %v", render.Formats()))
	}
	if !slices.Contains(pageSizes, strings.ToLower(c.Render.PageSize)) {
		return invalid("render.pageSize", c.Render.PageSize, fmt.Sprintf("want one of %v", pageSizes))
	}
	if c.Render.Timeout < 0 {
		return invalid("render.timeout", c.Render.Timeout, "must be >= 0")
	}
	if c.Layout.BatchSize < 1 {
		return invalid("layout.batchSize", c.Layout.BatchSize, "must be >= 1")
	}
	if c.Shaping.CacheSize < 0 {
		return invalid("shaping.cacheSize", c.Shaping.CacheSize, "must be >= 0")
	}
	if c.Font.Name == "" {
		return invalid("font.name", c.Font.Name, "must not be empty")
	}
	if c.Font.Path == "" {
		return invalid("font.path", c.Font.Path, "must not be empty")
	}
	if c.Log.Level != "" && !slices.Contains(logLevels, strings.ToUpper(c.Log.Level)) {
		return invalid("log.level", c.Log.Level, "want DEBUG, INFO, WARN or ERROR")
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return invalid("log.format", c.Log.Format, "want pretty or json")
	}
	return nil
}

func checkWorkers(field string, n int) error {
	if n < 0 || n > MaxWorkers {
		return invalid(field, n, fmt.Sprintf("want 0..%d", MaxWorkers))
	}
	return nil
}

func invalid(field string, value any, reason string) error {
	return fmt.Errorf("%w: %s=%v (%s)", ErrInvalidValue, field, value, reason)
}
