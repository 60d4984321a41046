package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TXT2PDF"

// envOverrides holds the TXT2PDF_* variables. Pointer fields stay nil when
// the variable is unset, so only variables that are present override the
// layers below.
type envOverrides struct {
	InputDir          *string        `envconfig:"INPUT_DIR"`
	OutputDir         *string        `envconfig:"OUTPUT_DIR"`
	FontName          *string        `envconfig:"FONT_NAME"`
	FontPath          *string        `envconfig:"FONT_PATH"`
	MaxUnitSizeMB     *float64       `envconfig:"MAX_UNIT_SIZE_MB"`
	Format            *string        `envconfig:"FORMAT"`
	PageSize          *string        `envconfig:"PAGE_SIZE"`
	Workers           *int           `envconfig:"WORKERS"`
	FileWorkers       *int           `envconfig:"FILE_WORKERS"`
	Timeout           *time.Duration `envconfig:"TIMEOUT"`
	Verify            *bool          `envconfig:"VERIFY"`
	BatchSize         *int           `envconfig:"BATCH_SIZE"`
	ShapeWorkers      *int           `envconfig:"SHAPE_WORKERS"`
	DropSeparatorRows *bool          `envconfig:"DROP_SEPARATOR_ROWS"`
	CacheSize         *int           `envconfig:"CACHE_SIZE"`
	LogLevel          *string        `envconfig:"LOG_LEVEL"`
	LogFormat         *string        `envconfig:"LOG_FORMAT"`
	LogFile           *string        `envconfig:"LOG_FILE"`
}

// knownEnvVars lists the variables read outside envOverrides.
var knownEnvVars = []string{EnvPrefix + "_CONFIG", EnvPrefix + "_ENV_FILE"}

// ApplyEnv overrides c with every TXT2PDF_* variable that is set.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrEnvParse, err)
	}

	set(&c.Input.Dir, env.InputDir)
	set(&c.Output.Dir, env.OutputDir)
	set(&c.Font.Name, env.FontName)
	set(&c.Font.Path, env.FontPath)
	set(&c.Chunking.MaxUnitSizeMB, env.MaxUnitSizeMB)
	set(&c.Render.Format, env.Format)
	set(&c.Render.PageSize, env.PageSize)
	set(&c.Render.Workers, env.Workers)
	set(&c.Render.FileWorkers, env.FileWorkers)
	set(&c.Render.Timeout, env.Timeout)
	set(&c.Render.Verify, env.Verify)
	set(&c.Layout.BatchSize, env.BatchSize)
	set(&c.Layout.ShapeWorkers, env.ShapeWorkers)
	set(&c.Layout.DropSeparatorRows, env.DropSeparatorRows)
	set(&c.Shaping.CacheSize, env.CacheSize)
	set(&c.Log.Level, env.LogLevel)
	set(&c.Log.Format, env.LogFormat)
	set(&c.Log.File, env.LogFile)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// UnknownEnvVars returns TXT2PDF_* variables in environ that no setting
// reads, so typos can be reported. environ has the os.Environ format.
func UnknownEnvVars(environ []string) []string {
	known := make(map[string]bool)
	for _, k := range knownEnvVars {
		known[k] = true
	}
	t := reflect.TypeOf(envOverrides{})
	for i := range t.NumField() {
		known[EnvPrefix+"_"+t.Field(i).Tag.Get("envconfig")] = true
	}

	var unknown []string
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") && !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
