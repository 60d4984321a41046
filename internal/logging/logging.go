// Package logging builds the zerolog loggers used by the CLI and library.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Format selects the console encoding.
type Format string

// Supported formats.
const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// ErrInvalidFormat is returned for an unknown log format.
var ErrInvalidFormat = errors.New("invalid log format")

// RunIDKey is the field carrying the run identifier on every entry.
const RunIDKey = "run_id"

// Config configures New.
type Config struct {
	// Level is DEBUG, INFO, WARN or ERROR. Unknown values mean INFO.
	Level  string
	Format Format
	// File, when set, receives JSON entries in addition to the console.
	File string
	// Writer is the console destination. Defaults to os.Stderr.
	Writer io.Writer
	// RunID is attached to every entry. Generated when empty.
	RunID string
	// NoColor disables ANSI colours in pretty output.
	NoColor bool
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseFormat validates a format name. Empty means pretty.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPretty:
		return FormatPretty, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// New returns a logger for cfg. The returned closer releases the log file
// and must be called when done; it is a no-op when no file is configured.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	console := cfg.Writer
	if console == nil {
		console = os.Stderr
	}
	if format == FormatPretty {
		console = zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		}
	}

	out := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		out = zerolog.MultiLevelWriter(console, f)
		closer = f
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str(RunIDKey, runID).
		Logger()
	return logger, closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304 -- configured log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
