// Package render turns layout elements into document artifacts.
//
// Three backends are available: a pure-Go PDF writer, a self-contained HTML
// document, and a headless Chrome printer that renders the HTML document to
// PDF. Every backend is safe for concurrent Build calls.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-txt2pdf/internal/layout"
)

// Sentinel errors.
var (
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrFontLoad        = errors.New("failed to load font")
	ErrNoFont          = errors.New("no font supplied")
	ErrWriteArtifact   = errors.New("failed to write artifact")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrUnsupportedElem = errors.New("unsupported layout element")
)

// Builder writes one artifact from an element sequence.
type Builder interface {
	Build(ctx context.Context, path string, elems []layout.Element, font *Font) error
	// Ext is the artifact file extension, without the dot.
	Ext() string
	Close() error
}

// Compile-time interface checks.
var (
	_ Builder = (*PDF)(nil)
	_ Builder = (*HTML)(nil)
	_ Builder = (*Chrome)(nil)
)

// Format names a backend.
type Format string

// Supported formats.
const (
	FormatPDF    Format = "pdf"
	FormatHTML   Format = "html"
	FormatChrome Format = "chrome"
)

// Formats lists the supported formats in display order.
func Formats() []Format {
	return []Format{FormatPDF, FormatHTML, FormatChrome}
}

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Page geometry and typography shared by all backends, in points.
const (
	A4Width         = 595.28
	A4Height        = 841.89
	DefaultMargin   = 36
	DefaultFontSize = 11
	DefaultLeading  = 16
	GridLineWidth   = 0.5
	DefaultTimeout  = 30 * time.Second
)

// Options tunes the backends.
type Options struct {
	FontSize float64
	Leading  float64
	Margin   float64

	// CreationDate is stamped into PDF metadata. A fixed value keeps
	// identical input producing identical content.
	CreationDate time.Time

	// Timeout bounds page loads in the Chrome backend.
	Timeout time.Duration
}

// DefaultOptions returns the standard A4 layout.
func DefaultOptions() Options {
	return Options{
		FontSize:     DefaultFontSize,
		Leading:      DefaultLeading,
		Margin:       DefaultMargin,
		CreationDate: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		Timeout:      DefaultTimeout,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.Leading <= 0 {
		o.Leading = d.Leading
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.CreationDate.IsZero() {
		o.CreationDate = d.CreationDate
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// New returns the backend for f.
func New(f Format, opts Options) (Builder, error) {
	switch f {
	case FormatPDF:
		return NewPDF(opts), nil
	case FormatHTML:
		return NewHTML(opts), nil
	case FormatChrome:
		return NewChrome(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Font is a TrueType font loaded into memory. It is immutable once loaded
// and shared by all renders.
type Font struct {
	Name string
	Path string
	Data []byte
}

// LoadFont reads the TrueType font at path.
func LoadFont(name, path string) (*Font, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided font path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFontLoad, path)
	}
	return &Font{Name: name, Path: path, Data: data}, nil
}

// PageCounter reads back the number of pages of a written artifact.
type PageCounter interface {
	PageCount(path string) (int, error)
}
