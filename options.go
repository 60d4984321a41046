package txt2pdf

import (
	"github.com/rs/zerolog"

	"github.com/alnah/go-txt2pdf/internal/layout"
	"github.com/alnah/go-txt2pdf/internal/render"
	"github.com/alnah/go-txt2pdf/internal/shape"
)

// Option configures a Converter.
type Option func(*Converter)

// DefaultMaxUnitSizeMB is the default soft size budget per artifact.
const DefaultMaxUnitSizeMB = 10

// WithMaxUnitSizeMB sets the soft size budget, in MiB, that drives the chunk
// count. Must be positive.
func WithMaxUnitSizeMB(mb float64) Option {
	return func(c *Converter) {
		c.maxUnitSizeMB = mb
	}
}

// WithWorkers bounds concurrent chunk renders per file. Zero picks a value
// from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.workers = n
	}
}

// WithFont sets the font family name and TrueType file.
func WithFont(name, path string) Option {
	return func(c *Converter) {
		c.fontName = name
		c.fontPath = path
	}
}

// WithFontRegistry shares a registry between converters.
func WithFontRegistry(r *FontRegistry) Option {
	return func(c *Converter) {
		c.fonts = r
	}
}

// WithFormat selects a built-in backend by name: pdf, html or chrome.
func WithFormat(format string) Option {
	return func(c *Converter) {
		c.format = format
	}
}

// WithBuilder installs a custom document backend. It takes precedence over
// WithFormat.
func WithBuilder(b render.Builder) Option {
	return func(c *Converter) {
		c.builder = b
	}
}

// WithRenderOptions tunes the built-in backends.
func WithRenderOptions(o render.Options) Option {
	return func(c *Converter) {
		c.renderOpts = o
	}
}

// WithShaper replaces the default cached bidi shaper.
func WithShaper(s shape.Shaper) Option {
	return func(c *Converter) {
		c.shaper = s
	}
}

// WithShapeCacheSize sets the capacity of the default shaper's cache.
// Zero disables caching.
func WithShapeCacheSize(n int) Option {
	return func(c *Converter) {
		c.cacheSize = n
	}
}

// WithTablePolicy sets the table filtering policy.
func WithTablePolicy(p layout.TablePolicy) Option {
	return func(c *Converter) {
		c.tables = p
	}
}

// WithBatchSize sets how many prose lines are shaped per batch.
func WithBatchSize(n int) Option {
	return func(c *Converter) {
		c.batchSize = n
	}
}

// WithShapeWorkers bounds the goroutines shaping one batch. Values <= 1
// shape inline.
func WithShapeWorkers(n int) Option {
	return func(c *Converter) {
		c.shapeWorkers = n
	}
}

// WithVerify reads back the page count of every PDF artifact.
func WithVerify(enabled bool) Option {
	return func(c *Converter) {
		c.verify = enabled
	}
}

// WithPageCounter replaces the page counter used by WithVerify.
func WithPageCounter(pc render.PageCounter) Option {
	return func(c *Converter) {
		c.counter = pc
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) {
		c.log = l
	}
}
