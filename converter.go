package txt2pdf

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/alnah/go-txt2pdf/internal/chunk"
	"github.com/alnah/go-txt2pdf/internal/fileutil"
	"github.com/alnah/go-txt2pdf/internal/layout"
	"github.com/alnah/go-txt2pdf/internal/logging"
	"github.com/alnah/go-txt2pdf/internal/render"
	"github.com/alnah/go-txt2pdf/internal/shape"
)

// Converter splits text files into chunks and renders each chunk into an
// artifact. Create with NewConverter, call Close when done. A Converter is
// safe for concurrent use.
type Converter struct {
	maxUnitSizeMB float64
	workers       int

	fontName string
	fontPath string
	fonts    *FontRegistry

	format     string
	builder    render.Builder
	renderOpts render.Options

	shaper       shape.Shaper
	cacheSize    int
	tables       layout.TablePolicy
	batchSize    int
	shapeWorkers int

	verify  bool
	counter render.PageCounter

	log zerolog.Logger

	layout *layout.Builder
}

// NewConverter builds a Converter. Configuration problems, including a
// missing font file, are reported here before any rendering starts and
// match ErrConfiguration.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		maxUnitSizeMB: DefaultMaxUnitSizeMB,
		fontName:      DefaultFontName,
		fontPath:      DefaultFontPath,
		format:        string(render.FormatPDF),
		renderOpts:    render.DefaultOptions(),
		cacheSize:     shape.DefaultCacheSize,
		batchSize:     layout.DefaultBatchSize,
		shapeWorkers:  1,
		log:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if math.IsNaN(c.maxUnitSizeMB) || c.maxUnitSizeMB <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSizeBudget, c.maxUnitSizeMB)
	}
	if c.workers < 0 || c.workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidWorkerCount, c.workers, MaxWorkers)
	}
	if !fileutil.FileExists(c.fontPath) {
		return nil, fmt.Errorf("%w: %s", ErrFontNotFound, c.fontPath)
	}

	if c.builder == nil {
		f, err := render.ParseFormat(c.format)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, c.format)
		}
		b, err := render.New(f, c.renderOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		c.builder = b
	}

	if c.fonts == nil {
		c.fonts = NewFontRegistry(nil)
	}
	if c.shaper == nil {
		cs, err := shape.NewCached(shape.NewBidi(), c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		c.shaper = cs
	}
	if c.verify && c.counter == nil {
		c.counter = render.Tabula{}
	}

	c.layout = &layout.Builder{
		Shaper:       c.shaper,
		BatchSize:    c.batchSize,
		Workers:      c.shapeWorkers,
		SubBatch:     layout.DefaultSubBatch,
		Tables:       c.tables,
		SpacerHeight: layout.DefaultSpacerHeight,
	}
	return c, nil
}

// Logger returns the logger the converter reports to.
func (c *Converter) Logger() zerolog.Logger {
	return c.log
}

// Close releases backend resources.
func (c *Converter) Close() error {
	return c.builder.Close()
}

// Ext returns the artifact extension of the configured backend.
func (c *Converter) Ext() string {
	return c.builder.Ext()
}

// ConvertFile reads in.Path and renders it into in.OutputDir. It never
// returns nil; failures are recorded on the report.
func (c *Converter) ConvertFile(ctx context.Context, in FileInput) *FileReport {
	start := time.Now()
	name := filepath.Base(in.Path)
	report := &FileReport{InputPath: in.Path}
	log := c.log.With().Str("file", name).Logger()

	log.Info().Msg("start file")

	text, err := readText(in.Path)
	if err != nil {
		log.Error().Err(err).Msg("input failed")
		report.Err = err
		report.Duration = time.Since(start)
		return report
	}

	c.convert(ctx, report, log, fileutil.Stem(in.Path), text, in.OutputDir, in.Progress)
	report.Duration = time.Since(start)
	return report
}

// ConvertText renders text that is already in memory. name supplies the
// artifact stem and the log context.
func (c *Converter) ConvertText(ctx context.Context, name, text, outputDir string, progress Progress) *FileReport {
	start := time.Now()
	report := &FileReport{InputPath: name}
	log := c.log.With().Str("file", filepath.Base(name)).Logger()

	c.convert(ctx, report, log, fileutil.Stem(name), text, outputDir, progress)
	report.Duration = time.Since(start)
	return report
}

// renderTask is one chunk, owned by the worker executing it.
type renderTask struct {
	File       string
	Index      int
	Text       string
	OutputPath string
}

func (c *Converter) convert(ctx context.Context, report *FileReport, log zerolog.Logger, stem, text, outputDir string, progress Progress) {
	count, err := chunk.EstimateCount(text, c.maxUnitSizeMB)
	if err != nil {
		report.Err = fmt.Errorf("%w: %v", ErrInvalidSizeBudget, err)
		return
	}
	parts := chunk.Slice(text, chunk.PlanRanges(chunk.RuneCount(text), count))
	total := len(parts)
	report.Chunks = total

	log.Info().
		Str("size", humanize.Bytes(uint64(len(text)))).
		Int("chunks", total).
		Msg("planned chunks")

	if outputDir == "" {
		outputDir = "."
	}
	if err := fileutil.EnsureDir(outputDir); err != nil {
		report.Err = fmt.Errorf("%w: %v", ErrOutputDir, err)
		log.Error().Err(report.Err).Str("dir", outputDir).Msg("output directory failed")
		return
	}

	file := report.InputPath
	ext := c.builder.Ext()
	tasks := make([]renderTask, total)
	report.Results = make([]ChunkResult, total)
	for i, part := range parts {
		tasks[i] = renderTask{
			File:       file,
			Index:      i + 1,
			Text:       part,
			OutputPath: PartPath(outputDir, stem, ext, i+1, total),
		}
		report.Results[i] = ChunkResult{Index: i + 1, OutputPath: tasks[i].OutputPath}
	}

	track := multiProgress{progressOrNop(progress), logging.NewProgressLogger(log)}
	completed := 0
	limit := min(ResolvePoolSize(c.workers), total)

	started := make([]bool, total)
	runBounded(ctx, limit, total,
		func(ctx context.Context, i int) error {
			started[i] = true
			start := time.Now()
			pages, err := c.renderChunk(ctx, log, tasks[i])
			report.Results[i].Pages = pages
			report.Results[i].Duration = time.Since(start)
			return err
		},
		func(i int, err error) {
			if err != nil {
				report.Results[i].Err = asChunkError(file, i+1, err)
				if !started[i] {
					log.Warn().Err(err).Int("chunk", i+1).Str("out", tasks[i].OutputPath).Msg("render skipped")
				}
			}
			completed++
			track.Update(completed, total)
		},
	)

	if cached, ok := c.shaper.(*shape.Cached); ok {
		hits, misses := cached.Stats()
		log.Debug().Int64("hits", hits).Int64("misses", misses).Int("entries", cached.Len()).Msg("shape cache")
	}
	log.Info().
		Int("ok", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("completed file")
}

// renderChunk registers the font, builds the elements and writes one
// artifact. Panics are recovered into errors.
func (c *Converter) renderChunk(ctx context.Context, log zerolog.Logger, t renderTask) (pages int, err error) {
	log = log.With().Int("chunk", t.Index).Logger()
	log.Info().
		Str("out", t.OutputPath).
		Int("text_len", len(t.Text)).
		Msg("render start")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		if err != nil {
			log.Error().Err(err).Str("out", t.OutputPath).Msg("render failed")
		}
	}()

	font, loaded, err := c.fonts.Ensure(c.fontName, c.fontPath)
	if err != nil {
		return 0, err
	}
	if loaded {
		log.Info().Str("font", c.fontName).Msg("font registered")
	} else {
		log.Debug().Str("font", c.fontName).Msg("font already registered")
	}

	elems, err := c.layout.BuildText(ctx, t.Text)
	if err != nil {
		return 0, err
	}
	if err := c.builder.Build(ctx, t.OutputPath, elems, font); err != nil {
		return 0, err
	}

	if c.verify && c.builder.Ext() == string(render.FormatPDF) {
		pages, err = c.counter.PageCount(t.OutputPath)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrVerify, err)
		}
		if pages < 1 {
			return 0, fmt.Errorf("%w: %s has no pages", ErrVerify, t.OutputPath)
		}
	}

	log.Info().Int("elements", len(elems)).Int("pages", pages).Msg("render complete")
	return pages, nil
}

func asChunkError(file string, index int, err error) error {
	if ce, ok := err.(*ChunkError); ok {
		return ce
	}
	return &ChunkError{File: file, Index: index, Err: err}
}

// readText reads a UTF-8 file and strips a leading byte order mark.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrDecodeInput, path)
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeInput, err)
	}
	return string(out), nil
}
