package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	txt2pdf "github.com/alnah/go-txt2pdf"
	"github.com/alnah/go-txt2pdf/internal/config"
	"github.com/alnah/go-txt2pdf/internal/layout"
	"github.com/alnah/go-txt2pdf/internal/render"
)

// ErrConversionFailed is returned when at least one file had a failure.
var ErrConversionFailed = errors.New("conversion failed")

// convertFlags holds the flags that override configuration.
type convertFlags struct {
	maxSizeMB         float64
	format            string
	workers           int
	fileWorkers       int
	timeout           time.Duration
	verify            bool
	fontName          string
	fontPath          string
	batchSize         int
	shapeWorkers      int
	dropSeparatorRows bool
	cacheSize         int
}

func convertCmd(env *Environment) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert .txt files into document parts",
		Long: `Convert every .txt file in input (a directory, scanned without recursion,
or a single file) into document parts under output.

A file larger than --max-size is split on character boundaries into N
parts named <stem>_part<k>.<ext>; a file that fits is written as
<stem>.<ext>. Parts render in parallel and a failing part never stops
the others.`,
		Example: `  txt2pdf convert
  txt2pdf convert books/ out/ --max-size 5 --workers 4
  txt2pdf convert notes.txt --format html`,
		Args: argsRange(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConvertFlags(cmd.Flags(), &f, env.Config)
			if err := env.Config.Validate(); err != nil {
				return err
			}
			return runConvert(cmd, env, args)
		},
	}

	fs := cmd.Flags()
	fs.Float64VarP(&f.maxSizeMB, "max-size", "s", config.DefaultMaxUnitSizeMB, "soft size budget per part, in MiB")
	fs.StringVarP(&f.format, "format", "f", string(render.FormatPDF), fmt.Sprintf("output format %v", render.Formats()))
	fs.IntVarP(&f.workers, "workers", "w", 0, "parts rendered in parallel per file (0 = auto)")
	fs.IntVar(&f.fileWorkers, "file-workers", config.DefaultFileWorkers, "files converted in parallel")
	fs.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "page load timeout (chrome format)")
	fs.BoolVar(&f.verify, "verify", false, "read back the page count of every PDF part")
	fs.StringVar(&f.fontName, "font", config.DefaultFontName, "font family name")
	fs.StringVar(&f.fontPath, "font-path", config.DefaultFontPath, "TrueType font file")
	fs.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "prose lines shaped per batch")
	fs.IntVar(&f.shapeWorkers, "shape-workers", 1, "goroutines shaping one batch")
	fs.BoolVar(&f.dropSeparatorRows, "drop-separator-rows", false, "omit |---| alignment rows from tables")
	fs.IntVar(&f.cacheSize, "cache-size", config.DefaultCacheSize, "shaping cache entries (0 disables)")

	return cmd
}

// applyConvertFlags copies explicitly set flags over cfg.
func applyConvertFlags(fs *flag.FlagSet, f *convertFlags, cfg *config.Config) {
	if fs.Changed("max-size") {
		cfg.Chunking.MaxUnitSizeMB = f.maxSizeMB
	}
	if fs.Changed("format") {
		cfg.Render.Format = f.format
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if fs.Changed("file-workers") {
		cfg.Render.FileWorkers = f.fileWorkers
	}
	if fs.Changed("timeout") {
		cfg.Render.Timeout = f.timeout
	}
	if fs.Changed("verify") {
		cfg.Render.Verify = f.verify
	}
	if fs.Changed("font") {
		cfg.Font.Name = f.fontName
	}
	if fs.Changed("font-path") {
		cfg.Font.Path = f.fontPath
	}
	if fs.Changed("batch-size") {
		cfg.Layout.BatchSize = f.batchSize
	}
	if fs.Changed("shape-workers") {
		cfg.Layout.ShapeWorkers = f.shapeWorkers
	}
	if fs.Changed("drop-separator-rows") {
		cfg.Layout.DropSeparatorRows = f.dropSeparatorRows
	}
	if fs.Changed("cache-size") {
		cfg.Shaping.CacheSize = f.cacheSize
	}
}

// converterOptions maps configuration onto library options.
func converterOptions(env *Environment) []txt2pdf.Option {
	cfg := env.Config
	ropts := render.DefaultOptions()
	ropts.Timeout = cfg.Render.Timeout

	return []txt2pdf.Option{
		txt2pdf.WithMaxUnitSizeMB(cfg.Chunking.MaxUnitSizeMB),
		txt2pdf.WithWorkers(cfg.Render.Workers),
		txt2pdf.WithFont(cfg.Font.Name, cfg.Font.Path),
		txt2pdf.WithFormat(cfg.Render.Format),
		txt2pdf.WithRenderOptions(ropts),
		txt2pdf.WithShapeCacheSize(cfg.Shaping.CacheSize),
		txt2pdf.WithTablePolicy(layout.TablePolicy{DropSeparatorRows: cfg.Layout.DropSeparatorRows}),
		txt2pdf.WithBatchSize(cfg.Layout.BatchSize),
		txt2pdf.WithShapeWorkers(cfg.Layout.ShapeWorkers),
		txt2pdf.WithVerify(cfg.Render.Verify),
		txt2pdf.WithLogger(env.Logger),
	}
}

func runConvert(cmd *cobra.Command, env *Environment, args []string) error {
	cfg := env.Config
	input, output := cfg.Input.Dir, cfg.Output.Dir
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}

	files, err := discoverInputs(input, output)
	if err != nil {
		return err
	}

	conv, err := txt2pdf.NewConverter(converterOptions(env)...)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	env.Logger.Info().
		Int("files", len(files)).
		Str("input", input).
		Str("output", output).
		Str("format", cfg.Render.Format).
		Msg("conversion started")

	start := env.Now()
	var progress txt2pdf.Progress
	var bar *progressbar.ProgressBar
	if !quiet(cmd) {
		bar = newFileBar(env.Stderr, len(files))
		progress = txt2pdf.ProgressFunc(func(int, int) { _ = bar.Add(1) })
	}

	reports := txt2pdf.ConvertBatch(cmd.Context(), conv, files, cfg.Render.FileWorkers, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(env.Stderr)
	}

	failed := 0
	for i := range reports {
		if !reports[i].OK() {
			failed++
		}
		if !quiet(cmd) || !reports[i].OK() {
			printReport(env.Stdout, &reports[i], conv.Ext(), env.Config)
		}
	}

	elapsed := env.Now().Sub(start)
	env.Logger.Info().
		Int("files", len(reports)).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("conversion finished")

	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("%w: interrupted: %w", ErrConversionFailed, err)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, failed, len(reports))
	}
	if !quiet(cmd) {
		fmt.Fprintf(env.Stdout, "Converted %d file(s) in %s\n", len(reports), elapsed.Round(time.Millisecond))
	}
	return nil
}

func newFileBar(w io.Writer, n int) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
	)
}

// printReport writes a one-line summary for r, then one line per failure.
func printReport(w io.Writer, r *txt2pdf.FileReport, ext string, cfg *config.Config) {
	name := filepath.Base(r.InputPath)
	if r.Err != nil {
		fmt.Fprintf(w, "FAIL %s: %v%s\n", name, r.Err, hintFor(r.Err, cfg))
		return
	}

	var bytes uint64
	for _, p := range r.Outputs() {
		if size, ok := fileSize(p); ok {
			bytes += size
		}
	}
	status := "OK  "
	if !r.OK() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s: %d/%d %s part(s), %s, %s\n",
		status, name, r.Succeeded(), r.Chunks, ext,
		humanize.IBytes(bytes), r.Duration.Round(time.Millisecond))

	for _, res := range r.Results {
		if res.Err != nil {
			fmt.Fprintf(w, "     %v%s\n", res.Err, hintFor(res.Err, cfg))
		}
	}
}
