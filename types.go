package txt2pdf

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// FileInput names one file to convert.
type FileInput struct {
	Path      string
	OutputDir string
	// Progress receives per-chunk completion updates. May be nil.
	Progress Progress
}

// ChunkResult is the outcome of one chunk render.
type ChunkResult struct {
	// Index is 1-based.
	Index      int
	OutputPath string
	// Pages is set when verification is enabled.
	Pages    int
	Duration time.Duration
	Err      error
}

// OK reports whether the chunk rendered.
func (r ChunkResult) OK() bool { return r.Err == nil }

// FileReport summarizes the conversion of one file.
type FileReport struct {
	InputPath string
	Chunks    int
	Results   []ChunkResult
	Duration  time.Duration
	// Err is a file-level failure (input, output directory, cancellation).
	Err error
}

// Failed returns the number of failed chunks.
func (r *FileReport) Failed() int {
	n := 0
	for _, c := range r.Results {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded returns the number of rendered chunks.
func (r *FileReport) Succeeded() int {
	return len(r.Results) - r.Failed()
}

// OK reports whether the file converted without any failure.
func (r *FileReport) OK() bool {
	return r.Err == nil && r.Failed() == 0
}

// Outputs returns the paths of the artifacts that were written.
func (r *FileReport) Outputs() []string {
	var out []string
	for _, c := range r.Results {
		if c.Err == nil {
			out = append(out, c.OutputPath)
		}
	}
	return out
}

// Error joins the file-level error and every chunk error, or returns nil.
func (r *FileReport) Error() error {
	errs := []error{r.Err}
	for _, c := range r.Results {
		errs = append(errs, c.Err)
	}
	return errors.Join(errs...)
}

// PartName returns the artifact file name of chunk index (1-based) out of
// total for the given stem and extension.
func PartName(stem, ext string, index, total int) string {
	if total <= 1 {
		return stem + "." + ext
	}
	return fmt.Sprintf("%s_part%d.%s", stem, index, ext)
}

// PartPath joins PartName onto dir.
func PartPath(dir, stem, ext string, index, total int) string {
	return filepath.Join(dir, PartName(stem, ext, index, total))
}

// Progress receives completion counts. Calls are serialized and arrive in
// completion order, not submission order.
type Progress interface {
	Update(completed, total int)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(completed, total int)

// Update calls f(completed, total).
func (f ProgressFunc) Update(completed, total int) { f(completed, total) }

type nopProgress struct{}

func (nopProgress) Update(int, int) {}

func progressOrNop(p Progress) Progress {
	if p == nil {
		return nopProgress{}
	}
	return p
}

// multiProgress fans one update out to several receivers.
type multiProgress []Progress

func (m multiProgress) Update(completed, total int) {
	for _, p := range m {
		p.Update(completed, total)
	}
}
