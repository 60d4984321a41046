package layout

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-txt2pdf/internal/shape"
)

// Builder defaults.
const (
	DefaultBatchSize    = 100
	DefaultSubBatch     = 25
	DefaultSpacerHeight = 8
)

// Builder walks the lines of one chunk and emits layout elements in source
// order. Prose lines are shaped in batches; a batch may be shaped by several
// goroutines, but results are always reassembled by position before the scan
// continues, so the output equals a sequential scan for any Workers value.
//
// A Builder holds no per-build state and may be shared between goroutines.
type Builder struct {
	Shaper shape.Shaper

	// BatchSize is the number of prose lines collected before shaping.
	BatchSize int

	// Workers bounds the goroutines shaping one batch. Values <= 1 shape inline.
	Workers int

	// SubBatch is the number of lines handed to each shaping goroutine.
	SubBatch int

	Tables TablePolicy

	// SpacerHeight is used for blank lines and after tables, in points.
	SpacerHeight float64
}

// NewBuilder returns a Builder with default settings.
func NewBuilder(s shape.Shaper) *Builder {
	return &Builder{
		Shaper:       s,
		BatchSize:    DefaultBatchSize,
		Workers:      1,
		SubBatch:     DefaultSubBatch,
		SpacerHeight: DefaultSpacerHeight,
	}
}

// BuildText splits text into lines and calls Build.
func (b *Builder) BuildText(ctx context.Context, text string) ([]Element, error) {
	return b.Build(ctx, SplitLines(text))
}

// Build classifies lines and returns the element sequence.
func (b *Builder) Build(ctx context.Context, lines []string) ([]Element, error) {
	if b.Shaper == nil {
		return nil, fmt.Errorf("%w: builder has no shaper", shape.ErrShaping)
	}

	s := &scan{b: b, ctx: ctx}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.line(line); err != nil {
			return nil, err
		}
	}

	if err := s.flushBatch(); err != nil {
		return nil, err
	}
	if err := s.flushTable(); err != nil {
		return nil, err
	}
	return s.out, nil
}

// scan is the per-build state machine: prose unless table is non-empty.
type scan struct {
	b     *Builder
	ctx   context.Context
	out   []Element
	batch []string
	table []string
}

func (s *scan) inTable() bool {
	return len(s.table) > 0
}

func (s *scan) line(line string) error {
	if IsTableLine(line) {
		if !s.inTable() {
			if err := s.flushBatch(); err != nil {
				return err
			}
		}
		s.table = append(s.table, line)
		return nil
	}

	if s.inTable() {
		if err := s.flushTable(); err != nil {
			return err
		}
	}

	if strings.TrimSpace(line) == "" {
		if err := s.flushBatch(); err != nil {
			return err
		}
		s.out = append(s.out, Spacer{Height: s.b.spacerHeight()})
		return nil
	}

	s.batch = append(s.batch, line)
	if len(s.batch) >= s.b.batchSize() {
		return s.flushBatch()
	}
	return nil
}

func (s *scan) flushTable() error {
	if !s.inTable() {
		return nil
	}
	rows, err := ParseTable(s.table, s.b.Shaper, s.b.Tables)
	s.table = s.table[:0]
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	s.out = append(s.out, Table{Rows: rows}, Spacer{Height: s.b.spacerHeight()})
	return nil
}

func (s *scan) flushBatch() error {
	if len(s.batch) == 0 {
		return nil
	}
	shaped, err := s.b.shapeBatch(s.ctx, s.batch)
	s.batch = s.batch[:0]
	if err != nil {
		return err
	}
	for _, text := range shaped {
		s.out = append(s.out, Paragraph{Text: text})
	}
	return nil
}

// shapeBatch scatters lines over at most Workers goroutines in sub-batches
// and gathers the results by original index.
func (b *Builder) shapeBatch(ctx context.Context, lines []string) ([]string, error) {
	out := make([]string, len(lines))

	sub := b.SubBatch
	if sub <= 0 {
		sub = DefaultSubBatch
	}
	if b.Workers <= 1 || len(lines) <= sub {
		for i, l := range lines {
			v, err := b.Shaper.Shape(l)
			if err != nil {
				return nil, fmt.Errorf("shaping line: %w", err)
			}
			out[i] = v
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Workers)
	for start := 0; start < len(lines); start += sub {
		end := min(start+sub, len(lines))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := b.Shaper.Shape(lines[i])
				if err != nil {
					return fmt.Errorf("shaping line: %w", err)
				}
				out[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Builder) batchSize() int {
	if b.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return b.BatchSize
}

func (b *Builder) spacerHeight() float64 {
	if b.SpacerHeight <= 0 {
		return DefaultSpacerHeight
	}
	return b.SpacerHeight
}

// SplitLines splits text at line boundaries: \n, \r, \r\n, \v, \f, the
// file, group and record separators (\x1c-\x1e), NEL (U+0085) and the
// Unicode line and paragraph separators (U+2028, U+2029). A final line
// terminator does not produce an empty line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
