package shape

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// Bidi reshapes Arabic-script letters into their contextual presentation
// forms and reorders the line from logical to visual order.
//
// Only the paragraph-level run structure is used: runs are reversed for a
// right-to-left paragraph and right-to-left runs are reversed in place with
// bracket mirroring. Nested embeddings deeper than one level are flattened.
type Bidi struct {
	// Reshape enables contextual letter forms (default true via NewBidi).
	Reshape bool
}

// NewBidi returns a Bidi shaper with reshaping enabled.
func NewBidi() *Bidi {
	return &Bidi{Reshape: true}
}

// Shape returns the visual form of line.
func (b *Bidi) Shape(line string) (visual string, err error) {
	if line == "" {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrShaping, r)
		}
	}()

	s := norm.NFC.String(line)
	if b.Reshape {
		s = reshape(s)
	}

	dir := baseDirection(s)
	if dir == bidi.LeftToRight && !hasRTL(s) {
		return s, nil
	}

	var p bidi.Paragraph
	var opts []bidi.Option
	if dir == bidi.RightToLeft {
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}
	if _, err := p.SetString(s, opts...); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShaping, err)
	}
	order, err := p.Order()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrShaping, err)
	}

	runs := make([]run, 0, order.NumRuns())
	for i := 0; i < order.NumRuns(); i++ {
		r := order.Run(i)
		runs = append(runs, run{text: r.String(), rtl: r.Direction() == bidi.RightToLeft})
	}
	return visualOrder(runs, dir == bidi.RightToLeft), nil
}

type run struct {
	text string
	rtl  bool
}

// visualOrder assembles runs, given in logical order, into a visual string.
func visualOrder(runs []run, rtlParagraph bool) string {
	var sb strings.Builder

	if rtlParagraph {
		for i := len(runs) - 1; i >= 0; i-- {
			writeRun(&sb, runs[i])
		}
		return sb.String()
	}

	// In a left-to-right paragraph, a right-to-left segment may contain
	// weak left-to-right runs (numbers, punctuation) that belong to it.
	for i := 0; i < len(runs); {
		if !runs[i].rtl {
			writeRun(&sb, runs[i])
			i++
			continue
		}
		j := i + 1
		for j < len(runs) {
			if runs[j].rtl {
				j++
				continue
			}
			if j+1 < len(runs) && runs[j+1].rtl && !hasStrongLTR(runs[j].text) {
				j += 2
				continue
			}
			break
		}
		for k := j - 1; k >= i; k-- {
			writeRun(&sb, runs[k])
		}
		i = j
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, r run) {
	if !r.rtl {
		sb.WriteString(r.text)
		return
	}
	rs := []rune(r.text)
	for i := len(rs) - 1; i >= 0; i-- {
		sb.WriteRune(mirror(rs[i]))
	}
}

var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

func mirror(r rune) rune {
	if m, ok := mirrored[r]; ok {
		return m
	}
	return r
}

// baseDirection follows the first-strong-character rule.
func baseDirection(s string) bidi.Direction {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return bidi.LeftToRight
		case bidi.R, bidi.AL:
			return bidi.RightToLeft
		}
	}
	return bidi.LeftToRight
}

func hasRTL(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		if c := p.Class(); c == bidi.R || c == bidi.AL {
			return true
		}
	}
	return false
}

func hasStrongLTR(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		if p.Class() == bidi.L {
			return true
		}
	}
	return false
}
