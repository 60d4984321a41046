// Package chunk splits a source text into size-bounded character ranges.
//
// The number of chunks is driven by the UTF-8 byte length of the text, while
// the ranges themselves are cut on rune boundaries so that no multi-byte
// sequence is ever split.
package chunk

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// BytesPerMB is the size unit used by the size budget.
const BytesPerMB = 1024 * 1024

// ErrInvalidArgument is returned when the size budget is not positive.
var ErrInvalidArgument = errors.New("invalid argument")

// Range is a half-open [Start, End) interval of rune offsets.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// EstimateCount returns how many chunks text must be split into so that each
// chunk stays near maxUnitSizeMB. The result is always at least 1 and never
// more than the byte length of text, so a tiny budget yields one-byte chunks.
func EstimateCount(text string, maxUnitSizeMB float64) (int, error) {
	if math.IsNaN(maxUnitSizeMB) || maxUnitSizeMB <= 0 {
		return 0, fmt.Errorf("%w: max unit size must be > 0, got %v", ErrInvalidArgument, maxUnitSizeMB)
	}

	q := math.Ceil(float64(len(text)) / (maxUnitSizeMB * BytesPerMB))
	switch {
	case math.IsNaN(q) || q <= 1:
		return 1, nil
	case q >= float64(len(text)):
		return len(text), nil
	}
	return int(q), nil
}

// PlanRanges divides charLength runes into at most count contiguous ranges of
// nominal width ceil(charLength/count). The last range is clipped to
// charLength. Ranges that would start at or past the end are not emitted, so
// len(result) may be smaller than count for very short texts.
func PlanRanges(charLength, count int) []Range {
	if charLength < 0 {
		charLength = 0
	}
	if count <= 1 || charLength == 0 {
		return []Range{{Start: 0, End: charLength}}
	}

	width := (charLength + count - 1) / count
	ranges := make([]Range, 0, min(count, charLength))
	for i := 0; i < count; i++ {
		start := i * width
		if start >= charLength {
			break
		}
		end := min(start+width, charLength)
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// RuneCount returns the character length used by PlanRanges.
func RuneCount(text string) int {
	return utf8.RuneCountInString(text)
}

// Slice returns the substrings of text described by ranges. Offsets are rune
// offsets; the conversion to byte offsets is done in a single pass.
// Ranges must be sorted and non-overlapping, as returned by PlanRanges.
func Slice(text string, ranges []Range) []string {
	out := make([]string, len(ranges))
	if len(ranges) == 0 {
		return out
	}

	// Byte offset for every range boundary, in order.
	bounds := make([]int, 0, len(ranges)+1)
	targets := make([]int, 0, len(ranges)+1)
	for _, r := range ranges {
		targets = append(targets, r.Start)
	}
	targets = append(targets, ranges[len(ranges)-1].End)

	runeIdx := 0
	next := 0
	for byteIdx := range text {
		for next < len(targets) && targets[next] == runeIdx {
			bounds = append(bounds, byteIdx)
			next++
		}
		runeIdx++
	}
	for next < len(targets) {
		bounds = append(bounds, len(text))
		next++
	}

	for i := range ranges {
		out[i] = text[bounds[i]:bounds[i+1]]
	}
	return out
}

// Split is EstimateCount, PlanRanges and Slice in one call.
func Split(text string, maxUnitSizeMB float64) ([]string, error) {
	n, err := EstimateCount(text, maxUnitSizeMB)
	if err != nil {
		return nil, err
	}
	return Slice(text, PlanRanges(RuneCount(text), n)), nil
}
