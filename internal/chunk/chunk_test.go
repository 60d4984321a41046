package chunk

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		mb   float64
		want int
	}{
		{name: "empty text is one chunk", text: "", mb: 1, want: 1},
		{name: "small text is one chunk", text: "hello", mb: 10, want: 1},
		{name: "exact budget is one chunk", text: strings.Repeat("a", 20), mb: 20.0 / BytesPerMB, want: 1},
		{name: "one byte over budget", text: strings.Repeat("a", 21), mb: 20.0 / BytesPerMB, want: 2},
		{name: "five budgets", text: strings.Repeat("a", 100), mb: 20.0 / BytesPerMB, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EstimateCount(tt.text, tt.mb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateCount_UsesByteLength(t *testing.T) {
	t.Parallel()

	// "س" is two bytes in UTF-8: 10 runes, 20 bytes.
	text := strings.Repeat("س", 10)
	require.Equal(t, 10, RuneCount(text))

	got, err := EstimateCount(text, 10.0/BytesPerMB)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestEstimateCount_InvalidBudget(t *testing.T) {
	t.Parallel()

	for _, mb := range []float64{0, -1, math.NaN()} {
		_, err := EstimateCount("text", mb)
		assert.ErrorIs(t, err, ErrInvalidArgument, "mb=%v", mb)
	}
}

func TestEstimateCount_TinyBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		mb   float64
		want int
	}{
		{name: "bounded by byte length", text: strings.Repeat("a", 60), mb: 1e-15, want: 60},
		{name: "quotient overflows", text: "abc", mb: 1e-320, want: 3},
		{name: "multi-byte runes", text: strings.Repeat("س", 4), mb: 1e-12, want: 8},
		{name: "empty text", text: "", mb: 1e-320, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EstimateCount(tt.text, tt.mb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_TinyBudget(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("ab", 30)
	parts, err := Split(text, 1e-15)
	require.NoError(t, err)
	assert.Len(t, parts, 60)
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestPlanRanges_HugeCount(t *testing.T) {
	t.Parallel()

	got := PlanRanges(3, math.MaxInt32)
	assert.Equal(t, []Range{{0, 1}, {1, 2}, {2, 3}}, got)
}

func TestPlanRanges_SingleChunk(t *testing.T) {
	t.Parallel()

	for _, count := range []int{-3, 0, 1} {
		got := PlanRanges(42, count)
		assert.Equal(t, []Range{{Start: 0, End: 42}}, got, "count=%d", count)
	}
}

func TestPlanRanges_Widths(t *testing.T) {
	t.Parallel()

	got := PlanRanges(10, 4)
	assert.Equal(t, []Range{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, got)
}

func TestPlanRanges_DropsRangesPastEnd(t *testing.T) {
	t.Parallel()

	// width = ceil(10/9) = 2, so only five ranges fit.
	got := PlanRanges(10, 9)
	assert.Len(t, got, 5)
	assert.Equal(t, Range{Start: 8, End: 10}, got[len(got)-1])
}

func TestPlanRanges_Partition(t *testing.T) {
	t.Parallel()

	for length := 0; length <= 200; length += 7 {
		for count := 1; count <= 12; count++ {
			ranges := PlanRanges(length, count)
			require.NotEmpty(t, ranges)

			assert.Equal(t, 0, ranges[0].Start)
			assert.Equal(t, length, ranges[len(ranges)-1].End)
			assert.LessOrEqual(t, len(ranges), count)

			total := 0
			for i, r := range ranges {
				assert.LessOrEqual(t, r.Start, r.End)
				total += r.Len()
				if i > 0 {
					assert.Equal(t, ranges[i-1].End, r.Start, "gap at %d (len=%d count=%d)", i, length, count)
				}
			}
			assert.Equal(t, length, total)
		}
	}
}

func TestSlice_KeepsRunesIntact(t *testing.T) {
	t.Parallel()

	text := "سلام دنیا hello جهان"
	ranges := PlanRanges(RuneCount(text), 3)
	parts := Slice(text, ranges)

	require.Len(t, parts, len(ranges))
	assert.Equal(t, text, strings.Join(parts, ""))
	for i, p := range parts {
		assert.Equal(t, ranges[i].Len(), RuneCount(p), "part %d", i)
	}
}

func TestSlice_EmptyText(t *testing.T) {
	t.Parallel()

	parts := Slice("", PlanRanges(0, 5))
	assert.Equal(t, []string{""}, parts)
}

func TestSplit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcd", 25)
	parts, err := Split(text, 20.0/BytesPerMB)
	require.NoError(t, err)
	assert.Len(t, parts, 5)
	assert.Equal(t, text, strings.Join(parts, ""))

	_, err = Split(text, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
