package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-txt2pdf/internal/shape"
)

func TestIsTableLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"|a|b|", true},
		{"   | indented |", true},
		{"a | b", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTableLine(tt.line), "line %q", tt.line)
	}
}

func TestParseTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		policy TablePolicy
		want   [][]string
	}{
		{
			name:  "empty cell dropped",
			lines: []string{"| a | | b |"},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "two rows",
			lines: []string{"|x|y|", "|1|2|"},
			want:  [][]string{{"x", "y"}, {"1", "2"}},
		},
		{
			name:  "no pipe-prefixed lines",
			lines: []string{"plain", "text"},
			want:  nil,
		},
		{
			name:  "rows without cells are omitted",
			lines: []string{"| |", "||", "|"},
			want:  nil,
		},
		{
			name:  "missing closing pipe drops the last field",
			lines: []string{"| a | b"},
			want:  [][]string{{"a"}},
		},
		{
			name:  "separator rows pass through by default",
			lines: []string{"| h1 | h2 |", "| --- | :-: |", "| v1 | v2 |"},
			want:  [][]string{{"h1", "h2"}, {"---", ":-:"}, {"v1", "v2"}},
		},
		{
			name:   "separator rows dropped by policy",
			lines:  []string{"| h1 | h2 |", "| --- | :-: |", "| v1 | v2 |"},
			policy: TablePolicy{DropSeparatorRows: true},
			want:   [][]string{{"h1", "h2"}, {"v1", "v2"}},
		},
		{
			name:   "colon-only cell is not a separator",
			lines:  []string{"| : | - |"},
			policy: TablePolicy{DropSeparatorRows: true},
			want:   [][]string{{":", "-"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTable(tt.lines, shape.Identity{}, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTable_ShapesCells(t *testing.T) {
	t.Parallel()

	upper := shape.Func(func(s string) (string, error) { return strings.ToUpper(s), nil })
	got, err := ParseTable([]string{"| a | b |"}, upper, TablePolicy{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}}, got)
}

func TestParseTable_ShapingError(t *testing.T) {
	t.Parallel()

	failing := shape.Func(func(string) (string, error) { return "", shape.ErrShaping })
	_, err := ParseTable([]string{"| a |"}, failing, TablePolicy{})
	assert.True(t, errors.Is(err, shape.ErrShaping))
}
