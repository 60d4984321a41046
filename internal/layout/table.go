package layout

import (
	"fmt"
	"strings"

	"github.com/alnah/go-txt2pdf/internal/shape"
)

// Delimiter starts every table line and separates cells.
const Delimiter = "|"

// TablePolicy controls optional table filtering.
type TablePolicy struct {
	// DropSeparatorRows removes markdown alignment rows such as |---|:--:|.
	DropSeparatorRows bool
}

// IsTableLine reports whether line belongs to a table run.
func IsTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Delimiter)
}

// ParseTable turns a run of pipe-delimited lines into rows of shaped cells.
// The boundary fields before the first and after the last delimiter are
// discarded, empty cells are dropped rather than padded, and rows left with
// no cells are omitted. Lines not starting with the delimiter are skipped.
func ParseTable(lines []string, s shape.Shaper, policy TablePolicy) ([][]string, error) {
	var rows [][]string
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, Delimiter) {
			continue
		}

		fields := strings.Split(stripped, Delimiter)
		if len(fields) < 2 {
			continue
		}
		fields = fields[1 : len(fields)-1]

		cells := make([]string, 0, len(fields))
		for _, f := range fields {
			if c := strings.TrimSpace(f); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		if policy.DropSeparatorRows && isSeparatorRow(cells) {
			continue
		}

		for i, c := range cells {
			shaped, err := s.Shape(c)
			if err != nil {
				return nil, fmt.Errorf("shaping table cell: %w", err)
			}
			cells[i] = shaped
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// isSeparatorRow reports whether every cell is made of dashes and colons
// with at least one dash.
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !strings.Contains(c, "-") {
			return false
		}
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}
