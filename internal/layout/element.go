// Package layout classifies source lines and turns them into an ordered
// sequence of layout elements: paragraphs, spacers and tables.
package layout

// Kind identifies the variant of an Element.
type Kind int

// Element kinds.
const (
	KindParagraph Kind = iota
	KindSpacer
	KindTable
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindSpacer:
		return "spacer"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Element is one unit consumed by a document builder.
type Element interface {
	Kind() Kind
}

// Paragraph is a line of shaped prose.
type Paragraph struct {
	Text string
}

// Spacer is vertical whitespace, in points.
type Spacer struct {
	Height float64
}

// Table holds shaped cells, row by row. Rows may have different lengths.
type Table struct {
	Rows [][]string
}

// Kind implements Element.
func (Paragraph) Kind() Kind { return KindParagraph }

// Kind implements Element.
func (Spacer) Kind() Kind { return KindSpacer }

// Kind implements Element.
func (Table) Kind() Kind { return KindTable }

// Columns returns the width of the widest row.
func (t Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		n = max(n, len(r))
	}
	return n
}
