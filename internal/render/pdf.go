package render

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-txt2pdf/internal/fileutil"
	"github.com/alnah/go-txt2pdf/internal/layout"
)

// gridGrey is the table border colour.
const gridGrey = 128

// PDF writes artifacts with the pure-Go gofpdf library.
// Each Build uses its own document, so concurrent builds share nothing but
// the read-only font bytes.
type PDF struct {
	opts Options
}

// NewPDF creates a PDF backend.
func NewPDF(opts Options) *PDF {
	return &PDF{opts: opts.withDefaults()}
}

// Ext implements Builder.
func (p *PDF) Ext() string { return "pdf" }

// Close implements Builder.
func (p *PDF) Close() error { return nil }

// Build lays out elems on A4 pages and writes the document to path.
func (p *PDF) Build(ctx context.Context, path string, elems []layout.Element, font *Font) error {
	if font == nil {
		return ErrNoFont
	}

	doc, err := p.compose(ctx, elems, font)
	if err != nil {
		return err
	}

	err = fileutil.WriteAtomic(path, func(w io.Writer) error {
		return doc.Output(w)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	return nil
}

func (p *PDF) compose(ctx context.Context, elems []layout.Element, font *Font) (*gofpdf.Fpdf, error) {
	m := p.opts.Margin
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetMargins(m, m, m)
	doc.SetAutoPageBreak(true, m)
	doc.SetCreationDate(p.opts.CreationDate)
	doc.SetCatalogSort(true)
	doc.AddUTF8FontFromBytes(font.Name, "", font.Data)
	doc.SetFont(font.Name, "", p.opts.FontSize)
	doc.SetDrawColor(gridGrey, gridGrey, gridGrey)
	doc.SetLineWidth(GridLineWidth)
	doc.AddPage()
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	for _, e := range elems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch v := e.(type) {
		case layout.Paragraph:
			doc.MultiCell(0, p.opts.Leading, v.Text, "", "R", false)
		case layout.Spacer:
			doc.Ln(v.Height)
		case layout.Table:
			p.table(doc, v)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedElem, e)
		}
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
		}
	}
	return doc, nil
}

// table draws a bordered grid with equal column widths and right-aligned
// cells. Short rows leave their trailing columns undrawn.
func (p *PDF) table(doc *gofpdf.Fpdf, t layout.Table) {
	cols := t.Columns()
	if cols == 0 {
		return
	}

	pageW, pageH := doc.GetPageSize()
	left, _, right, bottom := doc.GetMargins()
	colW := (pageW - left - right) / float64(cols)
	lead := p.opts.Leading

	for _, row := range t.Rows {
		lines := 1
		for _, cell := range row {
			lines = max(lines, len(doc.SplitText(cell, colW-2*doc.GetCellMargin())))
		}
		rowH := float64(lines) * lead

		y := doc.GetY()
		if y+rowH > pageH-bottom {
			doc.AddPage()
			y = doc.GetY()
		}

		for i, cell := range row {
			x := left + float64(i)*colW
			doc.Rect(x, y, colW, rowH, "D")
			doc.SetXY(x, y)
			doc.MultiCell(colW, lead, cell, "", "R", false)
		}
		doc.SetXY(left, y+rowH)
	}
}
