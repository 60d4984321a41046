package render

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/alnah/go-txt2pdf/internal/fileutil"
	"github.com/alnah/go-txt2pdf/internal/layout"
)

//go:embed templates/*
var templates embed.FS

var documentTemplate = template.Must(template.ParseFS(templates, "templates/document.html.tmpl"))

// HTML writes a self-contained HTML document. Lines arrive in visual order,
// so text is displayed with bidi overridden to left-to-right.
type HTML struct {
	opts Options
}

// NewHTML creates an HTML backend.
func NewHTML(opts Options) *HTML {
	return &HTML{opts: opts.withDefaults()}
}

// Ext implements Builder.
func (h *HTML) Ext() string { return "html" }

// Close implements Builder.
func (h *HTML) Close() error { return nil }

// Build writes the document for elems to path.
func (h *HTML) Build(ctx context.Context, path string, elems []layout.Element, font *Font) error {
	var buf bytes.Buffer
	if err := h.Render(ctx, &buf, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), elems, font); err != nil {
		return err
	}

	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	return nil
}

// block is the template view of one element.
type block struct {
	Kind   string
	Text   string
	Height float64
	Rows   [][]string
}

type document struct {
	Title  string
	Style  template.CSS
	Blocks []block
}

// stylesheet builds the document CSS, embedding font as a data URI.
// The font name is reduced to characters that cannot leave a CSS string.
func (h *HTML) stylesheet(font *Font) template.CSS {
	name := cssFamily(font.Name)

	var b strings.Builder
	if len(font.Data) > 0 {
		fmt.Fprintf(&b, "@font-face {\n  font-family: \"%s\";\n  src: url(\"data:font/ttf;base64,%s\") format(\"truetype\");\n}\n",
			name, base64.StdEncoding.EncodeToString(font.Data))
	}
	fmt.Fprintf(&b, "@page { size: A4; margin: %gpt; }\n", h.opts.Margin)
	fmt.Fprintf(&b, "body { font-family: \"%s\", sans-serif; font-size: %gpt; line-height: %gpt; margin: 0; }\n",
		name, h.opts.FontSize, h.opts.Leading)
	b.WriteString("p, td { direction: ltr; unicode-bidi: bidi-override; text-align: right; }\n")
	b.WriteString("p { margin: 0; white-space: pre-wrap; }\n")
	b.WriteString(".spacer { display: block; }\n")
	b.WriteString("table { border-collapse: collapse; margin-left: auto; }\n")
	fmt.Fprintf(&b, "td { border: %gpt solid grey; padding: 2pt 4pt; }\n", GridLineWidth)
	return template.CSS(b.String())
}

func cssFamily(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r == '<' || r == '>' || r == ';' || r == '{' || r == '}':
			return -1
		case r < ' ':
			return -1
		}
		return r
	}, name)
}

// Render executes the document template into w. Text is escaped by
// html/template.
func (h *HTML) Render(ctx context.Context, w io.Writer, title string, elems []layout.Element, font *Font) error {
	if font == nil {
		return ErrNoFont
	}

	doc := document{
		Title:  title,
		Style:  h.stylesheet(font),
		Blocks: make([]block, 0, len(elems)),
	}

	for _, e := range elems {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := block{Kind: e.Kind().String()}
		switch v := e.(type) {
		case layout.Paragraph:
			b.Text = v.Text
		case layout.Spacer:
			b.Height = v.Height
		case layout.Table:
			b.Rows = v.Rows
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedElem, e)
		}
		doc.Blocks = append(doc.Blocks, b)
	}

	if err := documentTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("%w: executing template: %v", ErrWriteArtifact, err)
	}
	return nil
}
