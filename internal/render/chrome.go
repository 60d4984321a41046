package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-txt2pdf/internal/fileutil"
	"github.com/alnah/go-txt2pdf/internal/layout"
	"github.com/alnah/go-txt2pdf/internal/process"
)

// A4 paper in inches, as Chrome's print API expects.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	pointsPerInch  = 72
)

// Chrome renders the HTML document and prints it to PDF with headless
// Chrome. Rod downloads Chromium on first run if no browser is found.
// One browser is launched lazily and shared; each Build opens its own page.
type Chrome struct {
	html *HTML
	opts Options

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewChrome creates a Chrome backend.
func NewChrome(opts Options) *Chrome {
	opts = opts.withDefaults()
	return &Chrome{html: NewHTML(opts), opts: opts}
}

// Ext implements Builder.
func (c *Chrome) Ext() string { return "pdf" }

// ensureBrowser lazily connects to the browser.
func (c *Chrome) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		process.KillTree(l.PID())
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.launcher = l
	c.browser = b
	return b, nil
}

// Close closes the browser, then kills whatever is left of its process
// tree.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	process.KillTree(c.launcher.PID())
	c.launcher.Kill()
	c.browser, c.launcher = nil, nil
	return err
}

// Build prints the HTML rendition of elems to a PDF at path.
func (c *Chrome) Build(ctx context.Context, path string, elems []layout.Element, font *Font) error {
	var doc strings.Builder
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := c.html.Render(ctx, &doc, title, elems, font); err != nil {
		return err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(doc.String(), "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	defer cleanup()

	data, err := c.print(ctx, tmpPath)
	if err != nil {
		return err
	}

	err = fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	return nil
}

func (c *Chrome) print(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := c.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	margin := c.opts.Margin / pointsPerInch
	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(a4WidthInches),
		PaperHeight:     floatPtr(a4HeightInches),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
