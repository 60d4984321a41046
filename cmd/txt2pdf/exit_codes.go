package main

import (
	"errors"
	"os"
	"strings"

	txt2pdf "github.com/alnah/go-txt2pdf"
	"github.com/alnah/go-txt2pdf/internal/config"
	"github.com/alnah/go-txt2pdf/internal/hints"
	"github.com/alnah/go-txt2pdf/internal/render"
)

// Exit codes for the txt2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All files converted
	ExitGeneral = 1 // Unexpected error or some files failed
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input not found, unreadable, or output not writable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the exit code for err. It relies on errors.Is, so
// callers wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// A partial batch failure is reported as general even when every
	// cause is an I/O error, so scripts can tell it from a fatal one.
	if errors.Is(err, ErrConversionFailed) {
		return ExitGeneral
	}

	if errors.Is(err, txt2pdf.ErrBrowserConnect) ||
		errors.Is(err, render.ErrPageCreate) ||
		errors.Is(err, txt2pdf.ErrPageLoad) ||
		errors.Is(err, txt2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, txt2pdf.ErrInput) ||
		errors.Is(err, txt2pdf.ErrOutputDir) ||
		errors.Is(err, txt2pdf.ErrWriteArtifact) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, txt2pdf.ErrConfiguration) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEnvParse) ||
		strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns remediation text for err, or "".
func hintFor(err error, cfg *config.Config) string {
	fontPath := ""
	if cfg != nil {
		fontPath = cfg.Font.Path
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, txt2pdf.ErrFontNotFound), errors.Is(err, render.ErrFontLoad):
		return hints.ForFontNotFound(fontPath)
	case errors.Is(err, txt2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, txt2pdf.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, txt2pdf.ErrOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, txt2pdf.ErrDecodeInput):
		return hints.ForDecode()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, txt2pdf.ErrUnknownFormat):
		return hints.ForFormat(formatNames())
	}
	return ""
}

func formatNames() []string {
	var names []string
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	return names
}
