// Package hints returns short remediation text for common failures.
// Hints read as "\n  hint: <text>" and are appended to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-txt2pdf/internal/fileutil"
)

// IsInContainer reports whether the process runs inside a container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a common CI variable is set.
func inCI() bool {
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for Chrome connection errors.
func ForBrowserConnect() string {
	var hints []string

	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --format pdf, which needs no browser")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the page load timeout.
func ForTimeout() string {
	return format("for large chunks, use --timeout or a smaller --max-size")
}

// ForFontNotFound returns hints for a missing font file.
func ForFontNotFound(path string) string {
	hint := "pass --font-path /path/to/font.ttf or set TXT2PDF_FONT_PATH"
	if path != "" {
		hint = "no font at " + path + "; " + hint
	}
	return format(hint)
}

// ForConfigNotFound returns a hint for a missing config file.
func ForConfigNotFound() string {
	return format("use --config /path/to/txt2pdf.yaml or drop the flag to use defaults")
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDecode returns a hint for input that is not UTF-8.
func ForDecode() string {
	return format("re-encode the file as UTF-8, e.g. iconv -t UTF-8")
}

// ForFormat returns a hint listing the accepted format names.
func ForFormat(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
