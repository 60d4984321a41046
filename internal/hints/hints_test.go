package hints

// ForBrowserConnect tests are not parallel: they use t.Setenv and swap
// the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

func TestForBrowserConnect_InCI(t *testing.T) {
	stubContainer(t, false)
	clearCI(t)
	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("hint prefix missing: %q", hint)
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_InContainer(t *testing.T) {
	stubContainer(t, true)
	clearCI(t)
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	if hint := ForBrowserConnect(); !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Errorf("expected ROD_NO_SANDBOX suggestion in container, got %q", hint)
	}
}

func TestForBrowserConnect_AllConfigured(t *testing.T) {
	stubContainer(t, true)
	clearCI(t)
	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_") {
		t.Errorf("no ROD_ suggestion expected, got %q", hint)
	}
	if !strings.Contains(hint, "--format pdf") {
		t.Errorf("expected fallback format suggestion, got %q", hint)
	}
}

func TestForFontNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		contains []string
	}{
		{"with path", "font/Vazirmatn-Regular.ttf", []string{"font/Vazirmatn-Regular.ttf", "--font-path"}},
		{"without path", "", []string{"--font-path", "TXT2PDF_FONT_PATH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hint := ForFontNotFound(tt.path)
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q missing %q", hint, want)
				}
			}
		})
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	if got := ForFormat(nil); got != "" {
		t.Errorf("ForFormat(nil) = %q, want empty", got)
	}
	if got := ForFormat([]string{"pdf", "html"}); !strings.Contains(got, "pdf, html") {
		t.Errorf("ForFormat() = %q", got)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForConfigNotFound(),
		ForDecode(),
		ForFontNotFound(""),
	} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
