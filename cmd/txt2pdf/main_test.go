package main

// CLI tests run execute() end to end and are not parallel: each run sets
// GOMAXPROCS through automaxprocs.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-txt2pdf/internal/config"
)

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv() *testEnv {
	var stdout, stderr bytes.Buffer
	env := DefaultEnv()
	env.Stdout = &stdout
	env.Stderr = &stderr
	env.Environ = func() []string { return nil }
	env.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return &testEnv{Environment: env, stdout: &stdout, stderr: &stderr}
}

func writeTestFont(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Go-Regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeText(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// ---------------------------------------------------------------------------
// convert
// ---------------------------------------------------------------------------

func TestConvert_Directory(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")
	writeText(t, in, "small.txt", "first line\n\n| a | b |\n| 1 | 2 |\nlast line\n")
	writeText(t, in, "big.txt", strings.Repeat("0123456789abcdefghij\n", 150))

	env := newTestEnv()
	// 1024 bytes per part: big.txt (3150 bytes) splits in 4.
	code := execute(context.Background(), []string{
		"convert", in, out,
		"--font-path", font,
		"--max-size", "0.0009765625",
		"--quiet",
	}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, env.stderr)
	}

	got := strings.Join(listDir(t, out), ",")
	want := "big_part1.pdf,big_part2.pdf,big_part3.pdf,big_part4.pdf,small.pdf"
	if got != want {
		t.Errorf("outputs = %s, want %s", got, want)
	}
}

func TestConvert_Summary(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := writeText(t, root, "notes.txt", "hello\n")
	out := filepath.Join(root, "out")

	env := newTestEnv()
	code := execute(context.Background(), []string{
		"convert", in, out, "--font-path", font, "--format", "html",
	}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, env.stderr)
	}
	if !strings.Contains(env.stdout.String(), "OK   notes.txt: 1/1 html part(s)") {
		t.Errorf("stdout missing summary:\n%s", env.stdout)
	}
	if !strings.Contains(env.stdout.String(), "Converted 1 file(s)") {
		t.Errorf("stdout missing total:\n%s", env.stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "notes.html")); err != nil {
		t.Errorf("notes.html not written: %v", err)
	}
}

func TestConvert_FlagOverridesConfigFile(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := writeText(t, root, "doc.txt", "text\n")
	out := filepath.Join(root, "out")
	cfgPath := writeText(t, root, "txt2pdf.yaml", "render:\n  format: html\nfont:\n  path: "+font+"\n")

	env := newTestEnv()
	code := execute(context.Background(), []string{
		"convert", in, out, "--config", cfgPath, "--format", "pdf", "-q",
	}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, env.stderr)
	}
	if got := strings.Join(listDir(t, out), ","); got != "doc.pdf" {
		t.Errorf("outputs = %s, want doc.pdf", got)
	}
}

func TestConvert_Errors(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := writeText(t, root, "doc.txt", "text\n")
	bad := writeText(t, root, "bad.txt", "\xff\xfe broken\n")
	missingCfg := filepath.Join(root, "missing.yaml")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "missing font",
			args:       []string{"convert", in, root, "--font-path", filepath.Join(root, "none.ttf")},
			wantCode:   ExitUsage,
			wantStderr: "hint:",
		},
		{
			name:     "missing input",
			args:     []string{"convert", filepath.Join(root, "nope"), root, "--font-path", font},
			wantCode: ExitIO,
		},
		{
			name:     "wrong extension",
			args:     []string{"convert", font, root, "--font-path", font},
			wantCode: ExitUsage,
		},
		{
			name:     "invalid size",
			args:     []string{"convert", in, root, "--font-path", font, "--max-size", "0"},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown format",
			args:     []string{"convert", in, root, "--font-path", font, "--format", "docx"},
			wantCode: ExitUsage,
		},
		{
			name:     "too many args",
			args:     []string{"convert", "a", "b", "c"},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"convert", "--colour"},
			wantCode: ExitUsage,
		},
		{
			name:       "missing config file",
			args:       []string{"convert", "--config", missingCfg},
			wantCode:   ExitUsage,
			wantStderr: "--config",
		},
		{
			name:       "undecodable file is a partial failure",
			args:       []string{"convert", bad, filepath.Join(root, "out"), "--font-path", font, "-q"},
			wantCode:   ExitGeneral,
			wantStderr: "conversion failed",
		},
		{
			name:     "unknown command",
			args:     []string{"bogus"},
			wantCode: ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			code := execute(context.Background(), tt.args, env.Environment)
			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d; stderr = %s", code, tt.wantCode, env.stderr)
			}
			if tt.wantStderr != "" && !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

func TestConvert_Cancelled(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := writeText(t, root, "doc.txt", "text\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv()
	code := execute(ctx, []string{"convert", in, filepath.Join(root, "out"), "--font-path", font, "-q"}, env.Environment)
	if code != ExitGeneral {
		t.Errorf("exit = %d, want %d", code, ExitGeneral)
	}
}

// ---------------------------------------------------------------------------
// inspect, sample, doctor, version
// ---------------------------------------------------------------------------

func TestInspect_AfterConvert(t *testing.T) {
	font := writeTestFont(t)
	root := t.TempDir()
	in := writeText(t, root, "doc.txt", strings.Repeat("line\n", 10))
	out := filepath.Join(root, "out")

	env := newTestEnv()
	if code := execute(context.Background(), []string{"convert", in, out, "--font-path", font, "-q"}, env.Environment); code != ExitSuccess {
		t.Fatalf("convert exit = %d, stderr = %s", code, env.stderr)
	}

	env = newTestEnv()
	if code := execute(context.Background(), []string{"inspect", out, "--json"}, env.Environment); code != ExitSuccess {
		t.Fatalf("inspect exit = %d, stderr = %s", code, env.stderr)
	}

	var infos []artifactInfo
	if err := json.Unmarshal(env.stdout.Bytes(), &infos); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, env.stdout)
	}
	if len(infos) != 1 || infos[0].Pages != 1 || infos[0].Error != "" {
		t.Errorf("infos = %+v, want one 1-page PDF", infos)
	}
}

type stubCounter map[string]int

func (s stubCounter) PageCount(path string) (int, error) {
	n, ok := s[filepath.Base(path)]
	if !ok {
		return 0, errors.New("not a pdf")
	}
	return n, nil
}

func TestRunInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeText(t, dir, "b.pdf", "x")
	writeText(t, dir, "a.pdf", "x")
	writeText(t, dir, "c.PDF", "x")
	writeText(t, dir, "skip.txt", "x")

	env := newTestEnv()
	err := runInspect(env.Environment, dir, stubCounter{"a.pdf": 3, "b.pdf": 1200}, false)
	if err == nil {
		t.Fatal("expected error for unreadable c.PDF")
	}

	out := env.stdout.String()
	for _, want := range []string{"a.pdf", "b.pdf", "[ERROR] c.PDF", "3 file(s), 1,203 pages"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skip.txt") {
		t.Errorf("non-PDF listed:\n%s", out)
	}
}

func TestSample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "samples")

	env := newTestEnv()
	code := execute(context.Background(), []string{"sample", dir, "--size", "2KB", "--count", "2"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, env.stderr)
	}

	for _, name := range []string{"sample_1.txt", "sample_2.txt"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if info.Size() < 2000 {
			t.Errorf("%s size = %d, want >= 2000", name, info.Size())
		}
	}
}

func TestSample_InvalidSize(t *testing.T) {
	env := newTestEnv()
	code := execute(context.Background(), []string{"sample", t.TempDir(), "--size", "lots"}, env.Environment)
	if code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
}

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Font.Path = writeTestFont(t)
	cfg.Output.Dir = filepath.Join(t.TempDir(), "not", "yet")

	result := runDoctor(cfg, []string{"TXT2PDF_WORKRES=2"})

	if !result.Font.Loaded {
		t.Errorf("Font.Loaded = false; errors = %v", result.Errors)
	}
	if !result.Output.Writable || result.Output.Exists {
		t.Errorf("Output = %+v, want writable and not existing", result.Output)
	}
	if result.Chrome.Required {
		t.Error("Chrome.Required = true for pdf format")
	}
	if result.Status == "errors" {
		t.Errorf("Status = errors: %v", result.Errors)
	}
	if len(result.Env.UnknownVars) != 1 {
		t.Errorf("UnknownVars = %v, want [TXT2PDF_WORKRES]", result.Env.UnknownVars)
	}
}

func TestRunDoctor_MissingFont(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Font.Path = filepath.Join(t.TempDir(), "none.ttf")
	cfg.Output.Dir = t.TempDir()

	result := runDoctor(cfg, nil)

	if result.Status != "errors" || result.Font.Loaded {
		t.Errorf("Status = %s, Font = %+v; want errors and not loaded", result.Status, result.Font)
	}
}

func TestDoctor_JSON(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeText(t, root, "txt2pdf.yaml",
		"font:\n  path: "+writeTestFont(t)+"\noutput:\n  dir: "+filepath.Join(root, "out")+"\n")

	env := newTestEnv()
	code := execute(context.Background(), []string{"doctor", "--json", "--config", cfgPath}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, env.stderr)
	}

	var result doctorResult
	if err := json.Unmarshal(env.stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, env.stdout)
	}
	if !result.Font.Loaded {
		t.Errorf("Font.Loaded = false: %v", result.Errors)
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv()
	if code := execute(context.Background(), []string{"version"}, env.Environment); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(env.stdout.String(), "txt2pdf version dev") {
		t.Errorf("stdout = %q", env.stdout)
	}
}
