package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/alnah/go-txt2pdf/internal/config"
	"github.com/alnah/go-txt2pdf/internal/fileutil"
	"github.com/alnah/go-txt2pdf/internal/render"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Font     fontInfo   `json:"font"`
	Output   outputInfo `json:"output"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type fontInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Loaded bool   `json:"loaded"`
	Bytes  int    `json:"bytes,omitempty"`
}

type outputInfo struct {
	Dir      string `json:"dir"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	Container     bool     `json:"container"`
	ContainerHint string   `json:"container_hint,omitempty"`
	CI            bool     `json:"ci"`
	NoSandbox     string   `json:"rod_no_sandbox"`
	BrowserBin    string   `json:"rod_browser_bin"`
	UnknownVars   []string `json:"unknown_vars,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
	NumCPU       int  `json:"num_cpu"`
	GOMAXPROCS   int  `json:"gomaxprocs"`
}

func doctorCmd(env *Environment) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check font, output directory and browser setup",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := runDoctor(env.Config, env.Environ())

			if jsonOutput {
				enc := json.NewEncoder(env.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printDoctorResult(env.Stdout, result)
			}

			if result.Status == "errors" {
				return fmt.Errorf("doctor: %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, environ []string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			NoSandbox:   os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin:  os.Getenv("ROD_BROWSER_BIN"),
			UnknownVars: config.UnknownEnvVars(environ),
		},
	}

	checkFont(result, cfg)
	checkOutput(result, cfg)
	checkChrome(result, cfg)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

func checkFont(result *doctorResult, cfg *config.Config) {
	result.Font.Name = cfg.Font.Name
	result.Font.Path = cfg.Font.Path

	font, err := render.LoadFont(cfg.Font.Name, cfg.Font.Path)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Font not loadable: %v. Set --font-path or TXT2PDF_FONT_PATH", err))
		return
	}
	result.Font.Loaded = true
	result.Font.Bytes = len(font.Data)
}

// checkOutput verifies the output directory, or its nearest existing
// parent when it does not exist yet.
func checkOutput(result *doctorResult, cfg *config.Config) {
	dir := cfg.Output.Dir
	result.Output.Dir = dir

	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			result.Errors = append(result.Errors, fmt.Sprintf("Output path is not a directory: %s", dir))
			return
		}
		result.Output.Exists = true
	} else {
		dir = existingParent(dir)
	}

	if err := fileutil.CheckWritable(dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %v", err))
		return
	}
	result.Output.Writable = true
}

func existingParent(dir string) string {
	for {
		parent := filepath.Dir(dir)
		if fileutil.FileExists(parent) || parent == dir {
			return parent
		}
		dir = parent
	}
}

// checkChrome detects Chrome/Chromium. A missing browser is an error only
// when the chrome format is selected.
func checkChrome(result *doctorResult, cfg *config.Config) {
	result.Chrome.Required = strings.EqualFold(cfg.Render.Format, string(render.FormatChrome))
	report := func(msg string) {
		if result.Chrome.Required {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+" (only needed for --format chrome)")
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from launcher or env
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Required && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
	for _, name := range result.Env.UnknownVars {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown environment variable %s is ignored", name))
	}
}

// isContainer reports whether the process runs in a container and which
// signal detected it.
func isContainer() (bool, string) {
	if os.Getenv("TXT2PDF_CONTAINER") == "1" {
		return true, "TXT2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

func checkSystem(result *doctorResult) {
	result.System.NumCPU = runtime.NumCPU()
	result.System.GOMAXPROCS = runtime.GOMAXPROCS(0)

	if err := fileutil.CheckWritable(os.TempDir()); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "txt2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Font")
	if r.Font.Loaded {
		fmt.Fprintf(w, "  [OK] %s loaded from %s (%d bytes)\n", r.Font.Name, r.Font.Path, r.Font.Bytes)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not loadable from %s\n", r.Font.Name, r.Font.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	switch {
	case r.Output.Writable && r.Output.Exists:
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Output.Dir)
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] %s: will be created\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else if r.Chrome.Required {
		fmt.Fprintln(w, "  [ERROR] Not found")
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] CPUs: %d (GOMAXPROCS %d)\n", r.System.NumCPU, r.System.GOMAXPROCS)
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
