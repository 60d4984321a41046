package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	txt2pdf "github.com/alnah/go-txt2pdf"
	"github.com/alnah/go-txt2pdf/internal/render"
)

// artifactInfo describes one produced PDF.
type artifactInfo struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Bytes uint64 `json:"bytes"`
	Error string `json:"error,omitempty"`
}

func inspectCmd(env *Environment) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect [dir|file.pdf]",
		Short: "Count the pages of produced PDF parts",
		Long: `Open every .pdf in a directory (default: the configured output directory)
or a single PDF, and report its page count and size.`,
		Args: argsRange(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := env.Config.Output.Dir
			if len(args) == 1 {
				target = args[0]
			}
			return runInspect(env, target, render.Tabula{}, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runInspect(env *Environment, target string, counter render.PageCounter, jsonOutput bool) error {
	paths, err := listPDFs(target)
	if err != nil {
		return err
	}

	infos := make([]artifactInfo, len(paths))
	failed := 0
	for i, p := range paths {
		infos[i] = artifactInfo{Path: p}
		if size, ok := fileSize(p); ok {
			infos[i].Bytes = size
		}
		pages, err := counter.PageCount(p)
		if err != nil {
			infos[i].Error = err.Error()
			failed++
			env.Logger.Warn().Err(err).Str("file", p).Msg("cannot read page count")
			continue
		}
		infos[i].Pages = pages
	}

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return err
		}
	} else {
		printInspect(env.Stdout, infos)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files unreadable", txt2pdf.ErrVerify, failed, len(infos))
	}
	return nil
}

func printInspect(w io.Writer, infos []artifactInfo) {
	var pages int
	var bytes uint64
	for _, in := range infos {
		name := filepath.Base(in.Path)
		if in.Error != "" {
			fmt.Fprintf(w, "  [ERROR] %s: %s\n", name, in.Error)
			continue
		}
		fmt.Fprintf(w, "  %-40s %6d pages %10s\n", name, in.Pages, humanize.IBytes(in.Bytes))
		pages += in.Pages
		bytes += in.Bytes
	}
	fmt.Fprintf(w, "%d file(s), %s pages, %s\n", len(infos), humanize.Comma(int64(pages)), humanize.IBytes(bytes))
}

// listPDFs returns target when it is a file, or the sorted .pdf files
// directly inside it.
func listPDFs(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", target, err)
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", target, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(target, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func fileSize(path string) (uint64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < 0 {
		return 0, false
	}
	return uint64(info.Size()), true
}
