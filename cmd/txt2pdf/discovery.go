package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	txt2pdf "github.com/alnah/go-txt2pdf"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension = errors.New("file must have .txt extension")
	ErrNoInput          = errors.New("no .txt files found")
)

// inputExt is the extension of convertible files, compared case-insensitively.
const inputExt = ".txt"

// discoverInputs lists the files to convert. A directory is scanned
// without recursion and results are sorted by name; a single file must
// carry the .txt extension.
func discoverInputs(input, outputDir string) ([]txt2pdf.FileInput, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", input, err)
	}

	if !info.IsDir() {
		if !isTextFile(input) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, input)
		}
		return []txt2pdf.FileInput{{Path: input, OutputDir: outputDir}}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", input, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isTextFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(input, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, input)
	}
	sort.Strings(paths)

	files := make([]txt2pdf.FileInput, len(paths))
	for i, p := range paths {
		files[i] = txt2pdf.FileInput{Path: p, OutputDir: outputDir}
	}
	return files, nil
}

func isTextFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), inputExt)
}
