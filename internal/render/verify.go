package render

import (
	"fmt"

	"github.com/tsawler/tabula"
)

// Tabula counts pages by parsing the written PDF.
type Tabula struct{}

// PageCount implements PageCounter.
func (Tabula) PageCount(path string) (int, error) {
	ext := tabula.Open(path)
	defer func() { _ = ext.Close() }()

	n, err := ext.PageCount()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}

var _ PageCounter = Tabula{}
