package txt2pdf

import (
	"sync"

	"github.com/alnah/go-txt2pdf/internal/render"
)

// Default font settings.
const (
	DefaultFontName = "Vazir"
	DefaultFontPath = "font/Vazirmatn-Regular.ttf"
)

// FontLoader loads the font file at path under name.
type FontLoader func(name, path string) (*render.Font, error)

// FontRegistry loads each font at most once and shares it between renders.
// Failed loads are not remembered, so a later call may retry.
type FontRegistry struct {
	load FontLoader

	mu    sync.Mutex
	fonts map[string]*render.Font
}

// NewFontRegistry returns an empty registry. A nil loader reads TrueType
// files from disk.
func NewFontRegistry(load FontLoader) *FontRegistry {
	if load == nil {
		load = render.LoadFont
	}
	return &FontRegistry{load: load, fonts: make(map[string]*render.Font)}
}

// Ensure returns the font registered under name, loading it from path on
// first use. loaded reports whether this call performed the load.
func (r *FontRegistry) Ensure(name, path string) (font *render.Font, loaded bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.fonts[name]; ok {
		return f, false, nil
	}
	f, err := r.load(name, path)
	if err != nil {
		return nil, false, err
	}
	r.fonts[name] = f
	return f, true, nil
}

// Registered reports whether name has been loaded.
func (r *FontRegistry) Registered(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.fonts[name]
	return ok
}
