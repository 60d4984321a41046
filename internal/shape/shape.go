// Package shape turns logical mixed-direction text into visually ordered
// strings that a left-to-right layout engine can draw as-is.
package shape

import "errors"

// ErrShaping reports that a line could not be shaped.
var ErrShaping = errors.New("text shaping failed")

// Shaper converts one logical line into its visual form.
// Implementations must be safe for concurrent use.
type Shaper interface {
	Shape(line string) (string, error)
}

// Func adapts a plain function to the Shaper interface.
type Func func(line string) (string, error)

// Shape calls f(line).
func (f Func) Shape(line string) (string, error) {
	return f(line)
}

// Identity returns lines unchanged.
type Identity struct{}

// Shape returns line.
func (Identity) Shape(line string) (string, error) {
	return line, nil
}

// Compile-time interface checks.
var (
	_ Shaper = Func(nil)
	_ Shaper = Identity{}
	_ Shaper = (*Bidi)(nil)
	_ Shaper = (*Cached)(nil)
)
