package txt2pdf

import (
	"errors"
	"fmt"

	"github.com/alnah/go-txt2pdf/internal/render"
	"github.com/alnah/go-txt2pdf/internal/shape"
)

// Sentinel errors for library operations.
var (
	// ErrConfiguration is fatal: the converter cannot be built.
	ErrConfiguration      = errors.New("invalid configuration")
	ErrFontNotFound       = fmt.Errorf("%w: font file not found", ErrConfiguration)
	ErrInvalidSizeBudget  = fmt.Errorf("%w: size budget must be positive", ErrConfiguration)
	ErrInvalidWorkerCount = fmt.Errorf("%w: worker count out of range", ErrConfiguration)
	ErrUnknownFormat      = fmt.Errorf("%w: unknown output format", ErrConfiguration)

	// ErrInput is reported per file.
	ErrInput       = errors.New("input error")
	ErrReadInput   = fmt.Errorf("%w: cannot read file", ErrInput)
	ErrDecodeInput = fmt.Errorf("%w: file is not valid UTF-8", ErrInput)

	// ErrOutputDir is reported per file when the output directory cannot be prepared.
	ErrOutputDir = errors.New("cannot prepare output directory")

	// ErrChunkRender is carried by every *ChunkError.
	ErrChunkRender = errors.New("chunk render failed")

	// ErrVerify reports an artifact whose page count could not be read back.
	ErrVerify = errors.New("artifact verification failed")
)

// Errors raised by collaborators, re-exported for errors.Is checks.
var (
	ErrShaping        = shape.ErrShaping
	ErrWriteArtifact  = render.ErrWriteArtifact
	ErrBrowserConnect = render.ErrBrowserConnect
	ErrPageLoad       = render.ErrPageLoad
	ErrPDFGeneration  = render.ErrPDFGeneration
)

// ChunkError is the failure of one chunk render. It matches both
// ErrChunkRender and the underlying cause with errors.Is.
type ChunkError struct {
	File  string
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s: chunk %d: %v", e.File, e.Index, e.Err)
}

// Unwrap returns ErrChunkRender and the cause.
func (e *ChunkError) Unwrap() []error {
	return []error{ErrChunkRender, e.Err}
}
