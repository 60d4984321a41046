package txt2pdf

import (
	"context"

	"github.com/rs/zerolog"
)

// FileConverter converts one file. *Converter implements it.
type FileConverter interface {
	ConvertFile(ctx context.Context, in FileInput) *FileReport
}

var _ FileConverter = (*Converter)(nil)

// ConvertBatch converts inputs with at most workers files in flight; zero
// means DefaultFileWorkers. Reports are returned in input order while
// progress is updated in completion order. A failing file never affects the
// others. Once ctx ends no new file is started and the unstarted ones are
// reported with ctx.Err(). Files that never ran, or panicked, are logged
// through conv's logger when it exposes one.
func ConvertBatch(ctx context.Context, conv FileConverter, inputs []FileInput, workers int, progress Progress) []FileReport {
	if len(inputs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultFileWorkers
	}

	log := zerolog.Nop()
	if l, ok := conv.(interface{ Logger() zerolog.Logger }); ok {
		log = l.Logger()
	}

	reports := make([]FileReport, len(inputs))
	progress = progressOrNop(progress)
	completed := 0

	runBounded(ctx, workers, len(inputs),
		func(ctx context.Context, i int) error {
			if r := conv.ConvertFile(ctx, inputs[i]); r != nil {
				reports[i] = *r
			} else {
				reports[i] = FileReport{InputPath: inputs[i].Path}
			}
			return nil
		},
		func(i int, err error) {
			if err != nil {
				reports[i] = FileReport{InputPath: inputs[i].Path, Err: err}
				log.Error().Err(err).Str("file", inputs[i].Path).Msg("file not converted")
			}
			completed++
			progress.Update(completed, len(inputs))
		},
	)
	return reports
}
