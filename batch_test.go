package txt2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConverter returns canned reports after a per-file delay.
type stubConverter struct {
	delay   map[string]time.Duration
	fail    map[string]error
	panicOn string
	calls   atomic.Int32
}

func (s *stubConverter) ConvertFile(ctx context.Context, in FileInput) *FileReport {
	s.calls.Add(1)
	if in.Path == s.panicOn {
		panic("converter exploded")
	}
	select {
	case <-time.After(s.delay[in.Path]):
	case <-ctx.Done():
		return &FileReport{InputPath: in.Path, Err: ctx.Err()}
	}
	return &FileReport{InputPath: in.Path, Chunks: 1, Err: s.fail[in.Path]}
}

func inputs(n int) []FileInput {
	out := make([]FileInput, n)
	for i := range out {
		out[i] = FileInput{Path: fmt.Sprintf("f%d.txt", i)}
	}
	return out
}

func TestConvertBatch_InputOrderAndIsolation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	conv := &stubConverter{
		delay: map[string]time.Duration{
			"f0.txt": 20 * time.Millisecond,
			"f1.txt": 1 * time.Millisecond,
			"f2.txt": 10 * time.Millisecond,
		},
		fail: map[string]error{"f1.txt": boom},
	}

	var updates []int
	reports := ConvertBatch(context.Background(), conv, inputs(4), 4, ProgressFunc(func(completed, total int) {
		assert.Equal(t, 4, total)
		updates = append(updates, completed)
	}))

	require.Len(t, reports, 4)
	for i, r := range reports {
		assert.Equal(t, fmt.Sprintf("f%d.txt", i), r.InputPath)
	}
	assert.ErrorIs(t, reports[1].Err, boom)
	assert.NoError(t, reports[0].Err)
	assert.NoError(t, reports[2].Err)
	assert.NoError(t, reports[3].Err)
	assert.Equal(t, []int{1, 2, 3, 4}, updates)
}

func TestConvertBatch_PanicIsolated(t *testing.T) {
	t.Parallel()

	conv := &stubConverter{panicOn: "f1.txt"}
	reports := ConvertBatch(context.Background(), conv, inputs(3), 2, nil)

	require.Len(t, reports, 3)
	require.Error(t, reports[1].Err)
	assert.Contains(t, reports[1].Err.Error(), "converter exploded")
	assert.Equal(t, "f1.txt", reports[1].InputPath)
	assert.NoError(t, reports[0].Err)
	assert.NoError(t, reports[2].Err)
}

func TestConvertBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := &stubConverter{}
	reports := ConvertBatch(ctx, conv, inputs(3), 1, nil)

	require.Len(t, reports, 3)
	assert.Zero(t, conv.calls.Load())
	for i, r := range reports {
		assert.Equal(t, fmt.Sprintf("f%d.txt", i), r.InputPath)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

// loggingStub exposes a logger the way *Converter does.
type loggingStub struct {
	stubConverter
	log zerolog.Logger
}

func (s *loggingStub) Logger() zerolog.Logger { return s.log }

func TestConvertBatch_CancelledIsLogged(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	conv := &loggingStub{log: zerolog.New(&buf)}
	ConvertBatch(ctx, conv, inputs(3), 1, nil)

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, `"message":"file not converted"`))
	for i := range 3 {
		assert.Contains(t, out, fmt.Sprintf(`"file":"f%d.txt"`, i))
	}
	assert.Contains(t, out, `"error":"context canceled"`)
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ConvertBatch(context.Background(), &stubConverter{}, nil, 0, nil))
}

func TestConvertBatch_WithConverter(t *testing.T) {
	t.Parallel()

	b := newFakeBuilder()
	conv := newTestConverter(t, b, WithMaxUnitSizeMB(fiveChunkBudget))
	out := t.TempDir()

	in := []FileInput{
		{Path: writeInput(t, "a.txt", []byte(hundredBytes)), OutputDir: out},
		{Path: writeInput(t, "b.txt", []byte("short")), OutputDir: out},
	}
	reports := ConvertBatch(context.Background(), conv, in, 0, nil)

	require.Len(t, reports, 2)
	assert.Equal(t, 5, reports[0].Chunks)
	assert.Equal(t, 1, reports[1].Chunks)
	assert.True(t, reports[0].OK())
	assert.True(t, reports[1].OK())
	assert.Len(t, b.paths, 6)
}
