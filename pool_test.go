package txt2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_Bounds(t *testing.T) {
	t.Parallel()

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want within [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
}

// ---------------------------------------------------------------------------
// runBounded
// ---------------------------------------------------------------------------

func TestRunBounded_RespectsLimit(t *testing.T) {
	t.Parallel()

	const limit, n = 3, 20
	var running, peak atomic.Int32
	seen := make(map[int]int)

	runBounded(context.Background(), limit, n,
		func(_ context.Context, i int) error {
			cur := running.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil
		},
		func(i int, err error) {
			assert.NoError(t, err)
			seen[i]++
		},
	)

	assert.LessOrEqual(t, peak.Load(), int32(limit))
	require.Len(t, seen, n)
	for i := range n {
		assert.Equal(t, 1, seen[i], "index %d", i)
	}
}

func TestRunBounded_ErrorsDoNotCancelSiblings(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var calls atomic.Int32
	errs := make(map[int]error)

	runBounded(context.Background(), 2, 6,
		func(_ context.Context, i int) error {
			calls.Add(1)
			if i == 1 {
				return boom
			}
			return nil
		},
		func(i int, err error) { errs[i] = err },
	)

	assert.Equal(t, int32(6), calls.Load())
	assert.ErrorIs(t, errs[1], boom)
	for _, i := range []int{0, 2, 3, 4, 5} {
		assert.NoError(t, errs[i])
	}
}

func TestRunBounded_RecoversPanic(t *testing.T) {
	t.Parallel()

	var got error
	runBounded(context.Background(), 1, 1,
		func(context.Context, int) error { panic("kaboom") },
		func(_ int, err error) { got = err },
	)
	require.Error(t, got)
	assert.Contains(t, got.Error(), "kaboom")
}

func TestRunBounded_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	var errs []error
	runBounded(ctx, 2, 4,
		func(context.Context, int) error {
			calls.Add(1)
			return nil
		},
		func(_ int, err error) { errs = append(errs, err) },
	)

	assert.Zero(t, calls.Load())
	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRunBounded_CancelStopsSubmission(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	var started atomic.Int32
	var mu sync.Mutex
	cancelled := 0

	go func() {
		for started.Load() < 1 {
			time.Sleep(time.Millisecond)
		}
		cancel()
		close(release)
	}()

	runBounded(ctx, 1, 5,
		func(context.Context, int) error {
			started.Add(1)
			<-release
			return nil
		},
		func(_ int, err error) {
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, context.Canceled) {
				cancelled++
			}
		},
	)

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, 4, cancelled)
}

func TestRunBounded_Empty(t *testing.T) {
	t.Parallel()

	runBounded(context.Background(), 4, 0,
		func(context.Context, int) error { t.Fatal("fn called"); return nil },
		func(int, error) { t.Fatal("done called") },
	)
}
