package md2doc

// Notes:
// - Pool converters are built with WithRenderers() and WithRasterizers() so
//   no browser handle is ever created.

import (
	"errors"
	"runtime"
	"sync"
	"testing"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

func newTestPool(n int) *ConverterPool {
	return NewConverterPool(n, WithRenderers(), WithRasterizers())
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{name: "explicit takes priority", workers: 4, want: 4},
		{name: "explicit=1 for sequential", workers: 1, want: 1},
		{name: "explicit can exceed max", workers: 16, want: 16},
		{name: "zero uses auto calculation", workers: 0, want: min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	defer pool.Close()

	conv1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	conv2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv1 == conv2 {
		t.Error("expected different converter instances")
	}

	pool.Release(conv1)
	conv3, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv3 != conv1 {
		t.Error("expected to get back released converter")
	}

	pool.Release(conv2)
	pool.Release(conv3)
}

func TestConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := newTestPool(tt.size).Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := newTestPool(3)
	defer pool.Close()

	var mu sync.Mutex
	seen := map[*Converter]bool{}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			mu.Lock()
			seen[conv] = true
			mu.Unlock()
			pool.Release(conv)
		}()
	}
	wg.Wait()

	if len(seen) > 3 {
		t.Errorf("pool created %d converters, capacity 3", len(seen))
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	conv, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after close is a no-op, not a panic.
	pool.Release(conv)

	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestConverterPool_CreationError(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithRenderers(), WithRasterizers(), WithAssetPath("/nonexistent/md2doc-assets"))
	defer pool.Close()

	if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidAssetPath) {
		t.Fatalf("Acquire() error = %v, want ErrInvalidAssetPath", err)
	}
	// The failed slot is returned, so a second attempt tries again.
	if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("second Acquire() error = %v, want ErrInvalidAssetPath", err)
	}
}
