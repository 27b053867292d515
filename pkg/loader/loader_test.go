package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/math3d"
	"github.com/taigrr/orbitview/pkg/models"
)

// gatedLoader blocks each path until its gate is released or ctx ends.
type gatedLoader struct {
	mu     sync.Mutex
	gates  map[string]chan struct{}
	bounds map[string]models.Bounds
	calls  atomic.Int32
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{gates: map[string]chan struct{}{}, bounds: map[string]models.Bounds{}}
}

func (g *gatedLoader) add(path string, b models.Bounds) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gates[path] = make(chan struct{})
	g.bounds[path] = b
}

func (g *gatedLoader) release(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[path])
}

func (g *gatedLoader) load(ctx context.Context, path string) (*models.Info, error) {
	g.calls.Add(1)
	g.mu.Lock()
	gate, ok := g.gates[path]
	b := g.bounds[path]
	g.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	select {
	case <-gate:
		return &models.Info{Path: path, Bounds: b}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func cube(half float64) models.Bounds {
	return models.Bounds{Min: math3d.V3(-half, -half, -half), Max: math3d.V3(half, half, half)}
}

func receive(t *testing.T, c *Coordinator) Result {
	t.Helper()
	select {
	case r, ok := <-c.Results():
		require.True(t, ok, "results channel closed")
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	return Result{}
}

func assertNoResult(t *testing.T, c *Coordinator) {
	t.Helper()
	select {
	case r := <-c.Results():
		t.Fatalf("unexpected result: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func assertIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	assert.Eventually(t, func() bool { return !c.Busy() }, time.Second, time.Millisecond)
}

func TestLoadDeliversResult(t *testing.T) {
	g := newGatedLoader()
	g.add("a.glb", cube(1))
	c := New(g.load)
	defer c.Close()

	gen, err := c.Load("a.glb")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.True(t, c.Busy())

	g.release("a.glb")
	r := receive(t, c)
	require.NoError(t, r.Err)
	assert.Equal(t, gen, r.Generation)
	assert.Equal(t, "a.glb", r.Path)
	assert.Equal(t, cube(1), r.Info.Bounds)
	assertIdle(t, c)
}

func TestLoadErrorIsDelivered(t *testing.T) {
	g := newGatedLoader()
	c := New(g.load)
	defer c.Close()

	_, err := c.Load("missing.glb")
	require.NoError(t, err)
	r := receive(t, c)
	assert.ErrorIs(t, r.Err, os.ErrNotExist)
	assertIdle(t, c)
}

// Two overlapping requests must frame the camera exactly once and go idle
// exactly once, whichever policy is in force.
func TestConcurrentLoadsApplyOnce(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		wantPath   string
		wantBounds models.Bounds
	}{
		{"latest wins", LatestWins, "second.glb", cube(4)},
		{"drop while busy", DropWhileBusy, "first.glb", cube(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGatedLoader()
			g.add("first.glb", cube(1))
			g.add("second.glb", cube(4))

			var idles atomic.Int32
			c := New(g.load, WithPolicy(tt.policy), WithOnIdle(func(uint64) { idles.Add(1) }))
			defer c.Close()

			_, err := c.Load("first.glb")
			require.NoError(t, err)
			_, err = c.Load("second.glb")
			if tt.policy == DropWhileBusy {
				assert.ErrorIs(t, err, ErrBusy)
			} else {
				require.NoError(t, err)
			}

			// Releasing both gates lets a cancelled load race its own cancel.
			g.release("first.glb")
			g.release("second.glb")

			ctrl := camera.NewController()
			fits := 0
			r := receive(t, c)
			require.NoError(t, r.Err)
			ctrl.AutoFit(r.Info.Bounds, 4)
			fits++
			assertNoResult(t, c)

			assert.Equal(t, 1, fits)
			assert.Equal(t, tt.wantPath, r.Path)
			assert.Equal(t, c.Generation(), r.Generation)
			assert.Equal(t, tt.wantBounds.Center(), ctrl.Capture().Target)
			assert.InDelta(t, tt.wantBounds.MaxDimension(), ctrl.Capture().Radius, 1e-9)
			assertIdle(t, c)
			assert.Equal(t, int32(1), idles.Load())
		})
	}
}

func TestLatestWinsCancelsRunningLoad(t *testing.T) {
	g := newGatedLoader()
	g.add("slow.glb", cube(1))
	g.add("fast.glb", cube(2))

	cancelled := make(chan error, 1)
	load := func(ctx context.Context, path string) (*models.Info, error) {
		info, err := g.load(ctx, path)
		if path == "slow.glb" {
			cancelled <- err
		}
		return info, err
	}
	c := New(load)
	defer c.Close()

	_, err := c.Load("slow.glb")
	require.NoError(t, err)
	gen, err := c.Load("fast.glb")
	require.NoError(t, err)

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded load was not cancelled")
	}
	assert.True(t, c.Busy(), "still busy with the newer load")

	g.release("fast.glb")
	r := receive(t, c)
	assert.Equal(t, gen, r.Generation)
	assert.Equal(t, "fast.glb", r.Path)
}

// A load that finished but was never taken must not reach the owner once a
// newer request is accepted.
func TestFinishedLoadSupersededBeforeHandOff(t *testing.T) {
	g := newGatedLoader()
	g.add("a.glb", cube(1))
	g.add("b.glb", cube(2))

	var idles atomic.Int32
	c := New(g.load, WithOnIdle(func(uint64) { idles.Add(1) }))
	defer c.Close()

	_, err := c.Load("a.glb")
	require.NoError(t, err)
	g.release("a.glb")
	// Let a finish and wait at the hand-off without taking it.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, c.Busy(), "busy until the result is taken")
	assert.Equal(t, int32(0), idles.Load())

	gen, err := c.Load("b.glb")
	require.NoError(t, err)
	g.release("b.glb")

	r := receive(t, c)
	assert.Equal(t, gen, r.Generation)
	assert.Equal(t, "b.glb", r.Path)
	assertNoResult(t, c)
	assertIdle(t, c)
	assert.Equal(t, int32(1), idles.Load())
}

func TestBurstOfRequests(t *testing.T) {
	var idles atomic.Int32
	c := New(func(ctx context.Context, path string) (*models.Info, error) {
		select {
		case <-time.After(10 * time.Millisecond):
			return &models.Info{Path: path, Bounds: cube(1)}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, WithOnIdle(func(uint64) { idles.Add(1) }))
	defer c.Close()

	var last uint64
	for _, p := range []string{"1.glb", "2.glb", "3.glb", "4.glb", "5.glb"} {
		gen, err := c.Load(p)
		require.NoError(t, err)
		last = gen
	}

	r := receive(t, c)
	assert.Equal(t, last, r.Generation)
	assert.Equal(t, "5.glb", r.Path)
	assertNoResult(t, c)
	assert.Equal(t, int32(1), idles.Load())
}

func TestCloseCancelsAndClosesResults(t *testing.T) {
	g := newGatedLoader()
	g.add("a.glb", cube(1))
	c := New(g.load)

	_, err := c.Load("a.glb")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, c.Close())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	_, ok := <-c.Results()
	assert.False(t, ok, "results closed")
	_, err = c.Load("a.glb")
	assert.True(t, errors.Is(err, ErrClosed))
	assert.NoError(t, c.Close())
}

func TestDefaultLoaderReadsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 2 0 0\nv 0 2 0\nf 1 2 3\n"), 0o644))

	c := New(nil)
	defer c.Close()
	_, err := c.Load(path)
	require.NoError(t, err)

	r := receive(t, c)
	require.NoError(t, r.Err)
	assert.Equal(t, models.FormatOBJ, r.Info.Format)
	assert.InDelta(t, 2, r.Info.Bounds.MaxDimension(), 1e-9)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("drop-while-busy")
	require.NoError(t, err)
	assert.Equal(t, DropWhileBusy, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LatestWins, p)
	_, err = ParsePolicy("queue")
	assert.Error(t, err)
}
