package renderer

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func init() {
	log.Discard()
}

// newIdleViewport returns a viewport with a compiled scene and no workers,
// so tests control exactly which frames are offered
func newIdleViewport(t *testing.T, width, height int) *Viewport {
	t.Helper()
	sc, view := scene.NewQuadLightScene()
	view.Width, view.Height = width, height

	v := NewViewport(sc, NewCamera(view), ViewportOptions{Workers: 1, Config: DefaultRenderConfig(), Seed: 1})
	t.Cleanup(v.Close)

	v.SetWorkerCount(0, true)
	v.Update()
	require.False(t, sc.IsDirty())
	require.Equal(t, 0, v.WorkerCount())
	return v
}

// makeFrame builds a frame for the viewport's current generation
func makeFrame(v *Viewport, pixel func(px int) [3]float32) *Frame {
	width, height := v.Resolution()
	pixels := make([]float32, width*height*3)
	for px := 0; px < width*height; px++ {
		rgb := pixel(px)
		copy(pixels[px*3:], rgb[:])
	}
	return &Frame{Pixels: pixels, Width: width, Height: height, Generation: v.Generation(), Samples: 1}
}

func skip() [3]float32 {
	return [3]float32{skippedPixel, skippedPixel, skippedPixel}
}

func TestViewport_MergeIsOrderIndependent(t *testing.T) {
	frames := []func(px int) [3]float32{
		func(px int) [3]float32 {
			if px == 0 {
				return skip()
			}
			return [3]float32{0.1, 0.2, 0.3}
		},
		func(px int) [3]float32 {
			if px == 0 || px%2 == 1 {
				return skip()
			}
			return [3]float32{0.9, 0.4, 0.0}
		},
		func(px int) [3]float32 {
			if px == 0 {
				return skip()
			}
			return [3]float32{float32(px%7) / 7, 1, 0.5}
		},
	}

	render := func(order []int) []float32 {
		v := newIdleViewport(t, 16, 12)
		for _, i := range order {
			require.True(t, v.AppendFrame(makeFrame(v, frames[i])))
			v.Update()
		}
		assert.Equal(t, int64(len(order)), v.Stats().FramesMerged)
		pixels, width, height := v.Frame()
		require.Equal(t, 16, width)
		require.Equal(t, 12, height)
		return pixels
	}

	a := render([]int{0, 1, 2})
	b := render([]int{2, 0, 1})
	c := render([]int{1, 2, 0})

	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6, "channel %d", i)
		assert.InDelta(t, a[i], c[i], 1e-6, "channel %d", i)
	}

	// Pixel 0 was skipped by every frame
	assert.Equal(t, []float32{0, 0, 0}, a[0:3])

	// Pixel 1 saw frames 0 and 2 only
	expect := math.Sqrt((0.1 + 1.0/7) / 2)
	assert.InDelta(t, expect, a[3], 1e-6)
}

func TestViewport_DensityCountsRenderedPixels(t *testing.T) {
	v := newIdleViewport(t, 20, 20)

	for i := 0; i < 3; i++ {
		require.True(t, v.AppendFrame(makeFrame(v, func(px int) [3]float32 {
			if px < 100 {
				return skip()
			}
			return [3]float32{0.5, 0.5, 0.5}
		})))
		v.Update()
	}

	stats := v.Stats()
	assert.Equal(t, int32(0), stats.MinDensity)
	assert.Equal(t, int32(3), stats.MaxDensity)
	assert.InDelta(t, 3*300.0/400.0, stats.AverageDensity, 1e-9)
	assert.Equal(t, 3, stats.CurrentSamples)
}

func TestViewport_SamplesCountOnlyMergedFrames(t *testing.T) {
	v := newIdleViewport(t, 20, 20)
	bright := func(int) [3]float32 { return [3]float32{1, 1, 1} }

	require.True(t, v.AppendFrame(makeFrame(v, bright)))
	assert.Equal(t, 0, v.CurrentSamples(), "queued frames are not counted")
	assert.True(t, v.IsWaiting())

	v.Update()
	assert.Equal(t, 1, v.CurrentSamples())
	assert.False(t, v.IsWaiting())

	// Accepted before a reset, merged after it
	queued := makeFrame(v, bright)
	v.SetMaxBounces(5)
	v.Update()
	v.frames <- queued
	v.Update()
	assert.Equal(t, 0, v.CurrentSamples())
	assert.True(t, v.IsWaiting())
}

func TestViewport_StaleFramesAreNeverMerged(t *testing.T) {
	v := newIdleViewport(t, 20, 20)
	bright := func(int) [3]float32 { return [3]float32{1, 1, 1} }

	// Rendered before a setter, offered after it
	stale := makeFrame(v, bright)
	v.SetMaxBounces(5)
	assert.True(t, v.IsWaiting())
	assert.False(t, v.AppendFrame(stale), "dirty viewport must refuse frames")

	v.Update()
	assert.False(t, v.AppendFrame(stale), "frame from an older generation must be refused")

	// Queued before the invalidation, merged after it
	queued := makeFrame(v, bright)
	require.True(t, v.AppendFrame(queued))
	v.SetBias(0.01)
	v.Update()
	v.Update()

	// Slipped into the queue after a reset
	v.frames <- stale
	v.Update()

	pixels, _, _ := v.Frame()
	for i, p := range pixels {
		require.Zero(t, p, "channel %d was merged from a stale frame", i)
	}

	stats := v.Stats()
	assert.Zero(t, stats.FramesMerged)
	assert.Equal(t, int64(1), stats.DroppedDirty)
	assert.Equal(t, int64(2), stats.DroppedStale)
}

func TestViewport_RefusesMismatchedAndOverflowingFrames(t *testing.T) {
	v := newIdleViewport(t, 20, 20)

	wrong := makeFrame(v, func(int) [3]float32 { return [3]float32{1, 1, 1} })
	wrong.Width = 19
	assert.False(t, v.AppendFrame(wrong))

	for i := 0; i < maxBacklog; i++ {
		require.True(t, v.AppendFrame(makeFrame(v, func(int) [3]float32 { return [3]float32{} })))
	}
	assert.False(t, v.AppendFrame(makeFrame(v, func(int) [3]float32 { return [3]float32{} })))

	stats := v.Stats()
	assert.Equal(t, int64(1), stats.DroppedSize)
	assert.Equal(t, int64(1), stats.DroppedBacklog)
	assert.Equal(t, maxBacklog, stats.Pending)
	assert.Equal(t, int64(2), stats.FramesDropped())
}

func TestViewport_SetResolution(t *testing.T) {
	v := newIdleViewport(t, 20, 20)
	generation := v.Generation()

	v.SetResolution(10, 50)
	v.SetResolution(50, 0)
	width, height := v.Resolution()
	assert.Equal(t, 20, width)
	assert.Equal(t, 20, height)
	assert.Equal(t, generation, v.Generation(), "ignored resolutions must not invalidate")

	v.SetResolution(40, 30)
	pixels, width, height := v.Frame()
	assert.Equal(t, 40, width)
	assert.Equal(t, 30, height)
	assert.Len(t, pixels, 40*30*3)
	assert.Greater(t, v.Generation(), generation)
	assert.Equal(t, 40, v.Camera().Width)
}

func TestViewport_SettersClamp(t *testing.T) {
	v := newIdleViewport(t, 20, 20)

	tests := []struct {
		name  string
		apply func()
		check func(c RenderConfig) bool
	}{
		{"max bounces", func() { v.SetMaxBounces(-3) }, func(c RenderConfig) bool { return c.MaxBounces == 0 }},
		{"bias", func() { v.SetBias(-1) }, func(c RenderConfig) bool { return c.Bias == 0.001 }},
		{"sample count", func() { v.SetSampleCount(0) }, func(c RenderConfig) bool { return c.SampleCount == 1 }},
		{"min samples", func() { v.SetMinSamples(-5) }, func(c RenderConfig) bool { return c.MinSamples == 0 }},
		{"basic ratio low", func() { v.SetBasicRatio(0) }, func(c RenderConfig) bool { return c.BasicRatio == 0.001 }},
		{"basic ratio high", func() { v.SetBasicRatio(2) }, func(c RenderConfig) bool { return c.BasicRatio == 1 }},
		{"fill ratio", func() { v.SetFillRatio(-1) }, func(c RenderConfig) bool { return c.FillRatio == 0.001 }},
		{"valid value kept", func() { v.SetSampleCount(4) }, func(c RenderConfig) bool { return c.SampleCount == 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generation := v.Generation()
			tt.apply()
			assert.True(t, tt.check(v.Config()), "config after setter: %+v", v.Config())
			assert.Greater(t, v.Generation(), generation)
			assert.True(t, v.IsWaiting())
			v.Update()
		})
	}
}

func TestViewport_WorkerCount(t *testing.T) {
	sc, view := scene.NewQuadLightScene()
	v := NewViewport(sc, NewCamera(view), ViewportOptions{Workers: 4, Seed: 5, Config: DefaultRenderConfig()})
	defer v.Close()

	assert.Equal(t, 4, v.WorkerCount())
	last := v.pool.Workers()[3]

	assert.True(t, v.SetWorkerCount(1, false))
	assert.False(t, last.Heartbeat(), "removed worker should stop its heartbeat")
	assert.True(t, v.SetWorkerCount(8, false))
	assert.False(t, v.SetWorkerCount(8, false), "unchanged count")
	assert.False(t, v.SetWorkerCount(0, false), "zero without override")
	assert.False(t, v.SetWorkerCount(-2, false), "negative without override")

	assert.Equal(t, 8, v.WorkerCount())
	require.Eventually(t, func() bool { return v.LiveWorkers() == 8 }, 5*time.Second, 10*time.Millisecond)

	stats := v.Stats()
	assert.Equal(t, int64(11), stats.WorkersSpawned)
	assert.Equal(t, stats.WorkersJoined+8, stats.WorkersSpawned)
	assert.Len(t, stats.Workers, 8)

	assert.True(t, v.SetWorkerCount(0, true))
	assert.Equal(t, 0, v.LiveWorkers())
	stats = v.Stats()
	assert.Equal(t, stats.WorkersSpawned, stats.WorkersJoined)
}

func TestViewport_MarkSceneDirtyQuiescesWorkers(t *testing.T) {
	sc, view := scene.NewQuadLightScene()
	v := NewViewport(sc, NewCamera(view), ViewportOptions{Workers: 2, Seed: 9, Config: DefaultRenderConfig()})
	defer v.Close()

	v.Update()
	require.False(t, sc.IsDirty())

	assert.False(t, v.MarkSceneDirty())
	assert.Equal(t, 0, v.WorkerCount())
	assert.True(t, sc.IsDirty())
	assert.True(t, v.MarkSceneDirty(), "second call sees the scene already dirty")

	v.Update()
	assert.False(t, sc.IsDirty())
	assert.Equal(t, 2, v.WorkerCount())
}

func TestViewport_WorkerCountDuringSceneEdit(t *testing.T) {
	sc, view := scene.NewQuadLightScene()
	v := NewViewport(sc, NewCamera(view), ViewportOptions{Workers: 2, Seed: 9, Config: DefaultRenderConfig()})
	defer v.Close()

	v.Update()
	require.False(t, v.MarkSceneDirty())

	before := v.Stats()
	require.Equal(t, before.WorkersSpawned, before.WorkersJoined)

	assert.True(t, v.SetWorkerCount(3, false))
	assert.Equal(t, 0, v.WorkerCount(), "workers stay stopped until the scene is rebuilt")
	assert.False(t, v.SetWorkerCount(3, false))
	assert.Equal(t, before.WorkersSpawned, v.Stats().WorkersSpawned)

	v.Update()
	assert.False(t, sc.IsDirty())
	assert.Equal(t, 3, v.WorkerCount())

	after := v.Stats()
	assert.Equal(t, before.WorkersSpawned+3, after.WorkersSpawned)
	assert.Equal(t, before.WorkersJoined, after.WorkersJoined)

	// Stopping every worker during an edit keeps the pool empty after the rebuild
	require.False(t, v.MarkSceneDirty())
	v.Close()
	v.Update()
	assert.Equal(t, 0, v.WorkerCount())
}

func TestViewport_ConvergesToEmitterRadiance(t *testing.T) {
	sc, view := scene.NewQuadLightScene()
	config := DefaultRenderConfig()
	config.MaxBounces = 1
	config.BasicRatio = 1
	config.SampleCount = 4

	v := NewViewport(sc, NewCamera(view), ViewportOptions{Workers: 2, Seed: 11, Config: config})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v.Run(ctx, time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return v.Stats().MinDensity >= 3
	}, 20*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	assert.Equal(t, 0, v.WorkerCount())
	assert.False(t, v.IsWaiting())

	expect := scene.QuadLightRadiance
	pixels, width, height := v.Frame()
	for px := 0; px < width*height; px++ {
		rgb := pixels[px*3 : px*3+3]
		require.InDelta(t, math.Sqrt(expect.X), rgb[0], 1e-4, "pixel %d", px)
		require.InDelta(t, math.Sqrt(expect.Y), rgb[1], 1e-4, "pixel %d", px)
		require.InDelta(t, math.Sqrt(expect.Z), rgb[2], 1e-4, "pixel %d", px)
	}

	stats := v.Stats()
	assert.GreaterOrEqual(t, stats.FramesMerged, int64(3))
	assert.Empty(t, stats.Workers, "workers are gone after Run returns")
	assert.Equal(t, stats.WorkersSpawned, stats.WorkersJoined)
}

func TestViewport_Image(t *testing.T) {
	v := newIdleViewport(t, 20, 20)
	require.True(t, v.AppendFrame(makeFrame(v, func(px int) [3]float32 {
		if px == 1 {
			return [3]float32{4, 4, 4}
		}
		return [3]float32{0.25, 0, 1}
	})))
	v.Update()

	img := v.Image()
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	c := img.RGBAAt(0, 0)
	assert.Equal(t, uint8(128), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(255), c.B)
	assert.Equal(t, uint8(255), c.A)

	bright := img.RGBAAt(1, 0)
	assert.Equal(t, uint8(255), bright.R, "values above one clamp to full intensity")
}

func TestFormatStats(t *testing.T) {
	stats := ViewportStats{
		Width:          64,
		Height:         48,
		CurrentSamples: 12,
		FramesMerged:   12,
		MaxDensity:     3,
		AverageDensity: 1.5,
		Workers: []WorkerStats{
			{ID: 0, Alive: true, Delivered: 7, Cancelled: 1},
			{ID: 1, Alive: true, Delivered: 5},
		},
	}

	out := FormatStats(stats)
	for _, want := range []string{"Resolution", "64x48", "Frames merged", "Dropped (backlog)", "Delivered", "TOTAL", "12"} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}

	assert.NotContains(t, FormatStats(ViewportStats{}), "Delivered")
}
