package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// errResetPending means the viewport is dirty and waiting for Update to reset
var errResetPending = errors.New("renderer: viewport reset pending")

// maxBacklog bounds the pending frame queue
const maxBacklog = 100

// minResolution is the smallest width or height SetResolution accepts,
// exclusive
const minResolution = 10

// noSavedWorkers marks that no worker count is waiting to be restored
const noSavedWorkers = -1

// ViewportOptions configures a new viewport
type ViewportOptions struct {
	Width, Height int          // Overrides the camera resolution when both exceed 10
	Workers       int          // Worker goroutines; <= 0 means one per CPU
	Config        RenderConfig // Initial tunables, normalized on use
	Logger        log.Logger   // Defaults to the "viewport" module logger
	Seed          int64        // Sampler seed base; 0 seeds from the clock
}

// Viewport owns the worker pool and the accumulation buffer. Workers render
// whole frames and offer them through AppendFrame; a single consumer calls
// Update to merge them.
type Viewport struct {
	mu           sync.Mutex // Guards everything below up to the atomics
	scene        *scene.Scene
	config       RenderConfig
	camera       Camera
	accum        []float64
	display      []float32
	density      []atomic.Int32
	savedWorkers int
	merged       int64

	workersMu sync.Mutex // Serializes pool resizes against scene rebuilds

	resolution     atomic.Uint64 // Width in the high half, height in the low half
	dirty          atomic.Bool
	generation     atomic.Uint64
	currentSamples atomic.Int64

	droppedDirty   atomic.Int64
	droppedStale   atomic.Int64
	droppedSize    atomic.Int64
	droppedBacklog atomic.Int64

	frames chan *Frame
	pool   *WorkerPool
	logger log.Logger
}

// NewViewport creates a viewport rendering sc through camera and starts its
// workers. The scene is compiled on the first Update.
func NewViewport(sc *scene.Scene, camera Camera, opts ViewportOptions) *Viewport {
	logger := opts.Logger
	if logger == nil {
		logger = log.New("viewport")
	}

	v := &Viewport{
		scene:        sc,
		config:       opts.Config.Normalized(),
		camera:       camera,
		savedWorkers: noSavedWorkers,
		frames:       make(chan *Frame, maxBacklog),
		logger:       logger,
	}
	v.pool = NewWorkerPool(v, opts.Seed, logger)

	width, height := camera.Width, camera.Height
	if opts.Width > minResolution && opts.Height > minResolution {
		width, height = opts.Width, opts.Height
	}
	v.storeResolution(width, height)
	v.Reset()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	v.SetWorkerCount(workers, false)
	return v
}

func (v *Viewport) storeResolution(width, height int) {
	v.resolution.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

// Resolution returns the current target resolution
func (v *Viewport) Resolution() (int, int) {
	packed := v.resolution.Load()
	return int(packed >> 32), int(packed & math.MaxUint32)
}

// Generation returns the invalidation generation. Frames stamped with an
// older generation are never merged.
func (v *Viewport) Generation() uint64 {
	return v.generation.Load()
}

// markDirty invalidates every in-flight pass. The accumulation buffer is
// cleared by the next Update.
func (v *Viewport) markDirty() {
	v.dirty.Store(true)
	v.generation.Add(1)
	v.pool.ResetAll()
}

// Reset clears the accumulation state, readies the camera at the current
// resolution and cancels every in-flight pass
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.drainFrames()

	width, height := v.Resolution()
	v.camera.Width, v.camera.Height = width, height
	v.camera.Ready()

	size := width * height
	v.accum = make([]float64, size*3)
	v.display = make([]float32, size*3)
	v.density = make([]atomic.Int32, size)
	v.merged = 0

	v.generation.Add(1)
	v.pool.ResetAll()
	v.currentSamples.Store(0)
	v.dirty.Store(false)

	v.logger.Debugf("Viewport reset at %dx%d, generation %d", width, height, v.generation.Load())
}

func (v *Viewport) drainFrames() {
	for {
		select {
		case <-v.frames:
		default:
			return
		}
	}
}

// BeginPass snapshots everything a worker needs for one pass
func (v *Viewport) BeginPass() (*PassParams, geometry.Hittable, error) {
	if v.dirty.Load() {
		return nil, nil, errResetPending
	}

	v.mu.Lock()
	sc := v.scene
	params := &PassParams{
		Config:         v.config,
		Camera:         v.camera,
		Generation:     v.generation.Load(),
		CurrentSamples: int(v.currentSamples.Load()),
		Density:        v.density,
	}
	v.mu.Unlock()
	params.Width, params.Height = params.Camera.Width, params.Camera.Height

	snap := sc.Current()
	if snap == nil {
		return nil, nil, ErrSceneNotReady
	}
	return params, snap.Hittable(), nil
}

// AppendFrame queues a finished frame for merging. The frame is dropped when
// the viewport is dirty, the frame predates the last invalidation, its size
// no longer matches or the queue is full. It never blocks.
func (v *Viewport) AppendFrame(frame *Frame) bool {
	if v.dirty.Load() {
		v.droppedDirty.Add(1)
		return false
	}
	if frame.Generation != v.generation.Load() {
		v.droppedStale.Add(1)
		return false
	}
	if width, height := v.Resolution(); frame.Width != width || frame.Height != height {
		v.droppedSize.Add(1)
		v.logger.Warningf("Dropped %dx%d frame from worker %d, viewport is %dx%d", frame.Width, frame.Height, frame.Worker, width, height)
		return false
	}

	select {
	case v.frames <- frame:
		return true
	default:
		dropped := v.droppedBacklog.Add(1)
		v.logger.Debugf("Frame backlog full, %d frames dropped so far", dropped)
		return false
	}
}

// Update is the consumer step. It resets the viewport when dirty, rebuilding
// the scene first if it changed; otherwise it merges at most one pending frame.
// Only one goroutine may call Update.
func (v *Viewport) Update() {
	v.mu.Lock()
	sc := v.scene
	v.mu.Unlock()

	if sc.IsDirty() {
		v.rebuildScene(sc)
		v.Reset()
		return
	}
	if v.dirty.Load() {
		v.Reset()
		return
	}

	select {
	case frame := <-v.frames:
		v.merge(frame)
	default:
	}

	for _, worker := range v.pool.Workers() {
		if !worker.Heartbeat() {
			v.logger.Warningf("Worker %d has no heartbeat", worker.ID)
		}
	}
}

// rebuildScene compiles the scene with every worker stopped, then restores
// the worker count that was running before
func (v *Viewport) rebuildScene(sc *scene.Scene) {
	v.workersMu.Lock()
	defer v.workersMu.Unlock()

	v.mu.Lock()
	saved := v.savedWorkers
	v.savedWorkers = noSavedWorkers
	v.mu.Unlock()

	if saved == noSavedWorkers {
		saved = v.pool.Size()
	}
	v.pool.Resize(0)

	// Compile problems are logged by the scene and the snapshot stays usable.
	_ = sc.Update()
	v.logger.Debugf("Scene rebuilt, restoring %d workers", saved)

	if saved > 0 {
		v.pool.Resize(saved)
	}
}

func (v *Viewport) merge(frame *Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if frame.Generation != v.generation.Load() {
		v.droppedStale.Add(1)
		return
	}
	if len(frame.Pixels) != len(v.accum) {
		v.droppedSize.Add(1)
		v.logger.Warningf("Discarded %dx%d frame, viewport buffer holds %d pixels", frame.Width, frame.Height, len(v.density))
		return
	}

	v.currentSamples.Add(int64(frame.Samples))

	for px := range v.density {
		rgb := frame.Pixels[px*3 : px*3+3]
		if rgb[0] < 0 || rgb[1] < 0 || rgb[2] < 0 {
			continue
		}
		v.accum[px*3] += float64(rgb[0])
		v.accum[px*3+1] += float64(rgb[1])
		v.accum[px*3+2] += float64(rgb[2])
		density := v.density[px].Add(1)

		compensation := 1 / float64(density)
		for c := 0; c < 3; c++ {
			v.display[px*3+c] = float32(linearToGamma(v.accum[px*3+c] * compensation))
		}
	}
	v.merged++
}

func linearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// Frame returns a copy of the gamma-corrected RGB buffer and its size.
// Pixels that have not received a sample are black.
func (v *Viewport) Frame() ([]float32, int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]float32, len(v.display))
	copy(out, v.display)
	return out, v.camera.Width, v.camera.Height
}

// Image converts the current frame into an 8-bit image
func (v *Viewport) Image() *image.RGBA {
	pixels, width, height := v.Frame()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	intensity := core.NewInterval(0, 0.999)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(256 * intensity.Clamp(float64(pixels[i]))),
				G: uint8(256 * intensity.Clamp(float64(pixels[i+1]))),
				B: uint8(256 * intensity.Clamp(float64(pixels[i+2]))),
				A: 255,
			})
		}
	}
	return img
}

// Run calls Update every interval until ctx is done, then stops every worker
func (v *Viewport) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer v.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Update()
		}
	}
}

// Close stops and joins every worker
func (v *Viewport) Close() {
	v.SetWorkerCount(0, true)
}

// SetResolution changes the render size. Sizes of 10 pixels or fewer in
// either dimension are ignored.
func (v *Viewport) SetResolution(width, height int) {
	if width <= minResolution || height <= minResolution {
		return
	}
	v.storeResolution(width, height)
	v.markDirty()
	v.Reset()
}

// SetWorkerCount grows or shrinks the worker pool. A count below one is
// refused unless override is set. While a scene rebuild is pending the pool
// stays stopped and the count is applied when the rebuild restores workers.
// Returns false if nothing changed.
func (v *Viewport) SetWorkerCount(count int, override bool) bool {
	if count < 1 && !override {
		return false
	}
	count = max(count, 0)

	v.workersMu.Lock()
	defer v.workersMu.Unlock()

	v.mu.Lock()
	if v.savedWorkers != noSavedWorkers {
		changed := v.savedWorkers != count
		v.savedWorkers = count
		v.mu.Unlock()
		return changed
	}
	v.mu.Unlock()

	v.pool.ResetAll()
	return v.pool.Resize(count)
}

// WorkerCount returns the number of workers in the pool
func (v *Viewport) WorkerCount() int {
	return v.pool.Size()
}

// LiveWorkers returns the number of workers reporting a heartbeat
func (v *Viewport) LiveWorkers() int {
	return v.pool.Live()
}

// MarkSceneDirty stops every worker ahead of a scene edit. The next Update
// rebuilds the scene and restores the workers. Returns true if the scene was
// already dirty, in which case nothing is done.
func (v *Viewport) MarkSceneDirty() bool {
	v.workersMu.Lock()
	defer v.workersMu.Unlock()

	v.mu.Lock()
	sc := v.scene
	v.mu.Unlock()

	if sc.IsDirty() {
		return true
	}

	saved := v.pool.Size()
	v.pool.Resize(0)

	v.mu.Lock()
	v.savedWorkers = saved
	v.mu.Unlock()

	return sc.MarkDirty()
}

// SetScene switches to another scene and camera, keeping the render tunables
func (v *Viewport) SetScene(sc *scene.Scene, camera Camera) {
	v.mu.Lock()
	v.scene = sc
	v.camera = camera
	v.mu.Unlock()

	if camera.Width > minResolution && camera.Height > minResolution {
		v.storeResolution(camera.Width, camera.Height)
	}
	sc.MarkDirty()
	v.markDirty()
}

// Scene returns the scene being rendered
func (v *Viewport) Scene() *scene.Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scene
}

// Camera returns a copy of the camera
func (v *Viewport) Camera() Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera
}

// SetCamera replaces the camera's view. The resolution is kept.
func (v *Viewport) SetCamera(camera Camera) {
	v.mu.Lock()
	camera.Width, camera.Height = v.camera.Width, v.camera.Height
	v.camera = camera
	v.mu.Unlock()
	v.markDirty()
}

// Config returns the current render tunables
func (v *Viewport) Config() RenderConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.config
}

// SetConfig replaces every tunable at once, clamping each into range
func (v *Viewport) SetConfig(config RenderConfig) {
	v.updateConfig(func(c *RenderConfig) { *c = config })
}

func (v *Viewport) updateConfig(apply func(c *RenderConfig)) {
	v.mu.Lock()
	apply(&v.config)
	v.config = v.config.Normalized()
	v.mu.Unlock()
	v.markDirty()
}

// SetMaxBounces sets the path depth. Negative values become 0.
func (v *Viewport) SetMaxBounces(bounces int) {
	v.updateConfig(func(c *RenderConfig) { c.MaxBounces = bounces })
}

// SetBias sets the minimum hit distance. Negative values reset it to 0.001.
func (v *Viewport) SetBias(bias float64) {
	v.updateConfig(func(c *RenderConfig) { c.Bias = bias })
}

// SetSampleCount sets the samples per rendered pixel per pass, at least 1
func (v *Viewport) SetSampleCount(count int) {
	v.updateConfig(func(c *RenderConfig) { c.SampleCount = count })
}

// SetMinSamples sets the density below which pixels get filled
func (v *Viewport) SetMinSamples(samples int) {
	v.updateConfig(func(c *RenderConfig) { c.MinSamples = samples })
}

// SetBasicRatio sets the per-pixel render probability, clamped to [0.001, 1]
func (v *Viewport) SetBasicRatio(ratio float64) {
	v.updateConfig(func(c *RenderConfig) { c.BasicRatio = ratio })
}

// SetFillRatio sets the fill probability, clamped to [0.001, 1]
func (v *Viewport) SetFillRatio(ratio float64) {
	v.updateConfig(func(c *RenderConfig) { c.FillRatio = ratio })
}

// IsWaiting reports whether the image is outdated or still empty
func (v *Viewport) IsWaiting() bool {
	return v.dirty.Load() || v.currentSamples.Load() == 0
}

// CurrentSamples returns the samples merged since the last reset
func (v *Viewport) CurrentSamples() int {
	return int(v.currentSamples.Load())
}
