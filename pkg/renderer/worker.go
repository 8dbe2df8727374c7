package renderer

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// notReadyBackoff is how long a worker waits before retrying when there is
// nothing to render yet
const notReadyBackoff = 5 * time.Millisecond

// passSource is the side of the viewport a worker talks to
type passSource interface {
	// BeginPass snapshots the parameters and world for a new pass
	BeginPass() (*PassParams, geometry.Hittable, error)
	// Resolution returns the current target resolution
	Resolution() (width, height int)
	// Generation returns the current invalidation generation
	Generation() uint64
	// AppendFrame offers a finished frame; false means it was dropped
	AppendFrame(frame *Frame) bool
}

// RenderWorker renders whole-frame passes in its own goroutine until stopped
type RenderWorker struct {
	ID int

	source  passSource
	sampler core.Sampler

	earlyExit atomic.Bool
	stop      atomic.Bool
	heartbeat atomic.Bool
	done      chan struct{}

	delivered     atomic.Int64
	refused       atomic.Int64
	cancelled     atomic.Int64
	resized       atomic.Int64
	tooFewPixels  atomic.Int64
	notReadyWaits atomic.Int64
}

func newRenderWorker(id int, source passSource, seed int64) *RenderWorker {
	w := &RenderWorker{
		ID:      id,
		source:  source,
		sampler: core.NewSeededSampler(seed),
		done:    make(chan struct{}),
	}
	w.heartbeat.Store(true)
	return w
}

func (w *RenderWorker) start() {
	go w.run()
}

// EarlyExit asks the worker to abandon its in-flight pass
func (w *RenderWorker) EarlyExit() {
	w.earlyExit.Store(true)
}

// Heartbeat reports whether the worker loop is alive
func (w *RenderWorker) Heartbeat() bool {
	return w.heartbeat.Load()
}

// stopAndJoin cancels the current pass, ends the loop and waits for it
func (w *RenderWorker) stopAndJoin() {
	w.stop.Store(true)
	w.earlyExit.Store(true)
	<-w.done
}

func (w *RenderWorker) run() {
	defer close(w.done)
	defer w.heartbeat.Store(false)

	for !w.stop.Load() {
		w.heartbeat.Store(true)

		frame, err := w.renderOnce()
		switch {
		case err == nil:
			frame.Worker = w.ID
			if w.source.AppendFrame(frame) {
				w.delivered.Add(1)
			} else {
				w.refused.Add(1)
			}
		case errors.Is(err, ErrSceneNotReady), errors.Is(err, errResetPending):
			w.notReadyWaits.Add(1)
			time.Sleep(notReadyBackoff)
		case errors.Is(err, ErrPassCancelled):
			w.cancelled.Add(1)
		case errors.Is(err, ErrResolutionChanged):
			w.resized.Add(1)
		case errors.Is(err, ErrTooFewPixels):
			w.tooFewPixels.Add(1)
		}
	}
}

func (w *RenderWorker) renderOnce() (*Frame, error) {
	// Cleared before reading parameters so a reset landing after this point
	// still cancels the pass, via the flag or the generation check.
	w.earlyExit.Store(false)

	params, world, err := w.source.BeginPass()
	if err != nil {
		return nil, err
	}
	return RenderPass(params, world, &workerControl{worker: w, generation: params.Generation}, w.sampler)
}

// workerControl cancels a pass when its worker is told to exit early or the
// viewport has moved on to a newer generation
type workerControl struct {
	worker     *RenderWorker
	generation uint64
}

func (c *workerControl) Cancelled() bool {
	return c.worker.earlyExit.Load() || c.worker.source.Generation() != c.generation
}

func (c *workerControl) Resolution() (int, int) {
	return c.worker.source.Resolution()
}

// WorkerStats is a point-in-time view of one worker's counters
type WorkerStats struct {
	ID           int
	Alive        bool
	Delivered    int64 // Frames accepted by the viewport
	Refused      int64 // Completed frames the viewport dropped
	Cancelled    int64 // Passes abandoned on early exit
	Resized      int64 // Passes abandoned on resolution change
	TooFewPixels int64
	Waits        int64 // Back-offs while the scene or viewport was not ready
}

// Stats returns the worker's counters
func (w *RenderWorker) Stats() WorkerStats {
	return WorkerStats{
		ID:           w.ID,
		Alive:        w.heartbeat.Load(),
		Delivered:    w.delivered.Load(),
		Refused:      w.refused.Load(),
		Cancelled:    w.cancelled.Load(),
		Resized:      w.resized.Load(),
		TooFewPixels: w.tooFewPixels.Load(),
		Waits:        w.notReadyWaits.Load(),
	}
}
