package renderer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

// WorkerPool owns the render workers. The worker list is published through
// an atomic pointer so ResetAll never blocks on a resize in progress.
type WorkerPool struct {
	mu      sync.Mutex // Serializes Resize
	workers atomic.Pointer[[]*RenderWorker]
	nextID  int
	seed    int64
	source  passSource
	logger  log.Logger

	spawned atomic.Int64
	joined  atomic.Int64
}

// NewWorkerPool creates an empty pool feeding frames to source. A zero seed
// seeds worker samplers from the clock.
func NewWorkerPool(source passSource, seed int64, logger log.Logger) *WorkerPool {
	wp := &WorkerPool{
		source: source,
		seed:   seed,
		logger: logger,
	}
	empty := []*RenderWorker{}
	wp.workers.Store(&empty)
	return wp
}

// Resize grows or shrinks the pool to count workers. Growing starts the new
// workers immediately; shrinking stops the most recently added workers and
// joins them. Returns false if the size did not change.
func (wp *WorkerPool) Resize(count int) bool {
	if count < 0 {
		count = 0
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	current := *wp.workers.Load()
	if count == len(current) {
		return false
	}

	if count > len(current) {
		grown := make([]*RenderWorker, len(current), count)
		copy(grown, current)
		for len(grown) < count {
			worker := newRenderWorker(wp.nextID, wp.source, wp.workerSeed(wp.nextID))
			wp.nextID++
			grown = append(grown, worker)
			worker.start()
			wp.spawned.Add(1)
		}
		wp.workers.Store(&grown)
		wp.logger.Infof("Worker pool grown from %d to %d", len(current), count)
		return true
	}

	kept := make([]*RenderWorker, count)
	copy(kept, current[:count])
	wp.workers.Store(&kept)

	removed := current[count:]
	for _, worker := range removed {
		worker.stop.Store(true)
		worker.earlyExit.Store(true)
	}
	for _, worker := range removed {
		worker.stopAndJoin()
		wp.joined.Add(1)
	}
	wp.logger.Infof("Worker pool shrunk from %d to %d", len(current), count)
	return true
}

func (wp *WorkerPool) workerSeed(id int) int64 {
	if wp.seed == 0 {
		return time.Now().UnixNano() + int64(id)
	}
	return wp.seed + int64(id)
}

// ResetAll tells every worker to abandon its in-flight pass
func (wp *WorkerPool) ResetAll() {
	for _, worker := range *wp.workers.Load() {
		worker.EarlyExit()
	}
}

// Workers returns the current workers
func (wp *WorkerPool) Workers() []*RenderWorker {
	return *wp.workers.Load()
}

// Size returns the number of workers in the pool
func (wp *WorkerPool) Size() int {
	return len(*wp.workers.Load())
}

// Live returns the number of workers whose heartbeat is set
func (wp *WorkerPool) Live() int {
	live := 0
	for _, worker := range *wp.workers.Load() {
		if worker.Heartbeat() {
			live++
		}
	}
	return live
}

// Spawned returns how many workers the pool has ever started
func (wp *WorkerPool) Spawned() int64 {
	return wp.spawned.Load()
}

// Joined returns how many workers the pool has stopped and joined
func (wp *WorkerPool) Joined() int64 {
	return wp.joined.Load()
}
