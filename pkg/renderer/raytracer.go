package renderer

import (
	"errors"
	"sync/atomic"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

var (
	// ErrPassCancelled means the worker's early-exit flag tripped mid-pass
	ErrPassCancelled = errors.New("renderer: pass cancelled")
	// ErrResolutionChanged means the target resolution changed mid-pass
	ErrResolutionChanged = errors.New("renderer: resolution changed during pass")
	// ErrTooFewPixels means the pass rendered too few pixels to be worth merging
	ErrTooFewPixels = errors.New("renderer: too few pixels rendered")
	// ErrSceneNotReady means no scene snapshot has been published yet
	ErrSceneNotReady = errors.New("renderer: scene not ready")
)

// skippedPixel marks a pixel the pass chose not to render
const skippedPixel = -1

// minRenderedPixels keeps near-empty frames out of the merge queue
const minRenderedPixels = 40

// PassParams is the immutable input of one render pass
type PassParams struct {
	Config         RenderConfig
	Camera         Camera         // Readied copy
	Width, Height  int            // Resolution the pass renders at
	Generation     uint64         // Viewport generation the pass started under
	CurrentSamples int            // Samples accumulated when the pass started
	Density        []atomic.Int32 // Per-pixel sample counts, read as a hint
}

// PassControl is polled by a running pass
type PassControl interface {
	// Cancelled reports whether the pass should be abandoned
	Cancelled() bool
	// Resolution returns the current target resolution
	Resolution() (width, height int)
}

// Frame is the output of one completed pass: width*height*3 floats holding
// the averaged radiance per pixel, or skippedPixel for pixels not rendered
type Frame struct {
	Pixels        []float32
	Width, Height int
	Generation    uint64
	Samples       int // Samples per rendered pixel
	Worker        int
}

// pixelScheduler decides which pixels a pass renders
type pixelScheduler struct {
	renderAll  bool
	matured    bool
	basicRatio float64
	fillRatio  float64
	minSamples int32
	density    []atomic.Int32
}

func newPixelScheduler(params *PassParams) pixelScheduler {
	cfg := params.Config
	s := pixelScheduler{
		renderAll:  cfg.BasicRatio <= 0 || cfg.BasicRatio > 1,
		basicRatio: cfg.BasicRatio,
		fillRatio:  cfg.FillRatio,
		minSamples: int32(cfg.MinSamples),
		density:    params.Density,
	}
	if !s.renderAll {
		s.matured = float64(params.CurrentSamples) > float64(cfg.MinSamples)/cfg.BasicRatio
	}
	return s
}

// shouldRender draws a fresh decision for pixel index px. Once the image has
// matured, under-sampled pixels get a second chance through fillRatio.
func (s *pixelScheduler) shouldRender(px int, sampler core.Sampler) bool {
	render := s.renderAll
	if !render && s.matured && px < len(s.density) {
		if s.density[px].Load() < s.minSamples && sampler.Get1D() < s.fillRatio {
			render = true
		}
	}
	if sampler.Get1D() < s.basicRatio {
		render = true
	}
	return render
}

// RenderPass renders one full frame against world. It returns a sentinel
// error instead of a frame when the pass must not be merged.
func RenderPass(params *PassParams, world geometry.Hittable, control PassControl, sampler core.Sampler) (*Frame, error) {
	width, height := params.Width, params.Height
	cfg := params.Config
	camera := params.Camera

	tracer := integrator.NewPathTracingIntegrator(integrator.Config{
		MaxBounces: cfg.MaxBounces,
		Bias:       cfg.Bias,
		Background: camera.Background,
	})
	scheduler := newPixelScheduler(params)
	contribution := 1.0 / float64(cfg.SampleCount)

	pixels := make([]float32, width*height*3)
	rendered := 0

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			if w, h := control.Resolution(); w != width || h != height {
				return nil, ErrResolutionChanged
			}

			px := j*width + i
			out := pixels[px*3 : px*3+3]

			if !scheduler.shouldRender(px, sampler) {
				out[0], out[1], out[2] = skippedPixel, skippedPixel, skippedPixel
				continue
			}

			rendered++
			var colorAccum core.Vec3
			for sample := 0; sample < cfg.SampleCount; sample++ {
				if control.Cancelled() {
					return nil, ErrPassCancelled
				}
				ray := camera.GetRay(i, j, sampler)
				colorAccum = colorAccum.Add(tracer.RayColor(ray, world, sampler))
			}

			colorVec := colorAccum.Multiply(contribution)
			out[0], out[1], out[2] = float32(colorVec.X), float32(colorVec.Y), float32(colorVec.Z)
		}
	}

	if rendered < minRenderedPixels {
		return nil, ErrTooFewPixels
	}

	return &Frame{
		Pixels:     pixels,
		Width:      width,
		Height:     height,
		Generation: params.Generation,
		Samples:    cfg.SampleCount,
	}, nil
}
