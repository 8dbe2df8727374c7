package cmd

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// viewportFlags are the flags shared by every command that starts a viewport
type viewportFlags struct {
	scene         string
	width, height int
	workers       int
	seed          int64
	image         string
	config        renderer.RenderConfig
}

func (f *viewportFlags) register(cmd *cobra.Command) {
	defaults := renderer.DefaultRenderConfig()
	flags := cmd.Flags()

	flags.StringVar(&f.scene, "scene", "default", "Scene preset, see the scenes command")
	flags.IntVar(&f.width, "width", 0, "Image width, 0 keeps the preset's")
	flags.IntVar(&f.height, "height", 0, "Image height, 0 keeps the preset's")
	flags.IntVar(&f.workers, "workers", 0, "Render workers, 0 uses one per logical CPU")
	flags.Int64Var(&f.seed, "seed", 0, "Sampler seed, 0 seeds from the clock")
	flags.StringVar(&f.image, "image", "", "Image file (PNG, JPEG, BMP or TIFF) replacing every image texture in the scene")

	flags.IntVar(&f.config.MaxBounces, "max-bounces", defaults.MaxBounces, "Maximum bounces per path")
	flags.Float64Var(&f.config.Bias, "bias", defaults.Bias, "Minimum hit distance")
	flags.IntVar(&f.config.SampleCount, "sample-count", defaults.SampleCount, "Samples per rendered pixel per pass")
	flags.IntVar(&f.config.MinSamples, "min-samples", defaults.MinSamples, "Density below which pixels are filled once the image matures")
	flags.Float64Var(&f.config.BasicRatio, "basic-ratio", defaults.BasicRatio, "Chance of rendering each pixel in a pass")
	flags.Float64Var(&f.config.FillRatio, "fill-ratio", defaults.FillRatio, "Chance of filling an under-sampled pixel")
}

// newViewport loads the preset and starts a viewport rendering it
func (f *viewportFlags) newViewport(viewportLogger log.Logger) (*renderer.Viewport, error) {
	sc, view, ok := scene.Load(f.scene)
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", f.scene)
	}

	if f.image != "" {
		replaced, err := replaceImageTextures(sc, f.image)
		if err != nil {
			return nil, err
		}
		logger.Infof("Replaced %d image textures with %s", replaced, f.image)
	}

	workers := f.workers
	if workers <= 0 {
		workers = defaultWorkers()
	}

	logger.Noticef("Rendering scene %q with %d workers", f.scene, workers)
	return renderer.NewViewport(sc, renderer.NewCamera(view), renderer.ViewportOptions{
		Width:   f.width,
		Height:  f.height,
		Workers: workers,
		Config:  f.config,
		Logger:  viewportLogger,
		Seed:    f.seed,
	}), nil
}

// replaceImageTextures loads path once and swaps it into every image texture
func replaceImageTextures(sc *scene.Scene, path string) (int, error) {
	tex, err := loaders.LoadImageTexture(path)
	if err != nil {
		return 0, err
	}

	replaced := 0
	for _, id := range sc.Textures() {
		_, desc, _ := sc.Texture(id)
		if _, isImage := desc.(scene.ImageTexture); !isImage {
			continue
		}
		if err := sc.UpdateTexture(id, tex); err != nil {
			return replaced, err
		}
		replaced++
	}
	return replaced, nil
}

// defaultWorkers returns the logical CPU count
func defaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
