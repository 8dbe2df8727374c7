package renderer

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// fixedControl is a PassControl with a constant answer
type fixedControl struct {
	cancelled     bool
	width, height int
}

func (c fixedControl) Cancelled() bool        { return c.cancelled }
func (c fixedControl) Resolution() (int, int) { return c.width, c.height }

func quadLightPass(t *testing.T, width, height int, config RenderConfig) (*PassParams, geometry.Hittable) {
	t.Helper()
	sc, view := scene.NewQuadLightScene()
	if err := sc.Rebuild(); err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	view.Width, view.Height = width, height
	return &PassParams{
		Config:     config.Normalized(),
		Camera:     NewCamera(view),
		Width:      width,
		Height:     height,
		Generation: 3,
		Density:    make([]atomic.Int32, width*height),
	}, sc.Current().Hittable()
}

func TestRenderPass_FullFrame(t *testing.T) {
	config := DefaultRenderConfig()
	config.BasicRatio = 1
	config.SampleCount = 2
	params, world := quadLightPass(t, 20, 20, config)

	frame, err := RenderPass(params, world, fixedControl{width: 20, height: 20}, core.NewSeededSampler(42))
	if err != nil {
		t.Fatalf("RenderPass() failed: %v", err)
	}
	if frame.Width != 20 || frame.Height != 20 || len(frame.Pixels) != 20*20*3 {
		t.Fatalf("Frame size %dx%d with %d floats", frame.Width, frame.Height, len(frame.Pixels))
	}
	if frame.Generation != 3 || frame.Samples != 2 {
		t.Errorf("Frame generation %d samples %d, expected 3 and 2", frame.Generation, frame.Samples)
	}

	expect := scene.QuadLightRadiance
	for px := 0; px < 20*20; px++ {
		rgb := frame.Pixels[px*3 : px*3+3]
		if math.Abs(float64(rgb[0])-expect.X) > 1e-5 || math.Abs(float64(rgb[1])-expect.Y) > 1e-5 || math.Abs(float64(rgb[2])-expect.Z) > 1e-5 {
			t.Fatalf("Pixel %d = %v, expected %v", px, rgb, expect)
		}
	}
}

func TestRenderPass_SkippedPixelsAreMarked(t *testing.T) {
	config := DefaultRenderConfig()
	config.BasicRatio = 0.5
	params, world := quadLightPass(t, 40, 40, config)

	frame, err := RenderPass(params, world, fixedControl{width: 40, height: 40}, core.NewSeededSampler(7))
	if err != nil {
		t.Fatalf("RenderPass() failed: %v", err)
	}

	skipped, rendered := 0, 0
	for px := 0; px < 40*40; px++ {
		rgb := frame.Pixels[px*3 : px*3+3]
		switch {
		case rgb[0] == skippedPixel && rgb[1] == skippedPixel && rgb[2] == skippedPixel:
			skipped++
		case rgb[0] >= 0 && rgb[1] >= 0 && rgb[2] >= 0:
			rendered++
		default:
			t.Fatalf("Pixel %d = %v is neither skipped nor rendered", px, rgb)
		}
	}
	// Each pixel is a coin flip; 1600 flips land far inside these bounds
	if skipped < 600 || rendered < 600 {
		t.Errorf("Expected roughly half skipped, got %d skipped and %d rendered", skipped, rendered)
	}
}

func TestRenderPass_OutOfRangeBasicRatioRendersEverything(t *testing.T) {
	tests := []struct {
		name       string
		basicRatio float64
	}{
		{"zero", 0},
		{"negative", -0.5},
		{"above one", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, world := quadLightPass(t, 20, 20, DefaultRenderConfig())
			// Set after normalization so the pass sees the raw value
			params.Config.BasicRatio = tt.basicRatio

			frame, err := RenderPass(params, world, fixedControl{width: 20, height: 20}, core.NewSeededSampler(5))
			if err != nil {
				t.Fatalf("RenderPass() failed: %v", err)
			}
			for px := 0; px < 20*20; px++ {
				if frame.Pixels[px*3] == skippedPixel {
					t.Fatalf("Pixel %d skipped with basic ratio %v", px, tt.basicRatio)
				}
			}
		})
	}
}

func TestRenderPass_FillsUndersampledPixels(t *testing.T) {
	config := DefaultRenderConfig()
	config.BasicRatio = 0.01
	config.FillRatio = 1
	config.MinSamples = 5
	params, world := quadLightPass(t, 20, 20, config)

	// Matured: current samples exceed MinSamples / BasicRatio
	params.CurrentSamples = 1000
	for px := 0; px < 200; px++ {
		params.Density[px].Store(10)
	}

	frame, err := RenderPass(params, world, fixedControl{width: 20, height: 20}, core.NewSeededSampler(3))
	if err != nil {
		t.Fatalf("RenderPass() failed: %v", err)
	}
	for px := 200; px < 400; px++ {
		if frame.Pixels[px*3] < 0 {
			t.Fatalf("Under-sampled pixel %d was skipped despite a fill ratio of 1", px)
		}
	}
}

func TestRenderPass_Failures(t *testing.T) {
	config := DefaultRenderConfig()
	config.BasicRatio = 1

	tests := []struct {
		name    string
		config  RenderConfig
		control fixedControl
		expect  error
	}{
		{
			name:    "cancelled",
			config:  config,
			control: fixedControl{cancelled: true, width: 20, height: 20},
			expect:  ErrPassCancelled,
		},
		{
			name:    "resolution changed",
			config:  config,
			control: fixedControl{width: 30, height: 20},
			expect:  ErrResolutionChanged,
		},
		{
			name:    "too few pixels",
			config:  RenderConfig{MaxBounces: 1, SampleCount: 1, BasicRatio: 0.001, FillRatio: 0.001},
			control: fixedControl{width: 20, height: 20},
			expect:  ErrTooFewPixels,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, world := quadLightPass(t, 20, 20, tt.config)
			frame, err := RenderPass(params, world, tt.control, core.NewSeededSampler(1))
			if !errors.Is(err, tt.expect) {
				t.Errorf("RenderPass() error = %v, expected %v", err, tt.expect)
			}
			if frame != nil {
				t.Error("Expected no frame from a failed pass")
			}
		})
	}
}
