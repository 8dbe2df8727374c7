package renderer

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RenderConfig holds the render tunables persisted by the viewport
type RenderConfig struct {
	MaxBounces  int     `json:"maxBounces"`  // Maximum bounces per path
	Bias        float64 `json:"bias"`        // Minimum hit distance, fixes shadow acne
	SampleCount int     `json:"sampleCount"` // Samples per rendered pixel per pass
	MinSamples  int     `json:"minSamples"`  // Pixels below this density are preferred once the image matures
	BasicRatio  float64 `json:"basicRatio"`  // Chance of rendering any given pixel in a pass
	FillRatio   float64 `json:"fillRatio"`   // Chance of filling an under-sampled pixel that basic sampling skipped
}

// DefaultRenderConfig returns the viewport's starting tunables
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		MaxBounces:  20,
		Bias:        0.001,
		SampleCount: 1,
		MinSamples:  30,
		BasicRatio:  0.1,
		FillRatio:   0.7,
	}
}

// defaultBias replaces negative bias values
const defaultBias = 0.001

// minRatio is the smallest ratio a setter accepts
const minRatio = 0.001

// Normalized returns the config with every field clamped into its valid range
func (c RenderConfig) Normalized() RenderConfig {
	c.MaxBounces = core.Clamp(c.MaxBounces, 0, math.MaxInt32)
	if c.Bias < 0 {
		c.Bias = defaultBias
	}
	c.SampleCount = core.Clamp(c.SampleCount, 1, math.MaxInt32)
	c.MinSamples = core.Clamp(c.MinSamples, 0, math.MaxInt32)
	c.BasicRatio = core.Clamp(c.BasicRatio, minRatio, 1)
	c.FillRatio = core.Clamp(c.FillRatio, minRatio, 1)
	return c
}
