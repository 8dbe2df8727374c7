package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// DebugNormal scatters diffusely and tints by the surface normal
type DebugNormal struct {
	noEmission
}

// NewDebugNormal creates a normal visualization material
func NewDebugNormal() *DebugNormal {
	return &DebugNormal{}
}

// Scatter behaves like a white diffuse surface with attenuation mapped
// from the normal into [0,1] so the value never reads as a skipped pixel
func (m *DebugNormal) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(sampler))
	if direction.NearZero() {
		direction = hit.Normal
	}

	n := hit.Normal.Normalize()
	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, direction, rayIn.Time),
		Attenuation: n.Add(core.Splat(1)).Multiply(0.5),
	}, true
}

func (*DebugNormal) isMaterial() {}
