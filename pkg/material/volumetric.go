package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Volumetric is the isotropic phase function used inside participating media
type Volumetric struct {
	noEmission
	Albedo Texture
}

// NewVolumetric creates an isotropic material
func NewVolumetric(albedo Texture) *Volumetric {
	return &Volumetric{Albedo: albedo}
}

// Scatter sends the ray off in a uniformly random direction
func (m *Volumetric) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, core.RandomUnitVector(sampler), rayIn.Time),
		Attenuation: m.Albedo.Value(hit.U, hit.V, hit.Point),
	}, true
}

func (*Volumetric) isMaterial() {}
