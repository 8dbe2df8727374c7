package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Metallic represents a reflective material with optional roughness
type Metallic struct {
	noEmission
	Albedo    Texture
	Roughness float64 // 0 = perfect mirror, capped at 1
}

// NewMetallic creates a metallic material. Roughness above 1 is capped.
func NewMetallic(albedo Texture, roughness float64) *Metallic {
	return &Metallic{Albedo: albedo, Roughness: min(roughness, 1)}
}

// NewMetallicColor creates a metallic material with a solid color
func NewMetallicColor(albedo core.Vec3, roughness float64) *Metallic {
	return NewMetallic(NewSolidColor(albedo), roughness)
}

// Scatter mirrors the ray and perturbs it by roughness. Rays perturbed
// into the surface are absorbed.
func (m *Metallic) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := reflectVector(rayIn.Direction, hit.Normal).Normalize()
	reflected = reflected.Add(core.RandomUnitVector(sampler).Multiply(m.Roughness))

	scattered := core.NewRayAt(hit.Point, reflected, rayIn.Time)
	if scattered.Direction.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo.Value(hit.U, hit.V, hit.Point),
	}, true
}

func (*Metallic) isMaterial() {}
