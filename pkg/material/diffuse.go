package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Diffuse represents a Lambertian (matte) material
type Diffuse struct {
	noEmission
	Albedo Texture
}

// NewDiffuse creates a diffuse material from a texture
func NewDiffuse(albedo Texture) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

// NewDiffuseColor creates a diffuse material with a solid color
func NewDiffuseColor(albedo core.Vec3) *Diffuse {
	return NewDiffuse(NewSolidColor(albedo))
}

// Scatter bounces the ray toward normal + random unit vector
func (d *Diffuse) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(sampler))

	// Catch degenerate scatter direction
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, direction, rayIn.Time),
		Attenuation: d.Albedo.Value(hit.U, hit.V, hit.Point),
	}, true
}

func (*Diffuse) isMaterial() {}
