package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Emissive represents a light-emitting material
type Emissive struct {
	Texture Texture   // Optional; nil emits Tint alone
	Tint    core.Vec3 // Multiplier applied to the texture
}

// NewEmissive creates a new emissive material of constant radiance
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Tint: emission}
}

// NewEmissiveTexture creates an emissive material emitting texture*tint
func NewEmissiveTexture(texture Texture, tint core.Vec3) *Emissive {
	return &Emissive{Texture: texture, Tint: tint}
}

// Scatter never scatters; emissive surfaces terminate the path
func (e *Emissive) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}

// Emitted returns the emitted light for this material
func (e *Emissive) Emitted(u, v float64, p core.Vec3) core.Vec3 {
	if e.Texture == nil {
		return e.Tint
	}
	return e.Texture.Value(u, v, p).MultiplyVec(e.Tint)
}

func (*Emissive) isMaterial() {}
