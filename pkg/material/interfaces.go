package material

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material is the closed set of scattering laws: Diffuse, Metallic,
// Translucent, Emissive, Volumetric and DebugNormal.
type Material interface {
	// Scatter returns the attenuation and continuation ray, or false when
	// the path terminates at this hit
	Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// Emitted returns the radiance emitted at the surface point
	Emitted(u, v float64, p core.Vec3) core.Vec3

	isMaterial()
}

// Texture is the closed set of color functions: SolidColor, Checker,
// Marble, Image and UVDebug.
type Texture interface {
	Value(u, v float64, p core.Vec3) core.Vec3

	isTexture()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit normal, always opposing the incoming ray
	Material  Material  // Material of the hit object
	T         float64   // Parameter t along the ray
	U, V      float64   // Surface coordinates
	FrontFace bool      // Whether ray hit the front face
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal must have unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// noEmission is embedded by every material that does not glow
type noEmission struct{}

func (noEmission) Emitted(u, v float64, p core.Vec3) core.Vec3 {
	return core.Vec3{}
}

// MaterialName returns the human readable name of a material variant
func MaterialName(m Material) string {
	switch m.(type) {
	case *Diffuse:
		return "Diffuse"
	case *Metallic:
		return "Metallic"
	case *Translucent:
		return "Translucent"
	case *Emissive:
		return "Emissive"
	case *Volumetric:
		return "Volumetric"
	case *DebugNormal:
		return "Debug Normal"
	}
	panic(fmt.Sprintf("material: unknown material variant %T", m))
}

// TextureName returns the human readable name of a texture variant
func TextureName(t Texture) string {
	switch t.(type) {
	case *SolidColor:
		return "Color"
	case *Checker:
		return "Checker"
	case *Marble:
		return "Perlin"
	case *Image:
		return "Image"
	case *UVDebug:
		return "UV Debug"
	}
	panic(fmt.Sprintf("material: unknown texture variant %T", t))
}
