package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Translucent represents a transparent material like glass that can both reflect and refract
type Translucent struct {
	noEmission
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
	Tint            Texture // Optional; nil means clear
}

// NewTranslucent creates a clear dielectric material
func NewTranslucent(refractiveIndex float64) *Translucent {
	return &Translucent{RefractiveIndex: refractiveIndex}
}

// NewTintedTranslucent creates a dielectric that attenuates by a texture
func NewTintedTranslucent(tint Texture, refractiveIndex float64) *Translucent {
	return &Translucent{RefractiveIndex: refractiveIndex, Tint: tint}
}

// Scatter reflects or refracts the ray, choosing reflection on total
// internal reflection or with Schlick probability
func (d *Translucent) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	attenuation := core.NewVec3(1.0, 1.0, 1.0)
	if d.Tint != nil {
		attenuation = d.Tint.Value(hit.U, hit.V, hit.Point)
	}

	// Air is treated as index 1
	refractionRatio := d.RefractiveIndex
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Normalize()

	cosTheta := math.Min(unitDirection.Negate().Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = reflectVector(unitDirection, hit.Normal)
	} else {
		direction = refractVector(unitDirection, hit.Normal, refractionRatio)
	}

	return ScatterResult{
		Scattered:   core.NewRayAt(hit.Point, direction, rayIn.Time),
		Attenuation: attenuation,
	}, true
}

func (*Translucent) isMaterial() {}

// reflectVector calculates the reflection of a vector v off a surface with normal n
func reflectVector(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refractVector calculates the refraction of a unit vector using Snell's law
func refractVector(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(uv.Negate().Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
