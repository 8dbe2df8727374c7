package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// volumeExitOffset separates the entry hit from the search for the exit hit
const volumeExitOffset = 0.0001

// Volume is a constant-density participating medium inside a convex boundary
type Volume struct {
	Boundary      Hittable
	Density       float64
	PhaseFunction material.Material
	negInvDensity float64
}

// NewVolume creates a medium bounded by a convex object
func NewVolume(boundary Hittable, density float64, phase material.Material) *Volume {
	return &Volume{
		Boundary:      boundary,
		Density:       density,
		PhaseFunction: phase,
		negInvDensity: -1 / density,
	}
}

// Hit samples a free-path length inside the boundary segment. The normal
// and face are arbitrary since the phase function is isotropic.
func (vol *Volume) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	var rec1, rec2 material.HitRecord

	if !vol.Boundary.Hit(ray, core.UniverseInterval, sampler, &rec1) {
		return false
	}
	if !vol.Boundary.Hit(ray, core.NewInterval(rec1.T+volumeExitOffset, math.Inf(1)), sampler, &rec2) {
		return false
	}

	rec1.T = max(rec1.T, rayT.Min)
	rec2.T = min(rec2.T, rayT.Max)

	if rec1.T >= rec2.T {
		return false
	}

	rec1.T = max(rec1.T, 0)

	rayLength := ray.Direction.Length()
	distanceInsideBoundary := (rec2.T - rec1.T) * rayLength
	hitDistance := vol.negInvDensity * math.Log(sampler.Get1D())

	if hitDistance > distanceInsideBoundary {
		return false
	}

	rec.T = rec1.T + hitDistance/rayLength
	rec.Point = ray.At(rec.T)
	rec.Normal = core.NewVec3(1, 0, 0)
	rec.FrontFace = true
	rec.U, rec.V = 0, 0
	rec.Material = vol.PhaseFunction

	return true
}

// BoundingBox returns the boundary's bounds
func (vol *Volume) BoundingBox() core.AABB {
	return vol.Boundary.BoundingBox()
}

func (*Volume) isHittable() {}
