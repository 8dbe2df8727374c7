package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance arriving along ray from world
	RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler) core.Vec3
}

// Config holds the per-pass parameters a path tracer needs
type Config struct {
	MaxBounces int       // Hard recursion limit; 0 renders black
	Bias       float64   // Minimum hit distance, avoids self-intersection acne
	Background core.Vec3 // Radiance returned by rays that escape the scene
}
