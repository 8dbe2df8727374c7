package geometry

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Hittable is the closed set of ray-intersectable entities: Sphere, Quad,
// Disk, Cube, List, Volume, Translate, Rotate and BVHNode.
type Hittable interface {
	// Hit fills rec with the nearest intersection inside rayT and reports
	// whether one was found. rec is left untouched on a miss.
	Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool

	// BoundingBox returns the cached world-space bounds
	BoundingBox() core.AABB

	isHittable()
}

// HittableName returns the human readable name of a hittable variant
func HittableName(h Hittable) string {
	switch h.(type) {
	case *Sphere:
		return "Sphere"
	case *Quad:
		return "Quad"
	case *Disk:
		return "Disk"
	case *Cube:
		return "Cube"
	case *List:
		return "List"
	case *Volume:
		return "Volume"
	case *Translate:
		return "Translate"
	case *Rotate:
		return "Rotate"
	case *BVHNode:
		return "BVH"
	}
	panic(fmt.Sprintf("geometry: unknown hittable variant %T", h))
}
