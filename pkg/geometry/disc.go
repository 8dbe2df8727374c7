package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Disk is the ellipse inscribed in the parallelogram Q, Q+U, Q+V, Q+U+V
type Disk struct {
	planar
}

// NewDisk creates a disk inscribed in the given parallelogram
func NewDisk(q, u, v core.Vec3, mat material.Material) *Disk {
	return &Disk{planar: newPlanar(q, u, v, mat)}
}

// Hit tests if a ray intersects with the disk
func (d *Disk) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	return d.hit(ray, rayT, rec, diskInterior)
}

// BoundingBox returns the bounds of the enclosing parallelogram
func (d *Disk) BoundingBox() core.AABB {
	return d.bbox
}

func (*Disk) isHittable() {}

func diskInterior(alpha, beta float64) bool {
	x := 2*alpha - 1
	y := 2*beta - 1
	return x*x+y*y <= 1
}
