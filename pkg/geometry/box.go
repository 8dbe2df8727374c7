package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Cube is an axis-aligned box assembled from six quads
type Cube struct {
	A, B     core.Vec3 // Opposite corners
	Material material.Material
	sides    *List
}

// NewCube creates the box spanned by two opposite corners
func NewCube(a, b core.Vec3, mat material.Material) *Cube {
	lo := a.Min(b)
	hi := a.Max(b)

	dx := core.NewVec3(hi.X-lo.X, 0, 0)
	dy := core.NewVec3(0, hi.Y-lo.Y, 0)
	dz := core.NewVec3(0, 0, hi.Z-lo.Z)

	sides := NewList(
		NewQuad(core.NewVec3(lo.X, lo.Y, hi.Z), dx, dy, mat),          // front
		NewQuad(core.NewVec3(hi.X, lo.Y, hi.Z), dz.Negate(), dy, mat), // right
		NewQuad(core.NewVec3(hi.X, lo.Y, lo.Z), dx.Negate(), dy, mat), // back
		NewQuad(core.NewVec3(lo.X, lo.Y, lo.Z), dz, dy, mat),          // left
		NewQuad(core.NewVec3(lo.X, hi.Y, hi.Z), dx, dz.Negate(), mat), // top
		NewQuad(core.NewVec3(lo.X, lo.Y, lo.Z), dx, dz, mat),          // bottom
	)

	return &Cube{A: a, B: b, Material: mat, sides: sides}
}

// Hit tests the ray against all six faces
func (c *Cube) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	return c.sides.Hit(ray, rayT, sampler, rec)
}

// BoundingBox returns the union of the faces' bounds
func (c *Cube) BoundingBox() core.AABB {
	return c.sides.BoundingBox()
}

func (*Cube) isHittable() {}
