package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// planar holds the plane data shared by quads and disks
type planar struct {
	Q        core.Vec3 // Corner
	U        core.Vec3 // First edge vector
	V        core.Vec3 // Second edge vector
	Material material.Material
	normal   core.Vec3 // Unit normal (U × V normalized)
	d        float64   // Plane equation constant: normal · p = d
	w        core.Vec3 // n / (n·n), projects hit points onto (alpha, beta)
	bbox     core.AABB
}

func newPlanar(q, u, v core.Vec3, mat material.Material) planar {
	n := u.Cross(v)
	normal := n.Normalize()

	bboxDiagonal1 := core.NewAABBFromPoints(q, q.Add(u).Add(v))
	bboxDiagonal2 := core.NewAABBFromPoints(q.Add(u), q.Add(v))

	return planar{
		Q:        q,
		U:        u,
		V:        v,
		Material: mat,
		normal:   normal,
		d:        normal.Dot(q),
		w:        n.Divide(n.Dot(n)),
		bbox:     core.Union(bboxDiagonal1, bboxDiagonal2),
	}
}

// hit intersects the plane and hands the planar coordinates to interior
func (p *planar) hit(ray core.Ray, rayT core.Interval, rec *material.HitRecord, interior func(alpha, beta float64) bool) bool {
	denominator := p.normal.Dot(ray.Direction)

	// Ray is parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return false
	}

	t := (p.d - p.normal.Dot(ray.Origin)) / denominator
	if !rayT.Contains(t) {
		return false
	}

	intersection := ray.At(t)
	planarHit := intersection.Subtract(p.Q)
	alpha := p.w.Dot(planarHit.Cross(p.V))
	beta := p.w.Dot(p.U.Cross(planarHit))

	if !interior(alpha, beta) {
		return false
	}

	rec.T = t
	rec.Point = intersection
	rec.U, rec.V = alpha, beta
	rec.Material = p.Material
	rec.SetFaceNormal(ray, p.normal)

	return true
}

// Normal returns the unit plane normal
func (p *planar) Normal() core.Vec3 {
	return p.normal
}

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	planar
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(q, u, v core.Vec3, mat material.Material) *Quad {
	return &Quad{planar: newPlanar(q, u, v, mat)}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	return q.hit(ray, rayT, rec, quadInterior)
}

// BoundingBox returns the bounds of the parallelogram
func (q *Quad) BoundingBox() core.AABB {
	return q.bbox
}

func (*Quad) isHittable() {}

// PlanarCoordinates returns (alpha, beta) for a point on the plane
func (p *planar) PlanarCoordinates(point core.Vec3) (alpha, beta float64) {
	planarHit := point.Subtract(p.Q)
	return p.w.Dot(planarHit.Cross(p.V)), p.w.Dot(p.U.Cross(planarHit))
}

func quadInterior(alpha, beta float64) bool {
	unit := core.NewInterval(0, 1)
	return unit.Contains(alpha) && unit.Contains(beta)
}
