package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Translate moves a child object by a fixed offset
type Translate struct {
	Object Hittable
	Offset core.Vec3
	bbox   core.AABB
}

// NewTranslate wraps object with a translation
func NewTranslate(object Hittable, offset core.Vec3) *Translate {
	return &Translate{
		Object: object,
		Offset: offset,
		bbox:   object.BoundingBox().Offset(offset),
	}
}

// Hit moves the ray into object space, delegates, and moves the hit point back
func (t *Translate) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	offsetRay := core.NewRayAt(ray.Origin.Subtract(t.Offset), ray.Direction, ray.Time)

	if !t.Object.Hit(offsetRay, rayT, sampler, rec) {
		return false
	}

	rec.Point = rec.Point.Add(t.Offset)
	return true
}

// BoundingBox returns the child bounds shifted by the offset
func (t *Translate) BoundingBox() core.AABB {
	return t.bbox
}

func (*Translate) isHittable() {}

// Rotate applies one combined rotation built from X, Y and Z angles in
// degrees. The child is rotated about X first, then Y, then Z.
type Rotate struct {
	Object   Hittable
	Angles   core.Vec3 // Degrees around X, Y, Z
	toWorld  mgl64.Mat3
	toObject mgl64.Mat3
	identity bool
	bbox     core.AABB
}

// NewRotate wraps object with a rotation given in degrees
func NewRotate(object Hittable, angles core.Vec3) *Rotate {
	r := &Rotate{Object: object, Angles: angles}

	if angles == (core.Vec3{}) {
		r.identity = true
		r.bbox = object.BoundingBox()
		return r
	}

	q := mgl64.QuatRotate(mgl64.DegToRad(angles.Z), mgl64.Vec3{0, 0, 1}).
		Mul(mgl64.QuatRotate(mgl64.DegToRad(angles.Y), mgl64.Vec3{0, 1, 0})).
		Mul(mgl64.QuatRotate(mgl64.DegToRad(angles.X), mgl64.Vec3{1, 0, 0})).
		Normalize()

	r.toWorld = q.Mat4().Mat3()
	r.toObject = r.toWorld.Transpose()
	r.bbox = r.rotatedBounds(object.BoundingBox())

	return r
}

// rotatedBounds transforms all eight corners of box and takes their extents
func (r *Rotate) rotatedBounds(box core.AABB) core.AABB {
	lo := core.Splat(math.Inf(1))
	hi := core.Splat(math.Inf(-1))

	for i := 0; i < 8; i++ {
		corner := r.apply(r.toWorld, box.Corner(i))
		lo = lo.Min(corner)
		hi = hi.Max(corner)
	}

	return core.NewAABBFromPoints(lo, hi)
}

func (r *Rotate) apply(m mgl64.Mat3, v core.Vec3) core.Vec3 {
	out := m.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return core.NewVec3(out[0], out[1], out[2])
}

// Hit rotates the ray into object space, delegates, and rotates the
// hit point and normal back to world space
func (r *Rotate) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	if r.identity {
		return r.Object.Hit(ray, rayT, sampler, rec)
	}

	rotated := core.NewRayAt(
		r.apply(r.toObject, ray.Origin),
		r.apply(r.toObject, ray.Direction),
		ray.Time,
	)

	if !r.Object.Hit(rotated, rayT, sampler, rec) {
		return false
	}

	rec.Point = r.apply(r.toWorld, rec.Point)
	rec.Normal = r.apply(r.toWorld, rec.Normal)

	return true
}

// BoundingBox returns the world-space bounds of the rotated child
func (r *Rotate) BoundingBox() core.AABB {
	return r.bbox
}

func (*Rotate) isHittable() {}
