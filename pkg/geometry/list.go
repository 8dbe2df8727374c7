package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// List is a flat collection tested by linear scan
type List struct {
	Objects []Hittable
	bbox    core.AABB
}

// NewList creates a list from the given objects
func NewList(objects ...Hittable) *List {
	l := &List{bbox: core.EmptyAABB}
	for _, obj := range objects {
		l.Add(obj)
	}
	return l
}

// Add appends an object and grows the bounds
func (l *List) Add(obj Hittable) {
	l.Objects = append(l.Objects, obj)
	l.bbox = core.Union(l.bbox, obj.BoundingBox())
}

// Remove deletes the object at index and recomputes the bounds
func (l *List) Remove(index int) {
	l.Objects = append(l.Objects[:index], l.Objects[index+1:]...)
	l.bbox = core.EmptyAABB
	for _, obj := range l.Objects {
		l.bbox = core.Union(l.bbox, obj.BoundingBox())
	}
}

// Clear removes every object
func (l *List) Clear() {
	l.Objects = nil
	l.bbox = core.EmptyAABB
}

// Len returns the number of objects
func (l *List) Len() int {
	return len(l.Objects)
}

// Hit returns the closest hit among all objects
func (l *List) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	var temp material.HitRecord
	hitAnything := false
	closestSoFar := rayT.Max

	for _, obj := range l.Objects {
		if obj.Hit(ray, core.NewInterval(rayT.Min, closestSoFar), sampler, &temp) {
			hitAnything = true
			closestSoFar = temp.T
			*rec = temp
		}
	}

	return hitAnything
}

// BoundingBox returns the union of the members' bounds
func (l *List) BoundingBox() core.AABB {
	return l.bbox
}

func (*List) isHittable() {}
