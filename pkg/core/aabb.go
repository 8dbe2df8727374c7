package core

import "fmt"

// AABBEpsilon is the minimum thickness of every box axis
const AABBEpsilon = 0.0001

// AABB represents an axis-aligned bounding box made of three intervals
type AABB struct {
	X, Y, Z Interval
}

var (
	// EmptyAABB bounds nothing; it is the identity for Union
	EmptyAABB = AABB{X: EmptyInterval, Y: EmptyInterval, Z: EmptyInterval}
	// UniverseAABB bounds everything
	UniverseAABB = AABB{X: UniverseInterval, Y: UniverseInterval, Z: UniverseInterval}
)

// NewAABB creates a box from three intervals, padding degenerate axes
func NewAABB(x, y, z Interval) AABB {
	box := AABB{X: x, Y: y, Z: z}
	box.padToMinimums()
	return box
}

// NewAABBFromPoints creates the box spanned by two corner points, in any order
func NewAABBFromPoints(a, b Vec3) AABB {
	return NewAABB(
		NewInterval(min(a.X, b.X), max(a.X, b.X)),
		NewInterval(min(a.Y, b.Y), max(a.Y, b.Y)),
		NewInterval(min(a.Z, b.Z), max(a.Z, b.Z)),
	)
}

// Union returns the box bounding both a and b. The result is not re-padded;
// padded inputs already give it the minimum thickness.
func Union(a, b AABB) AABB {
	return AABB{
		X: IntervalUnion(a.X, b.X),
		Y: IntervalUnion(a.Y, b.Y),
		Z: IntervalUnion(a.Z, b.Z),
	}
}

// Union returns the box bounding both this box and another
func (box AABB) Union(other AABB) AABB {
	return Union(box, other)
}

// AxisInterval returns the interval for axis 0 (X), 1 (Y) or 2 (Z)
func (box AABB) AxisInterval(axis int) Interval {
	switch axis {
	case 0:
		return box.X
	case 1:
		return box.Y
	case 2:
		return box.Z
	}
	panic(fmt.Sprintf("core: axis index %d out of range [0,2]", axis))
}

// Hit tests the ray against the box with the slab method, narrowing rayT
// axis by axis and rejecting as soon as the interval collapses
func (box AABB) Hit(ray Ray, rayT Interval) bool {
	for axis := 0; axis < 3; axis++ {
		ax := box.AxisInterval(axis)
		adinv := 1.0 / ray.Direction.Axis(axis)
		origin := ray.Origin.Axis(axis)

		t0 := (ax.Min - origin) * adinv
		t1 := (ax.Max - origin) * adinv

		if t0 < t1 {
			if t0 > rayT.Min {
				rayT.Min = t0
			}
			if t1 < rayT.Max {
				rayT.Max = t1
			}
		} else {
			if t1 > rayT.Min {
				rayT.Min = t1
			}
			if t0 < rayT.Max {
				rayT.Max = t0
			}
		}

		if rayT.Max <= rayT.Min {
			return false
		}
	}
	return true
}

// LongestAxis returns the index of the longest axis. Ties resolve as:
// x < y compares y against z (z wins only if strictly longer), otherwise
// x is compared against z the same way.
func (box AABB) LongestAxis() int {
	if box.X.Size() < box.Y.Size() {
		if box.Y.Size() < box.Z.Size() {
			return 2
		}
		return 1
	}
	if box.X.Size() < box.Z.Size() {
		return 2
	}
	return 0
}

// Offset returns the box translated by offset
func (box AABB) Offset(offset Vec3) AABB {
	return AABB{
		X: box.X.Shift(offset.X),
		Y: box.Y.Shift(offset.Y),
		Z: box.Z.Shift(offset.Z),
	}
}

// Corner returns one of the eight corners; bit 0 selects max X, bit 1 max Y, bit 2 max Z
func (box AABB) Corner(i int) Vec3 {
	c := NewVec3(box.X.Min, box.Y.Min, box.Z.Min)
	if i&1 != 0 {
		c.X = box.X.Max
	}
	if i&2 != 0 {
		c.Y = box.Y.Max
	}
	if i&4 != 0 {
		c.Z = box.Z.Max
	}
	return c
}

// Centroid returns the center point of the box
func (box AABB) Centroid() Vec3 {
	return NewVec3(
		(box.X.Min+box.X.Max)*0.5,
		(box.Y.Min+box.Y.Max)*0.5,
		(box.Z.Min+box.Z.Max)*0.5,
	)
}

// Contains reports whether other lies entirely inside this box
func (box AABB) Contains(other AABB) bool {
	return box.X.Min <= other.X.Min && other.X.Max <= box.X.Max &&
		box.Y.Min <= other.Y.Min && other.Y.Max <= box.Y.Max &&
		box.Z.Min <= other.Z.Min && other.Z.Max <= box.Z.Max
}

func (box *AABB) padToMinimums() {
	if box.X.Size() < AABBEpsilon {
		box.X = box.X.Expand(AABBEpsilon)
	}
	if box.Y.Size() < AABBEpsilon {
		box.Y = box.Y.Expand(AABBEpsilon)
	}
	if box.Z.Size() < AABBEpsilon {
		box.Z = box.Z.Expand(AABBEpsilon)
	}
}
