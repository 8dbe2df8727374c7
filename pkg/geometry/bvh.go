package geometry

import (
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// BVHNode is a node of a bounding volume hierarchy. Leaves hold one or two
// objects directly in Left/Right; Right is nil for single-object leaves.
type BVHNode struct {
	Left  Hittable
	Right Hittable
	bbox  core.AABB
}

// NewBVH builds a hierarchy over a copy of objects
func NewBVH(objects []Hittable) *BVHNode {
	if len(objects) == 0 {
		return &BVHNode{bbox: core.EmptyAABB}
	}

	objectsCopy := make([]Hittable, len(objects))
	copy(objectsCopy, objects)

	return buildBVH(objectsCopy)
}

// NewBVHFromList builds a hierarchy over the members of a list
func NewBVHFromList(list *List) *BVHNode {
	return NewBVH(list.Objects)
}

// buildBVH splits at the median object along the longest axis of the
// enclosing box, stopping at two objects per leaf
func buildBVH(objects []Hittable) *BVHNode {
	bbox := core.EmptyAABB
	for _, obj := range objects {
		bbox = core.Union(bbox, obj.BoundingBox())
	}

	switch len(objects) {
	case 1:
		return &BVHNode{Left: objects[0], bbox: bbox}
	case 2:
		return &BVHNode{Left: objects[0], Right: objects[1], bbox: bbox}
	}

	sortByAxis(objects, bbox.LongestAxis())

	mid := len(objects) / 2
	return &BVHNode{
		Left:  buildBVH(objects[:mid]),
		Right: buildBVH(objects[mid:]),
		bbox:  bbox,
	}
}

// sortByAxis orders objects by the lower bound of their boxes along axis
func sortByAxis(objects []Hittable, axis int) {
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].BoundingBox().AxisInterval(axis).Min <
			objects[j].BoundingBox().AxisInterval(axis).Min
	})
}

// Hit tests the node box first and only descends into children the ray can reach
func (n *BVHNode) Hit(ray core.Ray, rayT core.Interval, sampler core.Sampler, rec *material.HitRecord) bool {
	if n.Left == nil || !n.bbox.Hit(ray, rayT) {
		return false
	}

	hitLeft := n.Left.Hit(ray, rayT, sampler, rec)
	if n.Right == nil {
		return hitLeft
	}

	closest := rayT.Max
	if hitLeft {
		closest = rec.T
	}
	hitRight := n.Right.Hit(ray, core.NewInterval(rayT.Min, closest), sampler, rec)

	return hitLeft || hitRight
}

// BoundingBox returns the bounds of everything below this node
func (n *BVHNode) BoundingBox() core.AABB {
	return n.bbox
}

func (*BVHNode) isHittable() {}

// bvhStats contains statistics about the hierarchy
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	objects    int
}

// Stats reports node count, leaf count, depth and object count
func (n *BVHNode) Stats() (nodes, leaves, depth, objects int) {
	var stats bvhStats
	n.collectStats(0, &stats)
	return stats.totalNodes, stats.leafNodes, stats.maxDepth, stats.objects
}

func (n *BVHNode) collectStats(depth int, stats *bvhStats) {
	stats.totalNodes++
	stats.maxDepth = max(stats.maxDepth, depth)

	left, leftIsNode := n.Left.(*BVHNode)
	right, rightIsNode := n.Right.(*BVHNode)
	if !leftIsNode && !rightIsNode {
		stats.leafNodes++
		if n.Left != nil {
			stats.objects++
		}
		if n.Right != nil {
			stats.objects++
		}
		return
	}

	if leftIsNode {
		left.collectStats(depth+1, stats)
	}
	if rightIsNode {
		right.collectStats(depth+1, stats)
	}
}
