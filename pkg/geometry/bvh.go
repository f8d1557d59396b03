package geometry

import (
	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/material"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Indices     []int // Primitive indices for leaf nodes (nil for internal nodes)
	MinIndex    int   // Lowest primitive index anywhere below this node
}

// BVH represents a Bounding Volume Hierarchy over a slice of spheres.
// Nodes refer to spheres by their index, so the slice must not change
// after construction.
type BVH struct {
	Root    *BVHNode
	spheres []Sphere
}

// Leaf threshold: if we have this many or fewer primitives, store them in a leaf node
const leafThreshold = 4

// NewBVH constructs a BVH from a slice of spheres
func NewBVH(spheres []Sphere) *BVH {
	bvh := &BVH{spheres: spheres}
	if len(spheres) == 0 {
		return bvh
	}

	boxes := make([]core.AABB, len(spheres))
	indices := make([]int, len(spheres))
	for i, s := range spheres {
		boxes[i] = s.BoundingBox()
		indices[i] = i
	}

	bvh.Root = buildBVH(indices, boxes)
	return bvh
}

// buildBVH recursively builds the tree, splitting at the middle of the
// longest axis of the node's bounding box
func buildBVH(indices []int, boxes []core.AABB) *BVHNode {
	boundingBox := boxes[indices[0]]
	minIndex := indices[0]
	for _, idx := range indices[1:] {
		boundingBox = boundingBox.Union(boxes[idx])
		minIndex = min(minIndex, idx)
	}

	leaf := &BVHNode{
		BoundingBox: boundingBox,
		Indices:     indices,
		MinIndex:    minIndex,
	}

	if len(indices) <= leafThreshold {
		return leaf
	}

	axis := boundingBox.LongestAxis()
	lo, hi := boundingBox.Min.Axis(axis), boundingBox.Max.Axis(axis)
	if hi <= lo {
		return leaf
	}
	splitPos := (lo + hi) * 0.5

	left, right := partitionIndices(indices, boxes, axis, splitPos)

	// Ensure we don't create empty partitions
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left, boxes),
		Right:       buildBVH(right, boxes),
		MinIndex:    minIndex,
	}
}

// partitionIndices splits primitives by their box center along axis
func partitionIndices(indices []int, boxes []core.AABB, axis int, splitPos float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if boxes[idx].Center().Axis(axis) < splitPos {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// bvhHit tracks the best candidate found so far during traversal
type bvhHit struct {
	record *material.HitRecord
	index  int
}

// Hit finds the nearest sphere hit by ray in [tMin, tMax]. Equal distances
// resolve to the lower primitive index, which is what an in-order linear
// scan returns. The returned record has no scatter attached.
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, counters *core.TraceCounters) (*material.HitRecord, int, bool) {
	if bvh.Root == nil {
		return nil, -1, false
	}
	if counters == nil {
		counters = &core.TraceCounters{}
	}

	best := bvhHit{index: -1}
	closest := tMax
	bvh.hitNode(bvh.Root, ray, tMin, &closest, &best, counters)
	return best.record, best.index, best.index >= 0
}

// hitNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin float64, closest *float64, best *bvhHit, counters *core.TraceCounters) {
	counters.BoxTests++
	if !node.BoundingBox.Hit(ray, tMin, core.BoxLimit(*closest)) {
		return
	}

	if node.Indices != nil {
		for _, idx := range node.Indices {
			counters.PrimitiveTests++
			rec, ok := bvh.spheres[idx].Intersect(ray, tMin, *closest)
			if !ok {
				continue
			}
			if best.index < 0 || rec.T < *closest || (rec.T == *closest && idx < best.index) {
				best.record = rec
				best.index = idx
				*closest = rec.T
			}
		}
		return
	}

	bvh.hitNode(node.Left, ray, tMin, closest, best, counters)
	bvh.hitNode(node.Right, ray, tMin, closest, best, counters)
}

// FirstHit finds the lowest-indexed sphere hit anywhere in [tMin, tMax],
// regardless of distance
func (bvh *BVH) FirstHit(ray core.Ray, tMin, tMax float64, counters *core.TraceCounters) (*material.HitRecord, int, bool) {
	if bvh.Root == nil {
		return nil, -1, false
	}
	if counters == nil {
		counters = &core.TraceCounters{}
	}

	best := bvhHit{index: -1}
	bvh.firstHitNode(bvh.Root, ray, tMin, tMax, &best, counters)
	return best.record, best.index, best.index >= 0
}

func (bvh *BVH) firstHitNode(node *BVHNode, ray core.Ray, tMin, tMax float64, best *bvhHit, counters *core.TraceCounters) {
	// Nothing below can beat the current winner
	if best.index >= 0 && node.MinIndex > best.index {
		return
	}

	counters.BoxTests++
	if !node.BoundingBox.Hit(ray, tMin, core.BoxLimit(tMax)) {
		return
	}

	if node.Indices != nil {
		for _, idx := range node.Indices {
			if best.index >= 0 && idx > best.index {
				continue
			}
			counters.PrimitiveTests++
			if rec, ok := bvh.spheres[idx].Intersect(ray, tMin, tMax); ok {
				best.record = rec
				best.index = idx
			}
		}
		return
	}

	bvh.firstHitNode(node.Left, ray, tMin, tMax, best, counters)
	bvh.firstHitNode(node.Right, ray, tMin, tMax, best, counters)
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	if bvh.Root == nil {
		return bvhStats{}
	}

	stats := bvhStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.leafNodes > 0 {
		stats.avgDepth = stats.avgDepth / float64(stats.leafNodes)
	}

	return stats
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes  int
	leafNodes   int
	maxDepth    int
	avgDepth    float64
	totalShapes int
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++

	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}

	if node.Indices != nil {
		stats.leafNodes++
		stats.totalShapes += len(node.Indices)
		stats.avgDepth += float64(depth)
		return
	}

	bvh.collectStats(node.Left, depth+1, stats)
	bvh.collectStats(node.Right, depth+1, stats)
}
