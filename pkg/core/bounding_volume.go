package core

// BoundingVolume is a flat collection of boxes, one per scene primitive,
// stored in the same order as the primitives they enclose.
type BoundingVolume struct {
	boxes []AABB
}

// NewBoundingVolume creates a bounding volume from the given boxes
func NewBoundingVolume(boxes ...AABB) *BoundingVolume {
	bv := &BoundingVolume{boxes: make([]AABB, 0, len(boxes))}
	bv.boxes = append(bv.boxes, boxes...)
	return bv
}

// Add appends a box and returns its index
func (bv *BoundingVolume) Add(box AABB) int {
	bv.boxes = append(bv.boxes, box)
	return len(bv.boxes) - 1
}

// Len returns the number of boxes
func (bv *BoundingVolume) Len() int {
	return len(bv.boxes)
}

// Box returns the box at index i
func (bv *BoundingVolume) Box(i int) AABB {
	return bv.boxes[i]
}

// Hit tests the ray against the box at index i
func (bv *BoundingVolume) Hit(i int, ray Ray, tMin, tMax float64) bool {
	return bv.boxes[i].Hit(ray, tMin, tMax)
}

// Bounds returns the union of all boxes, or false when the volume is empty
func (bv *BoundingVolume) Bounds() (AABB, bool) {
	if len(bv.boxes) == 0 {
		return AABB{}, false
	}
	bounds := bv.boxes[0]
	for _, box := range bv.boxes[1:] {
		bounds = bounds.Union(box)
	}
	return bounds, true
}
