package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/geometry"
	"github.com/df07/go-row-raytracer/pkg/material"
	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// Acceleration selects the structure used to answer hit queries
type Acceleration int

const (
	AccelBVH    Acceleration = iota // Bounding volume hierarchy
	AccelBoxes                      // Per-primitive box test before each exact test
	AccelLinear                     // Exact test against every primitive
)

func (a Acceleration) String() string {
	switch a {
	case AccelBVH:
		return "bvh"
	case AccelBoxes:
		return "boxes"
	case AccelLinear:
		return "linear"
	default:
		return fmt.Sprintf("acceleration(%d)", int(a))
	}
}

// ParseAcceleration converts a name such as "bvh" into an Acceleration
func ParseAcceleration(name string) (Acceleration, error) {
	switch strings.ToLower(name) {
	case "", "bvh":
		return AccelBVH, nil
	case "boxes":
		return AccelBoxes, nil
	case "linear":
		return AccelLinear, nil
	default:
		return AccelBVH, fmt.Errorf("unknown acceleration %q (want bvh, boxes or linear)", name)
	}
}

// HitPolicy decides which primitive wins when a ray crosses several
type HitPolicy int

const (
	NearestHit HitPolicy = iota // Smallest t wins, ties go to the earlier primitive
	FirstHit                    // Earliest-added primitive on the ray wins regardless of distance
)

func (p HitPolicy) String() string {
	switch p {
	case NearestHit:
		return "nearest"
	case FirstHit:
		return "first"
	default:
		return fmt.Sprintf("hitpolicy(%d)", int(p))
	}
}

// ParseHitPolicy converts "nearest" or "first" into a HitPolicy
func ParseHitPolicy(name string) (HitPolicy, error) {
	switch strings.ToLower(name) {
	case "", "nearest":
		return NearestHit, nil
	case "first":
		return FirstHit, nil
	default:
		return NearestHit, fmt.Errorf("unknown hit policy %q (want nearest or first)", name)
	}
}

// Scene contains all the elements needed for rendering. It is assembled
// with Add, finalized with Build, and then only read by render workers.
type Scene struct {
	Primitives     []geometry.Sphere     // Objects in the scene, in insertion order
	Bounds         *core.BoundingVolume  // One box per primitive, same index
	TopColor       core.Vec3             // Background color straight up
	BottomColor    core.Vec3             // Background color straight down
	CameraConfig   renderer.CameraConfig // Camera this scene was composed for
	SamplingConfig renderer.SamplingConfig
	Acceleration   Acceleration
	HitPolicy      HitPolicy

	bvh *geometry.BVH
}

// New creates an empty scene with the default sky gradient
func New() *Scene {
	return &Scene{
		Bounds:         core.NewBoundingVolume(),
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
		CameraConfig:   renderer.DefaultCameraConfig(),
		SamplingConfig: renderer.DefaultSamplingConfig(),
	}
}

// Add appends spheres to the scene and records their bounding boxes.
// Any previously built BVH is discarded.
func (s *Scene) Add(spheres ...geometry.Sphere) {
	for _, sphere := range spheres {
		s.Primitives = append(s.Primitives, sphere)
		s.Bounds.Add(sphere.BoundingBox())
	}
	s.bvh = nil
}

// Build prepares the acceleration structure. Call it once after the last Add.
func (s *Scene) Build() {
	s.bvh = geometry.NewBVH(s.Primitives)
}

// PrimitiveCount returns the number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}

// Hit finds the primitive selected by the hit policy and attaches its
// scatter outcome. Only the winning primitive draws from sampler, so every
// acceleration mode consumes the same random sequence.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler, counters *core.TraceCounters) (*material.HitRecord, bool) {
	if counters == nil {
		counters = &core.TraceCounters{}
	}
	counters.Rays++

	var hit *material.HitRecord
	var index int
	var ok bool

	switch {
	case s.Acceleration == AccelBVH && s.bvh != nil:
		if s.HitPolicy == FirstHit {
			hit, index, ok = s.bvh.FirstHit(ray, tMin, tMax, counters)
		} else {
			hit, index, ok = s.bvh.Hit(ray, tMin, tMax, counters)
		}
	case s.Acceleration == AccelLinear:
		hit, index, ok = s.scan(ray, tMin, tMax, false, counters)
	default:
		// Boxes, or a BVH scene that was never built
		hit, index, ok = s.scan(ray, tMin, tMax, true, counters)
	}

	if !ok {
		return nil, false
	}

	counters.Hits++
	s.Primitives[index].Shade(ray, hit, sampler)
	return hit, true
}

// scan walks primitives in insertion order, optionally rejecting each one
// with its bounding box first
func (s *Scene) scan(ray core.Ray, tMin, tMax float64, useBoxes bool, counters *core.TraceCounters) (*material.HitRecord, int, bool) {
	var best *material.HitRecord
	bestIndex := -1
	closest := tMax

	for i, sphere := range s.Primitives {
		if useBoxes {
			counters.BoxTests++
			if !s.Bounds.Hit(i, ray, tMin, core.BoxLimit(tMax)) {
				continue
			}
		}

		counters.PrimitiveTests++
		hit, ok := sphere.Intersect(ray, tMin, closest)
		if !ok {
			continue
		}

		if s.HitPolicy == FirstHit {
			return hit, i, true
		}
		if bestIndex < 0 || hit.T < closest {
			best, bestIndex, closest = hit, i, hit.T
		}
	}

	return best, bestIndex, bestIndex >= 0
}

// Background returns the sky gradient color seen along ray
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return s.BottomColor.Multiply(1.0 - t).Add(s.TopColor.Multiply(t))
}
