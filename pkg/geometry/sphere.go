package geometry

import (
	"math"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Intersect tests if a ray intersects with the sphere. The returned record
// carries geometry only; Scatter is left nil.
func (s Sphere) Intersect(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2*halfB*t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	hit := &material.HitRecord{
		T:     root,
		Point: ray.At(root),
	}

	outwardNormal := hit.Point.Subtract(s.Center).Divide(s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// Hit intersects the sphere and resolves the material scatter in one step.
// A hit whose ray was absorbed is still a hit, with a nil Scatter.
func (s Sphere) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	hit, ok := s.Intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	s.Shade(ray, hit, sampler)
	return hit, true
}

// Shade attaches the material's scatter outcome to a record produced by Intersect
func (s Sphere) Shade(ray core.Ray, hit *material.HitRecord, sampler core.Sampler) {
	if scatter, ok := s.Material.Scatter(ray, hit, sampler); ok {
		hit.Scatter = &scatter
	}
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
