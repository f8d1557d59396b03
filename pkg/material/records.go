package material

import "github.com/df07/go-row-raytracer/pkg/core"

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The outgoing ray
	Normal      core.Vec3 // Surface normal the scatter was computed against
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection.
// Scatter is nil when the material absorbed the ray.
type HitRecord struct {
	Point     core.Vec3      // Point of intersection
	Normal    core.Vec3      // Surface normal, always facing against the incoming ray
	T         float64        // Parameter t along the ray
	FrontFace bool           // Whether ray hit the front face
	Scatter   *ScatterResult // Scatter outcome attached by the primitive
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
