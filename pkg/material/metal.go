package material

import "github.com/df07/go-row-raytracer/pkg/core"

// scatterMetal mirrors the incoming direction and perturbs it by Fuzz.
// Rays fuzzed below the surface are absorbed.
func scatterMetal(m Material, rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)
	direction := reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))

	result := ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Normal:      hit.Normal,
		Attenuation: m.Albedo,
	}
	return result, direction.Dot(hit.Normal) > 0
}
