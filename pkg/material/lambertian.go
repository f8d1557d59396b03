package material

import "github.com/df07/go-row-raytracer/pkg/core"

// scatterLambertian bounces the ray toward normal + random unit vector.
// Diffuse surfaces always scatter.
func scatterLambertian(m Material, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(sampler))

	// Catch the degenerate direction when the random vector cancels the normal
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Normal:      hit.Normal,
		Attenuation: m.Albedo,
	}, true
}
