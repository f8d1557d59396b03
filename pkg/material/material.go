package material

import (
	"fmt"

	"github.com/df07/go-row-raytracer/pkg/core"
)

// Kind identifies which scattering model a Material uses
type Kind int

const (
	LambertianKind Kind = iota // Diffuse
	MetalKind                  // Specular reflection with optional fuzz
	DielectricKind             // Refraction with Schlick reflectance
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case LambertianKind:
		return "lambertian"
	case MetalKind:
		return "metal"
	case DielectricKind:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Material is a closed set of surface models. Only the fields relevant to
// Kind are meaningful; values are immutable once constructed.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian and Metal base color
	Fuzz            float64   // Metal roughness, 0 = perfect mirror
	RefractiveIndex float64   // Dielectric index of refraction (e.g. 1.5 for glass)
}

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Vec3) Material {
	return Material{Kind: LambertianKind, Albedo: albedo}
}

// NewMetal creates a metal material; fuzz is clamped to [0, 1]
func NewMetal(albedo core.Vec3, fuzz float64) Material {
	return Material{Kind: MetalKind, Albedo: albedo, Fuzz: max(0.0, min(1.0, fuzz))}
}

// NewDielectric creates a clear refractive material
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: DielectricKind, RefractiveIndex: refractiveIndex}
}

// Scatter decides how rayIn continues after striking the surface described by hit.
// It returns false when the ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case LambertianKind:
		return scatterLambertian(m, hit, sampler)
	case MetalKind:
		return scatterMetal(m, rayIn, hit, sampler)
	case DielectricKind:
		return scatterDielectric(m, rayIn, hit, sampler)
	default:
		panic(fmt.Sprintf("material: unknown kind %v", m.Kind))
	}
}
