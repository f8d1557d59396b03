package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/geometry"
	"github.com/df07/go-row-raytracer/pkg/material"
	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// randomSceneSeed fixes the layout so every run builds the same scene
const randomSceneSeed = 7

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// First convert to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// Convert LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewRandomScene creates a ground sphere covered by a grid of small spheres
// with randomly chosen materials, plus three large feature spheres. With
// several hundred primitives it is the scene where the BVH pays off.
func NewRandomScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := New()
	s.CameraConfig = cameraConfig
	s.SamplingConfig = renderer.SamplingConfig{
		SamplesPerPixel: 50,
		MaxDepth:        50,
	}

	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	random := rand.New(rand.NewSource(randomSceneSeed))
	featureGap := core.NewVec3(4, 0.2, 0)

	const gridHalf = 11
	for i := -gridHalf; i < gridHalf; i++ {
		for j := -gridHalf; j < gridHalf; j++ {
			center := core.NewVec3(
				float64(i)+0.9*random.Float64(),
				0.2,
				float64(j)+0.9*random.Float64(),
			)
			// Keep clear of the large sphere at (4, 1, 0)
			if center.Subtract(featureGap).Length() <= 0.9 {
				continue
			}

			// Hue follows the X position, chroma the Z position
			hue := float64(i+gridHalf) / float64(2*gridHalf-1) * 360.0
			chroma := 0.05 + float64(j+gridHalf)/float64(2*gridHalf-1)*0.2
			color := oklchToRGB(0.7, chroma, hue)

			var mat material.Material
			switch choice := random.Float64(); {
			case choice < 0.75:
				mat = material.NewLambertian(color)
			case choice < 0.92:
				mat = material.NewMetal(color, 0.5*random.Float64())
			default:
				mat = material.NewDielectric(1.5)
			}

			s.Add(geometry.NewSphere(center, 0.2, mat))
		}
	}

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	s.Build()
	return s
}
