package scene

import (
	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/geometry"
	"github.com/df07/go-row-raytracer/pkg/material"
	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// NewDefaultScene creates the three-sphere demo: a pink mirror between a
// glass ball and a red diffuse ball, resting on a large ground sphere
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(0, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	// Apply any overrides using the reusable merge function
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := New()
	s.CameraConfig = cameraConfig
	s.BottomColor = core.NewVec3(0.9, 0.9, 0.9)
	s.SamplingConfig = renderer.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	// Create materials
	metalPink := material.NewMetal(core.NewVec3(1.0, 0.8, 0.801), 0.0)
	materialGlass := material.NewDielectric(1.5)
	lambertianRed := material.NewLambertian(core.NewVec3(1.0, 0.0, 0.0))
	lambertianGround := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, metalPink),
		geometry.NewSphere(core.NewVec3(-2, 1, 0), 1.0, materialGlass),
		geometry.NewSphere(core.NewVec3(2, 1, 0), 1.0, lambertianRed),
		// Large sphere standing in for a ground plane
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, lambertianGround),
	)

	s.Build()
	return s
}

// NewEmptyScene creates a scene with no primitives, so every ray sees the sky
func NewEmptyScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	s := New()
	if len(cameraOverrides) > 0 {
		s.CameraConfig = renderer.MergeCameraConfig(s.CameraConfig, cameraOverrides[0])
	}
	s.Build()
	return s
}
