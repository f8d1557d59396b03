package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-row-raytracer/pkg/core"
)

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestCameraBasis(t *testing.T) {
	camera := NewCamera(DefaultCameraConfig())
	u, v, w := camera.basis()

	if !vecNear(u, core.NewVec3(1, 0, 0), 1e-12) ||
		!vecNear(v, core.NewVec3(0, 1, 0), 1e-12) ||
		!vecNear(w, core.NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Unexpected basis u=%v v=%v w=%v", u, v, w)
	}

	// Tilted camera: basis must stay orthonormal
	camera = NewCamera(CameraConfig{
		LookFrom: core.NewVec3(0, 2, 3),
		LookAt:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     90,
	})
	u, v, w = camera.basis()
	for name, value := range map[string]float64{
		"u·v": u.Dot(v), "v·w": v.Dot(w), "u·w": u.Dot(w),
		"|u|-1": u.Length() - 1, "|v|-1": v.Length() - 1, "|w|-1": w.Length() - 1,
	} {
		if math.Abs(value) > 1e-12 {
			t.Errorf("Expected %s = 0, got %g", name, value)
		}
	}
}

func TestCameraGetRay_Pinhole(t *testing.T) {
	config := DefaultCameraConfig()
	config.AspectRatio = 2.0
	camera := NewCamera(config)
	sampler := core.NewSeededSampler(1)

	// FocusDistance defaults to |LookFrom - LookAt| = 1 and tan(45°) = 1
	tests := []struct {
		name     string
		s, t     float64
		expected core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t, sampler)
			if ray.Origin != config.LookFrom {
				t.Errorf("Expected pinhole origin %v, got %v", config.LookFrom, ray.Origin)
			}
			if !vecNear(ray.Direction, tt.expected, 1e-12) {
				t.Errorf("Expected direction %v, got %v", tt.expected, ray.Direction)
			}
		})
	}
}

func TestCameraGetRay_ApertureStaysOnFocusPlane(t *testing.T) {
	config := CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          60,
		AspectRatio:   1,
		Aperture:      0.5,
		FocusDistance: 4,
	}
	camera := NewCamera(config)
	sampler := core.NewSeededSampler(9)

	var moved bool
	for i := 0; i < 100; i++ {
		ray := camera.GetRay(0.5, 0.5, sampler)
		if ray.Origin.Length() > config.Aperture/2 {
			t.Fatalf("Ray origin %v outside the lens", ray.Origin)
		}
		if ray.Origin != config.LookFrom {
			moved = true
		}
		// Every lens sample converges on the focus point
		if !vecNear(ray.At(1), core.NewVec3(0, 0, -4), 1e-9) {
			t.Fatalf("Expected ray to pass through the focus point, got %v", ray.At(1))
		}
	}
	if !moved {
		t.Error("Expected aperture to offset some ray origins")
	}
}

func TestNewCamera_FillsDefaults(t *testing.T) {
	camera := NewCamera(CameraConfig{
		LookFrom: core.NewVec3(0, 0, 5),
		LookAt:   core.NewVec3(0, 0, 0),
	})
	config := camera.Config()

	if config.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up, got %v", config.Up)
	}
	if config.VFov != 90 || config.AspectRatio != 16.0/9.0 {
		t.Errorf("Expected default fov and aspect, got %f and %f", config.VFov, config.AspectRatio)
	}
	if config.FocusDistance != 5 {
		t.Errorf("Expected focus distance 5, got %f", config.FocusDistance)
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := CameraConfig{
		LookFrom:      core.NewVec3(0, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 10,
	}

	tests := []struct {
		name     string
		override CameraConfig
		expected CameraConfig
	}{
		{"empty override", CameraConfig{}, base},
		{
			"field of view only",
			CameraConfig{VFov: 40},
			func() CameraConfig { c := base; c.VFov = 40; return c }(),
		},
		{
			"whole vector replaced",
			CameraConfig{LookFrom: core.NewVec3(5, 0, 0), Aperture: 0.5},
			func() CameraConfig { c := base; c.LookFrom = core.NewVec3(5, 0, 0); c.Aperture = 0.5; return c }(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeCameraConfig(base, tt.override); got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}
