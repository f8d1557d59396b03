package renderer

import (
	"math"

	"github.com/jinzhu/copier"

	"github.com/df07/go-row-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 = pinhole
	FocusDistance float64   // Distance to the focal plane, 0 = |LookFrom - LookAt|
}

// DefaultCameraConfig returns a pinhole camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
	}
}

// MergeCameraConfig returns base with every non-zero field of override
// applied on top. A zero vector or zero number in override keeps the base value.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	// Both sides are the same plain struct type, so copying cannot fail
	_ = copier.CopyWithOption(&result, &override, copier.Option{IgnoreEmpty: true})
	return result
}

// Camera generates rays for rendering. It is immutable after NewCamera and
// safe to share between workers.
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis
	lensRadius      float64
}

// NewCamera creates a thin-lens camera from config
func NewCamera(config CameraConfig) *Camera {
	if config.Up == (core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.VFov <= 0 {
		config.VFov = 90.0
	}
	if config.AspectRatio <= 0 {
		config.AspectRatio = 16.0 / 9.0
	}
	if config.FocusDistance <= 0 {
		config.FocusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2.0)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(config.FocusDistance * viewportWidth)
	vertical := v.Multiply(config.FocusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(config.FocusDistance))

	return &Camera{
		config:          config,
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2.0,
	}
}

// GetRay generates a ray for image-plane coordinates (s, t) where s runs
// left to right and t bottom to top, both in [0, 1]
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}

// Config returns the resolved configuration, with defaults filled in
func (c *Camera) Config() CameraConfig {
	return c.config
}

// basis returns the camera's right, up and backward unit vectors
func (c *Camera) basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}
