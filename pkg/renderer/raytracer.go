package renderer

import (
	"log/slog"
	"math"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/material"
)

// Shadow-acne guard: hits closer than this to the ray origin are ignored
const rayTMin = 0.001

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	// Hit returns the selected hit with its scatter outcome attached
	Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler, counters *core.TraceCounters) (*material.HitRecord, bool)
	// Background returns the color seen along a ray that escapes the scene
	Background(ray core.Ray) core.Vec3
}

// Progress receives one Increment per finished pixel. Implementations must
// accept Increment calls from several goroutines at once.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)  {}
func (nopProgress) Increment() {}
func (nopProgress) Finish()    {}

// Raytracer handles the rendering process
type Raytracer struct {
	scene  Scene
	camera *Camera
	width  int
	height int
	config SamplingConfig

	// Workers is the number of row workers, 0 = one per CPU
	Workers int
	// Seed is the base seed; row r is sampled with Seed+r
	Seed int64
	// NewSampler overrides the per-row sampler, mainly for tests
	NewSampler func(row int) core.Sampler
	// Progress is told about every finished pixel, nil = silent
	Progress Progress
	// Logger receives render lifecycle messages, nil = slog.Default()
	Logger *slog.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, camera *Camera, width, height int) *Raytracer {
	return &Raytracer{
		scene:  scene,
		camera: camera,
		width:  width,
		height: height,
		config: DefaultSamplingConfig(),
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// SamplingConfig returns the current sampling configuration
func (rt *Raytracer) SamplingConfig() SamplingConfig {
	return rt.config
}

// samplerFor returns the independent random source for one row
func (rt *Raytracer) samplerFor(row int) core.Sampler {
	if rt.NewSampler != nil {
		return rt.NewSampler(row)
	}
	return core.NewSeededSampler(rt.Seed + int64(row))
}

func (rt *Raytracer) progress() Progress {
	if rt.Progress == nil {
		return nopProgress{}
	}
	return rt.Progress
}

func (rt *Raytracer) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger
}

// RayColor returns the color carried back along ray. Each bounce multiplies
// the attenuation of the surface it scattered from; running out of depth or
// being absorbed yields black, and escaping yields the scene background.
func RayColor(scene Scene, ray core.Ray, depth int, sampler core.Sampler, counters *core.TraceCounters) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := scene.Hit(ray, rayTMin, math.Inf(1), sampler, counters)
	if !isHit {
		return scene.Background(ray)
	}

	// Material absorbed the ray
	if hit.Scatter == nil {
		return core.Vec3{}
	}

	return hit.Scatter.Attenuation.MultiplyVec(
		RayColor(scene, hit.Scatter.Scattered, depth-1, sampler, counters))
}

// RenderRow samples every pixel of one row. Row 0 is the top of the image.
func (rt *Raytracer) RenderRow(row int, sampler core.Sampler, counters *core.TraceCounters) RowData {
	rowData := NewRowData(row, rt.width)
	progress := rt.progress()

	// Clamp so a one-pixel-wide or one-pixel-high image does not divide by zero
	uDenom := float64(max(rt.width-1, 1))
	vDenom := float64(max(rt.height-1, 1))
	j := float64(rt.height - 1 - row)

	for i := 0; i < rt.width; i++ {
		var colorAccum core.Vec3

		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			jitter := sampler.Get2D()
			u := (float64(i) + jitter.X) / uDenom
			v := (j + jitter.Y) / vDenom

			ray := rt.camera.GetRay(u, v, sampler)
			colorAccum = colorAccum.Add(RayColor(rt.scene, ray, rt.config.MaxDepth, sampler, counters))
		}

		rowData.PushColor(colorAccum, rt.config.SamplesPerPixel)
		progress.Increment()
	}

	return rowData
}
