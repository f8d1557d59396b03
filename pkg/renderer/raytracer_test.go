package renderer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/geometry"
	"github.com/df07/go-row-raytracer/pkg/material"
)

// constSampler returns the same value for every draw
type constSampler struct {
	value float64
}

func (c constSampler) Get1D() float64   { return c.value }
func (c constSampler) Get2D() core.Vec2 { return core.NewVec2(c.value, c.value) }
func (c constSampler) Get3D() core.Vec3 { return core.NewVec3(c.value, c.value, c.value) }

// MockScene implements Scene for testing
type MockScene struct {
	hitFn      func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	background func(ray core.Ray) core.Vec3
}

func (m MockScene) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler, counters *core.TraceCounters) (*material.HitRecord, bool) {
	counters.Rays++
	if m.hitFn == nil {
		return nil, false
	}
	return m.hitFn(ray, tMin, tMax)
}

func (m MockScene) Background(ray core.Ray) core.Vec3 {
	if m.background == nil {
		return core.NewVec3(1, 1, 1)
	}
	return m.background(ray)
}

// skyGradient is the usual white-to-blue background
func skyGradient(ray core.Ray) core.Vec3 {
	t := 0.5 * (ray.Direction.Normalize().Y + 1.0)
	return core.NewVec3(1, 1, 1).Multiply(1 - t).Add(core.NewVec3(0.5, 0.7, 1.0).Multiply(t))
}

// sphereScene is a minimal nearest-hit scene over real spheres
type sphereScene struct {
	spheres []geometry.Sphere
}

func (s sphereScene) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler, counters *core.TraceCounters) (*material.HitRecord, bool) {
	counters.Rays++
	var best *material.HitRecord
	bestIndex := -1
	for i, sphere := range s.spheres {
		if hit, ok := sphere.Intersect(ray, tMin, tMax); ok {
			best, bestIndex, tMax = hit, i, hit.T
		}
	}
	if best == nil {
		return nil, false
	}
	s.spheres[bestIndex].Shade(ray, best, sampler)
	return best, true
}

func (s sphereScene) Background(ray core.Ray) core.Vec3 { return skyGradient(ray) }

func threeSpheres() sphereScene {
	return sphereScene{spheres: []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
	}}
}

// countingProgress counts Increment calls from any goroutine
type countingProgress struct {
	total    int
	count    atomic.Int64
	finished bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Increment()      { p.count.Add(1) }
func (p *countingProgress) Finish()         { p.finished = true }

func TestRowData_PushColor(t *testing.T) {
	row := NewRowData(2, 3)
	if row.Index != 2*3*3 {
		t.Errorf("Expected offset 18, got %d", row.Index)
	}

	row.PushColor(core.NewVec3(1, 0, 0), 1)
	row.PushColor(core.NewVec3(0, 1, 0), 1)
	row.PushColor(core.NewVec3(0, 0, 1), 1)

	expected := []byte{255, 0, 0, 0, 255, 0, 0, 0, 255}
	if !bytes.Equal(row.RGB, expected) {
		t.Errorf("Expected %v, got %v", expected, row.RGB)
	}
}

func TestRowData_PushColorAveragesAndGammaCorrects(t *testing.T) {
	tests := []struct {
		name     string
		sum      core.Vec3
		samples  int
		expected []byte
	}{
		{"quarter intensity becomes half", core.NewVec3(1, 1, 1), 4, []byte{127, 127, 127}},
		{"overexposed clamps", core.NewVec3(8, 2, 0), 2, []byte{255, 255, 0}},
		{"black stays black", core.NewVec3(0, 0, 0), 10, []byte{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := NewRowData(0, 1)
			row.PushColor(tt.sum, tt.samples)
			if !bytes.Equal(row.RGB, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, row.RGB)
			}
		})
	}
}

func TestRayColor_TerminalConditions(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	sampler := core.NewSeededSampler(1)
	var counters core.TraceCounters

	absorbing := MockScene{hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		return &material.HitRecord{T: 1}, true
	}}
	empty := MockScene{background: skyGradient}

	if got := RayColor(absorbing, ray, 0, sampler, &counters); got != (core.Vec3{}) {
		t.Errorf("Expected black at depth 0, got %v", got)
	}
	if counters.Rays != 0 {
		t.Errorf("Expected no scene query at depth 0, got %d", counters.Rays)
	}
	if got := RayColor(absorbing, ray, 5, sampler, &counters); got != (core.Vec3{}) {
		t.Errorf("Expected black from an absorbing hit, got %v", got)
	}
	if got := RayColor(empty, ray, 5, sampler, &counters); got != skyGradient(ray) {
		t.Errorf("Expected background %v, got %v", skyGradient(ray), got)
	}
}

func TestRayColor_AttenuationCompounds(t *testing.T) {
	// Every ray going down hits a half-gray mirror that sends it up again;
	// a ray going up escapes to a white background
	scene := MockScene{
		hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
			if ray.Direction.Y >= 0 {
				return nil, false
			}
			return &material.HitRecord{
				T: 1,
				Scatter: &material.ScatterResult{
					Scattered:   core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0)),
					Attenuation: core.NewVec3(0.5, 0.5, 0.5),
				},
			}, true
		},
	}

	down := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	var counters core.TraceCounters

	// The scattered ray keeps pointing down, so it bounces until depth runs out
	if got := RayColor(scene, down, 3, core.NewSeededSampler(1), &counters); got != (core.Vec3{}) {
		t.Errorf("Expected black after exhausting depth, got %v", got)
	}
	if counters.Rays != 3 {
		t.Errorf("Expected 3 scene queries, got %d", counters.Rays)
	}

	bounceOnce := MockScene{
		hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
			if ray.Direction.Y >= 0 {
				return nil, false
			}
			return &material.HitRecord{
				T: 1,
				Scatter: &material.ScatterResult{
					Scattered:   core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
					Attenuation: core.NewVec3(0.5, 0.25, 1),
				},
			}, true
		},
	}
	if got := RayColor(bounceOnce, down, 3, core.NewSeededSampler(1), &counters); got != core.NewVec3(0.5, 0.25, 1) {
		t.Errorf("Expected attenuation times white background, got %v", got)
	}
}

func TestRender_EmptySceneIsBackground(t *testing.T) {
	const width, height = 8, 5
	camera := NewCamera(DefaultCameraConfig())
	scene := MockScene{background: skyGradient}

	rt := NewRaytracer(scene, camera, width, height)
	rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 1, MaxDepth: 10})
	rt.NewSampler = func(row int) core.Sampler { return constSampler{value: 0.5} }
	rt.Workers = 3
	progress := &countingProgress{}
	rt.Progress = progress

	img, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for row := 0; row < height; row++ {
		expected := NewRowData(row, width)
		for i := 0; i < width; i++ {
			u := (float64(i) + 0.5) / float64(width-1)
			v := (float64(height-1-row) + 0.5) / float64(height-1)
			ray := camera.GetRay(u, v, constSampler{value: 0.5})
			expected.PushColor(skyGradient(ray), 1)
		}
		got := img.Pix[expected.Index : expected.Index+width*3]
		if !bytes.Equal(got, expected.RGB) {
			t.Errorf("Row %d: expected %v, got %v", row, expected.RGB, got)
		}
	}

	if stats.Rays != width*height {
		t.Errorf("Expected exactly one query per pixel, got %d", stats.Rays)
	}
	if stats.Hits != 0 {
		t.Errorf("Expected no hits, got %d", stats.Hits)
	}
	if progress.total != width*height || progress.count.Load() != width*height || !progress.finished {
		t.Errorf("Unexpected progress: total=%d count=%d finished=%t",
			progress.total, progress.count.Load(), progress.finished)
	}

	// Top row looks up more steeply than the bottom row, so it is bluer
	rTop, _, _ := img.At(width/2, 0)
	rBottom, _, _ := img.At(width/2, height-1)
	if rTop >= rBottom {
		t.Errorf("Expected top row (r=%d) to be bluer than bottom row (r=%d)", rTop, rBottom)
	}
}

func TestRender_ZeroDepthIsBlack(t *testing.T) {
	rt := NewRaytracer(threeSpheres(), NewCamera(DefaultCameraConfig()), 16, 9)
	rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 4, MaxDepth: 0})

	img, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Expected black image, byte %d is %d", i, b)
		}
	}
	if stats.Rays != 0 {
		t.Errorf("Expected no rays traced at depth 0, got %d", stats.Rays)
	}
}

func TestRender_DeterministicAcrossWorkerCounts(t *testing.T) {
	config := DefaultCameraConfig()
	config.Aperture = 0.05
	camera := NewCamera(config)

	render := func(workers int, seed int64) []byte {
		rt := NewRaytracer(threeSpheres(), camera, 32, 18)
		rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 4, MaxDepth: 10})
		rt.Workers = workers
		rt.Seed = seed
		img, stats, err := rt.Render(context.Background())
		if err != nil {
			t.Fatalf("Render with %d workers failed: %v", workers, err)
		}
		if stats.Rows != 18 || stats.Workers != workers {
			t.Fatalf("Unexpected stats %+v", stats)
		}
		return img.Pix
	}

	reference := render(1, 42)
	for _, workers := range []int{2, 5, 16} {
		if !bytes.Equal(reference, render(workers, 42)) {
			t.Errorf("Expected identical output with %d workers", workers)
		}
	}
	if !bytes.Equal(reference, render(1, 42)) {
		t.Error("Expected identical output across runs")
	}
	if bytes.Equal(reference, render(4, 7)) {
		t.Error("Expected a different seed to change the output")
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt := NewRaytracer(threeSpheres(), NewCamera(DefaultCameraConfig()), 16, 9)
	rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 1, MaxDepth: 5})

	img, _, err := rt.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if img != nil {
		t.Error("Expected no image from a cancelled render")
	}
}

func TestRender_LogsLifecycle(t *testing.T) {
	var logs bytes.Buffer
	config := DefaultCameraConfig()
	config.VFov = 40

	rt := NewRaytracer(MockScene{background: skyGradient}, NewCamera(config), 4, 2)
	rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 1, MaxDepth: 2})
	rt.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, _, err := rt.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	output := logs.String()
	for _, want := range []string{`msg="render started"`, "vfov=40", `msg="row complete"`, `msg="render finished"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestRender_InvalidParameters(t *testing.T) {
	camera := NewCamera(DefaultCameraConfig())

	tests := []struct {
		name    string
		width   int
		height  int
		samples int
	}{
		{"zero width", 0, 10, 1},
		{"negative height", 10, -1, 1},
		{"zero samples", 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRaytracer(MockScene{}, camera, tt.width, tt.height)
			rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: tt.samples, MaxDepth: 1})
			if _, _, err := rt.Render(context.Background()); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestRenderRow_SinglePixelImage(t *testing.T) {
	// Width and height of 1 must not divide by zero
	rt := NewRaytracer(MockScene{background: skyGradient}, NewCamera(DefaultCameraConfig()), 1, 1)
	rt.SetSamplingConfig(SamplingConfig{SamplesPerPixel: 2, MaxDepth: 1})

	var counters core.TraceCounters
	row := rt.RenderRow(0, constSampler{value: 0.5}, &counters)
	if len(row.RGB) != 3 {
		t.Fatalf("Expected one pixel, got %d bytes", len(row.RGB))
	}
	for _, b := range row.RGB {
		if b == 0 {
			t.Errorf("Expected a lit background pixel, got %v", row.RGB)
		}
	}
	if counters.Rays != 2 {
		t.Errorf("Expected 2 rays, got %d", counters.Rays)
	}
}
