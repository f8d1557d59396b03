package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-row-raytracer/pkg/core"
)

// Render traces every row on the worker pool and merges the rows into one
// image. Rows are independent and land at precomputed offsets, so the result
// does not depend on worker count or scheduling.
func (rt *Raytracer) Render(ctx context.Context) (*Image, RenderStats, error) {
	if rt.width <= 0 || rt.height <= 0 {
		return nil, RenderStats{}, fmt.Errorf("invalid image size %dx%d", rt.width, rt.height)
	}
	if rt.config.SamplesPerPixel < 1 {
		return nil, RenderStats{}, fmt.Errorf("samples per pixel must be at least 1, got %d", rt.config.SamplesPerPixel)
	}

	start := time.Now()
	logger := rt.logger()
	img := NewImage(rt.width, rt.height)

	progress := rt.progress()
	progress.Start(rt.width * rt.height)
	defer progress.Finish()

	pool := NewWorkerPool(rt, rt.Workers, rt.height)
	logger.Info("render started",
		"width", rt.width,
		"height", rt.height,
		"samples", rt.config.SamplesPerPixel,
		"depth", rt.config.MaxDepth,
		"workers", pool.NumWorkers(),
		"vfov", rt.camera.Config().VFov,
		"aperture", rt.camera.Config().Aperture)

	pool.Start(ctx)
	for row := 0; row < rt.height; row++ {
		pool.SubmitTask(RowTask{Row: row})
	}
	pool.Close()

	waitErr := pool.Wait()

	stats := RenderStats{Workers: pool.NumWorkers()}
	var counters core.TraceCounters
	var mergeErr error
	for result := range pool.Results() {
		if err := img.SetRow(result.Data); err != nil {
			mergeErr = errors.Join(mergeErr, err)
			continue
		}
		counters.Add(result.Counters)
		stats.Rows++
	}

	stats.Pixels = stats.Rows * rt.width
	stats.Samples = stats.Pixels * rt.config.SamplesPerPixel
	stats.Rays = counters.Rays
	stats.BoxTests = counters.BoxTests
	stats.PrimitiveTests = counters.PrimitiveTests
	stats.Hits = counters.Hits
	stats.Duration = time.Since(start)

	if waitErr != nil {
		logger.Warn("render interrupted", "rows", stats.Rows, "of", rt.height, "error", waitErr)
		return nil, stats, fmt.Errorf("render interrupted after %d of %d rows: %w", stats.Rows, rt.height, waitErr)
	}
	if mergeErr != nil {
		return nil, stats, fmt.Errorf("merge rows: %w", mergeErr)
	}

	logger.Info("render finished",
		"rows", stats.Rows,
		"workers", stats.Workers,
		"duration", stats.Duration,
		"rays", stats.Rays,
		"rays_per_second", int64(stats.RaysPerSecond()))

	return img, stats, nil
}
