package renderer

import (
	"image"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Rows           int           // Rows merged into the image
	Pixels         int           // Pixels rendered
	Samples        int           // Camera rays traced
	Rays           int64         // Scene queries, camera rays and bounces
	BoxTests       int64         // Bounding box slab tests
	PrimitiveTests int64         // Exact sphere intersection tests
	Hits           int64         // Scene queries that hit a primitive
	Duration       time.Duration // Wall-clock render time
	Workers        int           // Number of row workers used
}

// RaysPerSecond returns the scene query throughput
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Rays) / s.Duration.Seconds()
}

// CalculateAverageLuminance computes the average luminance of an image
// using Rec. 709 coefficients
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels
			total += 0.2126*float64(r)/65535.0 + 0.7152*float64(g)/65535.0 + 0.0722*float64(b)/65535.0
		}
	}

	return total / float64(pixels)
}
