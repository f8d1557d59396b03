package renderer

import "github.com/df07/go-row-raytracer/pkg/core"

// RowData holds the finished RGB bytes of one image row
type RowData struct {
	Row   int    // Row number, 0 = top of the image
	Index int    // Byte offset of the row in the full image buffer
	RGB   []byte // width*3 bytes once the row is complete
}

// NewRowData creates an empty row buffer for row of an image width pixels wide
func NewRowData(row, width int) RowData {
	return RowData{
		Row:   row,
		Index: row * width * 3,
		RGB:   make([]byte, 0, width*3),
	}
}

// PushColor appends one pixel given the sum of its samples. The average
// is gamma corrected (gamma 2), clamped to [0,1] and scaled to a byte.
func (r *RowData) PushColor(sum core.Vec3, samplesPerPixel int) {
	scale := 1.0 / float64(samplesPerPixel)
	c := sum.Multiply(scale).Sqrt().Clamp(0.0, 1.0)
	r.RGB = append(r.RGB,
		uint8(255*c.X),
		uint8(255*c.Y),
		uint8(255*c.Z),
	)
}
