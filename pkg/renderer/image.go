package renderer

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a packed RGB buffer, row-major with the top row first
type Image struct {
	Width  int
	Height int
	Pix    []byte // Width*Height*3 bytes
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// SetRow copies a finished row into the buffer at its precomputed offset
func (img *Image) SetRow(row RowData) error {
	if row.Index < 0 || row.Index+len(row.RGB) > len(img.Pix) || len(row.RGB) != img.Width*3 {
		return fmt.Errorf("row %d (offset %d, %d bytes) does not fit a %dx%d image",
			row.Row, row.Index, len(row.RGB), img.Width, img.Height)
	}
	copy(img.Pix[row.Index:], row.RGB)
	return nil
}

// At returns the RGB bytes of pixel (x, y), y = 0 being the top row
func (img *Image) At(x, y int) (r, g, b uint8) {
	i := (y*img.Width + x) * 3
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// RGBA converts the buffer to a standard library image
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}
