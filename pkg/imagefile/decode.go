package imagefile

import (
	"fmt"
	"image"
	_ "image/png" // PNG decoder
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// Decode reads any supported format back into an RGB buffer
func Decode(r io.Reader, format Format) (*renderer.Image, error) {
	if format == PPM {
		width, height, pix, err := ReadPPM(r)
		if err != nil {
			return nil, err
		}
		return &renderer.Image{Width: width, Height: height, Pix: pix}, nil
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	out := renderer.NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			cr, cg, cb, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns 16-bit channels
			i := (y*out.Width + x) * 3
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)
		}
	}
	return out, nil
}

// ReadFile loads an image written by WriteFile
func ReadFile(path string) (*renderer.Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	path, err = homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand image path: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return Decode(file, format)
}
