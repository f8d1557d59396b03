package imagefile

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-row-raytracer/pkg/renderer"
)

// Format names an output encoding
type Format string

const (
	PPM  Format = "ppm"
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists every supported format
var Formats = []Format{PPM, PNG, BMP, TIFF}

// ParseFormat converts a format name (case-insensitive) into a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "ppm":
		return PPM, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("unknown image format %q (want ppm, png, bmp or tiff)", name)
	}
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer image format from %q", path)
	}
	return ParseFormat(ext)
}

// Encode writes img to w in the given format
func Encode(w io.Writer, format Format, img *renderer.Image) error {
	if format == PPM {
		return WritePPM(w, img.Width, img.Height, img.Pix)
	}

	var encoded image.Image = img.RGBA()
	var err error
	switch format {
	case PNG:
		err = png.Encode(w, encoded)
	case BMP:
		err = bmp.Encode(w, encoded)
	case TIFF:
		err = tiff.Encode(w, encoded, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// WriteFile encodes img into a new file at path. A leading ~ is expanded to
// the home directory and missing parent directories are created.
func WriteFile(path string, format Format, img *renderer.Image) (err error) {
	path, err = homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand output path: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	return Encode(file, format, img)
}
