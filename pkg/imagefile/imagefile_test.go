package imagefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-row-raytracer/pkg/renderer"
)

func testImage() *renderer.Image {
	img := renderer.NewImage(3, 2)
	for i := range img.Pix {
		img.Pix[i] = byte(i * 13)
	}
	return img
}

func TestWritePPM_HeaderAndData(t *testing.T) {
	img := testImage()
	var buf bytes.Buffer
	require.NoError(t, WritePPM(&buf, img.Width, img.Height, img.Pix))

	header := "P6 3 2 255\n"
	assert.Equal(t, header, buf.String()[:len(header)])
	assert.Equal(t, img.Pix, buf.Bytes()[len(header):])
}

func TestWritePPM_RejectsBadBuffers(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		pix           []byte
	}{
		{"short buffer", 2, 2, make([]byte, 11)},
		{"long buffer", 1, 1, make([]byte, 4)},
		{"zero width", 0, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, WritePPM(&bytes.Buffer{}, tt.width, tt.height, tt.pix))
		})
	}
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestWritePPM_SurfacesWriteErrors(t *testing.T) {
	img := testImage()
	err := WritePPM(failingWriter{}, img.Width, img.Height, img.Pix)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestReadPPM(t *testing.T) {
	img := testImage()
	var buf bytes.Buffer
	require.NoError(t, WritePPM(&buf, img.Width, img.Height, img.Pix))

	width, height, pix, err := ReadPPM(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, width)
	assert.Equal(t, 2, height)
	assert.Equal(t, img.Pix, pix)

	_, _, _, err = ReadPPM(bytes.NewBufferString("P3 1 1 255\n0 0 0"))
	assert.Error(t, err)

	_, _, _, err = ReadPPM(bytes.NewBufferString("P6 2 2 255\nshort"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"out.ppm", PPM, false},
		{"dir/render.PNG", PNG, false},
		{"a.bmp", BMP, false},
		{"b.tif", TIFF, false},
		{"c.tiff", TIFF, false},
		{"noext", "", true},
		{"d.jpg", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWriteFileAndReadBack(t *testing.T) {
	img := testImage()
	dir := t.TempDir()

	// Every format is lossless for 8-bit RGB
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "nested", "render."+string(format))
			require.NoError(t, WriteFile(path, format, img))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			decoded, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, img.Width, decoded.Width)
			assert.Equal(t, img.Height, decoded.Height)
			assert.Equal(t, img.Pix, decoded.Pix)
		})
	}
}

func TestWriteFile_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// A regular file cannot be used as a directory
	err := WriteFile(filepath.Join(blocker, "out.ppm"), PPM, testImage())
	assert.Error(t, err)
}
