package imagefile

import (
	"bufio"
	"fmt"
	"io"
)

// WritePPM writes a binary portable pixmap (P6): the header
// "P6 <width> <height> 255\n" followed by the raw RGB bytes, top row first
func WritePPM(w io.Writer, width, height int, pix []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pix) != width*height*3 {
		return fmt.Errorf("pixel buffer has %d bytes, want %d for %dx%d", len(pix), width*height*3, width, height)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6 %d %d 255\n", width, height); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}
	if _, err := bw.Write(pix); err != nil {
		return fmt.Errorf("failed to write PPM data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write PPM data: %w", err)
	}
	return nil
}

// ReadPPM reads a binary P6 pixmap with a maxval of 255, as written by WritePPM
func ReadPPM(r io.Reader) (width, height int, pix []byte, err error) {
	br := bufio.NewReader(r)

	var magic string
	var maxVal int
	if _, err := fmt.Fscan(br, &magic, &width, &height, &maxVal); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read PPM header: %w", err)
	}
	if magic != "P6" || maxVal != 255 {
		return 0, 0, nil, fmt.Errorf("unsupported PPM: magic %q maxval %d", magic, maxVal)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, nil, fmt.Errorf("invalid PPM size %dx%d", width, height)
	}

	// Exactly one whitespace byte separates the header from the data
	if _, err := br.ReadByte(); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read PPM header: %w", err)
	}

	pix = make([]byte, width*height*3)
	if _, err := io.ReadFull(br, pix); err != nil {
		return 0, 0, nil, fmt.Errorf("failed to read PPM data: %w", err)
	}
	return width, height, pix, nil
}
