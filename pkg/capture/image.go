package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"sync"

	"github.com/pkg/browser"
)

// ImageAssembler collects the chunks of one JPEG capture. Finish decodes the
// capture, rotates it upright, saves it to a temporary file and opens it in
// the platform viewer.
type ImageAssembler struct {
	// Dir is where captures are saved. Empty means os.TempDir().
	Dir string

	// Open shows a saved capture. Defaults to browser.OpenFile.
	Open func(path string) error

	mu  sync.Mutex
	buf bytes.Buffer
}

// Append adds a chunk and returns the number of bytes collected so far.
func (a *ImageAssembler) Append(chunk []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf.Write(chunk)
	return a.buf.Len()
}

// Len returns the number of bytes collected.
func (a *ImageAssembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Len()
}

// Finish processes the collected bytes and returns the saved file path. The
// collected bytes are discarded even when processing fails.
func (a *ImageAssembler) Finish() (string, error) {
	a.mu.Lock()
	data := bytes.Clone(a.buf.Bytes())
	a.buf.Reset()
	a.mu.Unlock()

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("capture: decode %d byte image: %w", len(data), err)
	}

	f, err := os.CreateTemp(a.Dir, "frame-*.jpeg")
	if err != nil {
		return "", fmt.Errorf("capture: save image: %w", err)
	}
	if err := jpeg.Encode(f, RotateLeft(img), &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("capture: encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("capture: save image: %w", err)
	}

	open := a.Open
	if open == nil {
		open = browser.OpenFile
	}
	if err := open(f.Name()); err != nil {
		return f.Name(), fmt.Errorf("capture: open %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}

// RotateLeft returns img rotated 90 degrees counter clockwise.
func RotateLeft(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := range h {
		for x := range w {
			dst.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
