package balloon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Sprite identifies an image drawn on a Surface.
type Sprite uint64

// Surface is a transparent drawable region provided by the window host.
// Every method is called from the scheduler's goroutine only.
type Surface interface {
	// Size returns the measured size. Zero means the host has not laid
	// the surface out yet.
	Size() (w, h int)
	// Resize changes the surface geometry within the host window.
	Resize(r image.Rectangle)
	// Draw places img centred on (x, y).
	Draw(img image.Image, x, y float64) Sprite
	Move(s Sprite, dx, dy float64)
	// Position returns the centre of s, or ok=false if it no longer exists.
	Position(s Sprite) (x, y float64, ok bool)
	Delete(s Sprite)
	// Destroy releases the surface and every sprite on it.
	Destroy()
}

// SurfaceFactory creates the surface on first use.
type SurfaceFactory func() (Surface, error)

// Decoder turns downloaded bytes into an image.
type Decoder func([]byte) (image.Image, error)

var errEmptyImage = errors.New("balloon: image has no pixels")

// DecodeImage decodes PNG, JPEG, GIF, BMP and WebP data.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("balloon: decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, errEmptyImage
	}
	return img, nil
}

// Shrink subsamples img by the smallest integer factor that makes it at
// most maxWidth wide. Images already narrow enough are returned as is.
func Shrink(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	factor := (w + maxWidth - 1) / maxWidth
	dw := max(1, (w+factor-1)/factor)
	dh := max(1, (h+factor-1)/factor)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

var errNoSurface = errors.New("balloon: no surface factory")
