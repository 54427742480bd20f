package postprocess

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Pixelate downsamples img by pixelSize with Catmull-Rom and scales it back
// up with nearest-neighbour, so each block is one flat colour. The output
// always matches the input dimensions.
func Pixelate(img image.Image, pixelSize int) *image.NRGBA {
	if pixelSize < 1 {
		pixelSize = 1
	}
	src := opaque(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	small := image.NewNRGBA(image.Rect(0, 0, max(w/pixelSize, 1), max(h/pixelSize, 1)))
	draw.CatmullRom.Scale(small, small.Rect, src, src.Rect, draw.Src, nil)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(out, out.Rect, small, small.Rect, draw.Src, nil)
	return out
}

// FitWithin shrinks img with Lanczos so neither side exceeds maxSide. It
// reports whether a resize happened.
func FitWithin(img image.Image, maxSide int) (*image.NRGBA, bool) {
	b := img.Bounds()
	if maxSide <= 0 || max(b.Dx(), b.Dy()) <= maxSide {
		return imaging.Clone(img), false
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos), true
}

// ResizeTo resamples img to exactly width by height with Lanczos.
func ResizeTo(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
