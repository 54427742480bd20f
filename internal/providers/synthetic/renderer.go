// Package synthetic renders deterministic placeholder images so the service
// can run end to end without a diffusion server.
package synthetic

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"stylegen/internal/imagegen"
)

// Loader hands out synthetic pipelines for every family.
type Loader struct{}

func (Loader) Load(_ context.Context, family imagegen.Family) (imagegen.Pipeline, error) {
	return Pipeline{family: family}, nil
}

// Pipeline draws stripes and diagonals coloured from the request seed and
// prompt. For image-to-image the pattern is blended over the source by the
// requested strength.
type Pipeline struct {
	family imagegen.Family
}

func (p Pipeline) Run(ctx context.Context, spec imagegen.GenerationSpec, source image.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	width, height := spec.Width, spec.Height
	if source != nil {
		b := source.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	pattern := render(width, height, seedBytes(spec))

	var out image.Image = pattern
	if source != nil && p.family == imagegen.FamilyImageToImage {
		out = mix(source, pattern, spec.Strength)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("synthetic: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func seedBytes(spec imagegen.GenerationSpec) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", spec.Seed, spec.Prompt, spec.Style)))
}

func render(width, height int, seed [32]byte) *image.RGBA {
	if width <= 0 {
		width = imagegen.DefaultDimension
	}
	if height <= 0 {
		height = imagegen.DefaultDimension
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(32, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(16, width/32) {
		for y := 0; y < height; y++ {
			xx := x + y
			if xx >= width {
				break
			}
			img.Set(xx, y, diagonal)
		}
	}
	return img
}

func mix(source image.Image, pattern *image.RGBA, strength float64) *image.NRGBA {
	strength = min(max(strength, 0), 1)
	b := source.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			s := color.NRGBAModel.Convert(source.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			p := pattern.RGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: blend(s.R, p.R, strength),
				G: blend(s.G, p.G, strength),
				B: blend(s.B, p.B, strength),
				A: 0xff,
			})
		}
	}
	return out
}

func blend(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t + 0.5)
}

func colorFromSeed(seed [32]byte, shift int) color.RGBA {
	i := (shift * 3) % (len(seed) - 2)
	return color.RGBA{R: seed[i], G: seed[i+1], B: seed[i+2], A: 255}
}

var (
	_ imagegen.Loader   = Loader{}
	_ imagegen.Pipeline = Pipeline{}
)
