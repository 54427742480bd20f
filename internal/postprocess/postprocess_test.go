package postprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"

	"stylegen/internal/domain"
	"stylegen/internal/style"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 255 / max(w+h-2, 1)),
				A: 0xff,
			})
		}
	}
	return img
}

func distinctColors(img *image.NRGBA) int {
	seen := map[[3]uint8]struct{}{}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		seen[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}] = struct{}{}
	}
	return len(seen)
}

func sameSize(t *testing.T, name string, got image.Image, w, h int) {
	t.Helper()
	if b := got.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("%s: size %dx%d, want %dx%d", name, b.Dx(), b.Dy(), w, h)
	}
}

func TestOperationsPreserveDimensions(t *testing.T) {
	src := gradient(67, 43)
	ops := map[string]func() image.Image{
		"enhance":    func() image.Image { return Enhance(src, GenericEnhance) },
		"sharpness":  func() image.Image { return Sharpness(src, 1.8) },
		"contrast":   func() image.Image { return Contrast(src, 1.2) },
		"saturation": func() image.Image { return Saturation(src, 1.4) },
		"brightness": func() image.Image { return Brightness(src, 1.05) },
		"unsharp":    func() image.Image { return UnsharpMask(src, 1.5, 150, 3) },
		"sharpen":    func() image.Image { return Sharpen(src) },
		"pixelate":   func() image.Image { return Pixelate(src, 10) },
		"pixel big":  func() image.Image { return Pixelate(src, 500) },
		"pixel zero": func() image.Image { return Pixelate(src, 0) },
		"quantize":   func() image.Image { return Quantize(src, 16) },
	}
	for name, op := range ops {
		sameSize(t, name, op(), 67, 43)
	}
}

func TestQuantizeBoundsDistinctColors(t *testing.T) {
	src := gradient(64, 64)
	for _, n := range []int{1, 8, 24, 32, 64} {
		out := Quantize(src, n)
		if got := distinctColors(out); got > n {
			t.Fatalf("Quantize(%d) produced %d colours", n, got)
		}
	}
}

func TestQuantizeKeepsSmallPalettes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}
	out := Quantize(img, 32)
	if out.NRGBAAt(0, 0) != red || out.NRGBAAt(3, 3) != blue {
		t.Fatalf("two-colour image should survive unchanged, got %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(3, 3))
	}
}

func TestQuantizeDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	out := Quantize(img, 8)
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0xff {
			t.Fatalf("expected opaque output")
		}
	}
}

func TestPixelateProducesFlatBlocks(t *testing.T) {
	out := Pixelate(gradient(40, 40), 10)
	first := out.NRGBAAt(0, 0)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if out.NRGBAAt(x, y) != first {
				t.Fatalf("pixel (%d,%d) differs within the first block", x, y)
			}
		}
	}
	if out.NRGBAAt(0, 0) == out.NRGBAAt(39, 39) {
		t.Fatalf("opposite corners of a gradient should differ after pixelation")
	}
}

func TestFactorSemantics(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	if got := Brightness(img, 0).NRGBAAt(0, 0); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Fatalf("brightness 0 should be black, got %v", got)
	}
	grey := Saturation(img, 0).NRGBAAt(0, 0)
	if grey.R != grey.G || grey.G != grey.B {
		t.Fatalf("saturation 0 should be grey, got %v", grey)
	}
	if got := Contrast(img, 1).NRGBAAt(0, 0); got != img.NRGBAAt(0, 0) {
		t.Fatalf("contrast 1 should be identity, got %v", got)
	}
	if got := Brightness(img, 2).NRGBAAt(0, 0); got.R != 255 {
		t.Fatalf("brightness should clip at 255, got %v", got)
	}
}

func TestFitWithinAndResizeTo(t *testing.T) {
	src := gradient(200, 100)
	small, resized := FitWithin(src, 50)
	if !resized {
		t.Fatalf("expected resize")
	}
	sameSize(t, "fit", small, 50, 25)

	same, resized := FitWithin(src, 400)
	if resized {
		t.Fatalf("image already fits")
	}
	sameSize(t, "fit noop", same, 200, 100)

	sameSize(t, "resize back", ResizeTo(small, 200, 100), 200, 100)
}

func TestProcessRejectsEmptyRaster(t *testing.T) {
	p := NewProcessor(zerolog.Nop())
	if _, err := p.Process(nil, Options{}); !errors.Is(err, domain.ErrPostProcessing) {
		t.Fatalf("expected post-processing failure, got %v", err)
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := p.Process(empty, Options{}); !errors.Is(err, domain.ErrPostProcessing) {
		t.Fatalf("expected post-processing failure, got %v", err)
	}
}

func TestProcessBranchesPreserveDimensions(t *testing.T) {
	p := NewProcessor(zerolog.Nop())
	src := gradient(96, 64)
	cases := []Options{
		{},
		{Style: style.Watercolor, Mode: ModeGenerate},
		{Style: style.PixelArt, Mode: ModeGenerate},
		{Style: style.PixelArt, Mode: ModeRestyle},
		{Style: style.PixelArt, Mode: ModeRestyle, Pixel: &style.PixelOptions{PixelSize: 16, ColorCount: 16}},
	}
	for _, opts := range cases {
		out, err := p.Process(src, opts)
		if err != nil {
			t.Fatalf("Process(%+v): %v", opts, err)
		}
		sameSize(t, opts.Mode.String(), out, 96, 64)
	}
}

func samePixels(t *testing.T, name string, got, want *image.NRGBA) {
	t.Helper()
	if got.Rect != want.Rect {
		t.Fatalf("%s: bounds %v, want %v", name, got.Rect, want.Rect)
	}
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Fatalf("%s: pixels differ from the expected chain", name)
	}
}

func TestProcessRoutesByStyle(t *testing.T) {
	p := NewProcessor(zerolog.Nop())
	src := gradient(48, 40)

	tests := []struct {
		name string
		opts Options
		want *image.NRGBA
	}{
		{
			name: "pixel art restyle",
			opts: Options{Style: style.PixelArt, Mode: ModeRestyle},
			want: Enhance(Quantize(Pixelate(Contrast(Sharpen(Enhance(opaque(src), pixelPrepare)), pixelContrast), DefaultPixelSize), DefaultColorCount), pixelFinish),
		},
		{
			name: "pixel art generate",
			opts: Options{Style: style.PixelArt, Mode: ModeGenerate},
			want: Enhance(Quantize(Pixelate(Contrast(opaque(src), pixelContrast), DefaultPixelSize), DefaultColorCount), pixelFinish),
		},
		{
			name: "pixel art overrides",
			opts: Options{Style: style.PixelArt, Mode: ModeGenerate, Pixel: &style.PixelOptions{PixelSize: 4, ColorCount: 8}},
			want: Enhance(Quantize(Pixelate(Contrast(opaque(src), pixelContrast), 4), 8), pixelFinish),
		},
		{
			name: "anime restyle",
			opts: Options{Style: style.Anime, Mode: ModeRestyle},
			want: Enhance(src, GenericEnhance),
		},
		{
			name: "watercolor generate",
			opts: Options{Style: style.Watercolor, Mode: ModeGenerate},
			want: Enhance(src, GenericEnhance),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Process(src, tt.opts)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			samePixels(t, tt.name, got, tt.want)
		})
	}

	pixel, _ := p.Process(src, Options{Style: style.PixelArt, Mode: ModeRestyle})
	generic := Enhance(src, GenericEnhance)
	if bytes.Equal(pixel.Pix, generic.Pix) {
		t.Fatal("pixel art restyle must not use the generic finish")
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	src := gradient(16, 16)
	before := append([]uint8(nil), src.Pix...)
	if _, err := NewProcessor(zerolog.Nop()).Process(src, Options{Style: style.PixelArt}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range before {
		if before[i] != src.Pix[i] {
			t.Fatalf("input modified at byte %d", i)
		}
	}
}
