package postprocess

import (
	"cmp"
	"image"
	"image/color"
	"slices"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Quantize reduces img to at most colors distinct colours. The palette is
// built by median cut and applied with Floyd-Steinberg error diffusion.
// Input and output are both opaque RGB.
func Quantize(img image.Image, colors int) *image.NRGBA {
	if colors < 1 {
		colors = 1
	}
	src := opaque(img)
	palette := medianCut(src, colors)

	dst := image.NewPaletted(src.Rect, palette)
	draw.FloydSteinberg.Draw(dst, src.Rect, src, src.Rect.Min)
	return opaque(imaging.Clone(dst))
}

type bucket struct {
	rgb   [3]uint8
	count int
}

type cube []bucket

// medianCut expects an opaque image.
func medianCut(img *image.NRGBA, n int) color.Palette {
	hist := map[[3]uint8]int{}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		hist[[3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}]++
	}
	all := make(cube, 0, len(hist))
	for rgb, count := range hist {
		all = append(all, bucket{rgb: rgb, count: count})
	}
	slices.SortFunc(all, func(a, b bucket) int { return comparePacked(a.rgb, b.rgb) })

	if len(all) <= n {
		palette := make(color.Palette, 0, len(all))
		for _, b := range all {
			palette = append(palette, color.RGBA{R: b.rgb[0], G: b.rgb[1], B: b.rgb[2], A: 0xff})
		}
		return palette
	}

	cubes := []cube{all}
	for len(cubes) < n {
		idx, axis, best := -1, 0, 0
		for i, c := range cubes {
			if len(c) < 2 {
				continue
			}
			a, spread := c.widest()
			if spread > best {
				idx, axis, best = i, a, spread
			}
		}
		if idx < 0 {
			break
		}
		lo, hi := cubes[idx].split(axis)
		cubes[idx] = lo
		cubes = append(cubes, hi)
	}

	palette := make(color.Palette, 0, len(cubes))
	for _, c := range cubes {
		palette = append(palette, c.mean())
	}
	return palette
}

func (c cube) widest() (axis, spread int) {
	for a := 0; a < 3; a++ {
		lo, hi := 255, 0
		for _, b := range c {
			v := int(b.rgb[a])
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi-lo > spread {
			axis, spread = a, hi-lo
		}
	}
	return axis, spread
}

// split sorts the cube along axis and cuts it at the pixel-weighted median.
// Both halves are non-empty.
func (c cube) split(axis int) (cube, cube) {
	slices.SortFunc(c, func(a, b bucket) int {
		if d := cmp.Compare(a.rgb[axis], b.rgb[axis]); d != 0 {
			return d
		}
		return comparePacked(a.rgb, b.rgb)
	})
	total := 0
	for _, b := range c {
		total += b.count
	}
	cut, acc := 1, 0
	for i, b := range c {
		acc += b.count
		if acc*2 >= total {
			cut = i + 1
			break
		}
	}
	if cut >= len(c) {
		cut = len(c) - 1
	}
	return c[:cut:cut], c[cut:]
}

func (c cube) mean() color.RGBA {
	var r, g, b, n int
	for _, bk := range c {
		r += int(bk.rgb[0]) * bk.count
		g += int(bk.rgb[1]) * bk.count
		b += int(bk.rgb[2]) * bk.count
		n += bk.count
	}
	if n == 0 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 0xff}
}

func comparePacked(a, b [3]uint8) int {
	pa := int(a[0])<<16 | int(a[1])<<8 | int(a[2])
	pb := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return cmp.Compare(pa, pb)
}
