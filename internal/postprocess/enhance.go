// Package postprocess applies the local raster pipeline that runs after the
// diffusion backend: enhancement, pixelation and palette reduction.
package postprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// EnhanceOptions scales the individual enhancement factors. Each factor is
// multiplied by Level before use.
type EnhanceOptions struct {
	Level      float64
	Sharpness  float64
	Contrast   float64
	Saturation float64
}

var (
	// GenericEnhance is the finish applied to every non pixel-art result.
	GenericEnhance = EnhanceOptions{Level: 1.3, Sharpness: 1.4, Contrast: 1.25, Saturation: 1.3}

	pixelPrepare = EnhanceOptions{Level: 1.3, Sharpness: 1.3, Contrast: 1.3, Saturation: 1.4}
	pixelFinish  = EnhanceOptions{Level: 1.4, Sharpness: 1.3, Contrast: 1.3, Saturation: 1.4}
)

const (
	brightnessFactor = 1.05
	unsharpMinLevel  = 1.1
	unsharpSigma     = 1.5
	unsharpPercent   = 150
	unsharpThreshold = 3
)

var (
	smoothKernel  = [9]float64{1, 1, 1, 1, 5, 1, 1, 1, 1}
	sharpenKernel = [9]float64{-2, -2, -2, -2, 32, -2, -2, -2, -2}
)

// Enhance runs sharpness, contrast, saturation and brightness in that order
// and adds an unsharp mask for levels above 1.1.
func Enhance(img image.Image, o EnhanceOptions) *image.NRGBA {
	out := opaque(img)
	out = Sharpness(out, o.Sharpness*o.Level)
	out = Contrast(out, o.Contrast*o.Level)
	out = Saturation(out, o.Saturation*o.Level)
	out = Brightness(out, brightnessFactor)
	if o.Level > unsharpMinLevel {
		out = UnsharpMask(out, unsharpSigma, unsharpPercent, unsharpThreshold)
	}
	return out
}

// Sharpness interpolates between a smoothed copy (factor 0) and the input
// (factor 1). Factors above 1 extrapolate away from the smoothed copy.
func Sharpness(img image.Image, factor float64) *image.NRGBA {
	src := opaque(img)
	smooth := imaging.Convolve3x3(src, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	return blend(smooth, src, factor)
}

// Contrast interpolates against a flat image at the mean grey level.
func Contrast(img image.Image, factor float64) *image.NRGBA {
	src := opaque(img)
	mean := float64(meanLuma(src))
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: lerp(mean, float64(c.R), factor),
			G: lerp(mean, float64(c.G), factor),
			B: lerp(mean, float64(c.B), factor),
			A: c.A,
		}
	})
}

// Saturation interpolates against the greyscale rendition of each pixel.
func Saturation(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(opaque(img), func(c color.NRGBA) color.NRGBA {
		l := float64(luma(c))
		return color.NRGBA{
			R: lerp(l, float64(c.R), factor),
			G: lerp(l, float64(c.G), factor),
			B: lerp(l, float64(c.B), factor),
			A: c.A,
		}
	})
}

// Brightness interpolates against black.
func Brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(opaque(img), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: lerp(0, float64(c.R), factor),
			G: lerp(0, float64(c.G), factor),
			B: lerp(0, float64(c.B), factor),
			A: c.A,
		}
	})
}

// UnsharpMask adds percent of the difference to a Gaussian blur wherever the
// per-channel difference reaches threshold.
func UnsharpMask(img image.Image, sigma float64, percent, threshold int) *image.NRGBA {
	src := opaque(img)
	blurred := imaging.Blur(src, sigma)
	out := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			orig := int(src.Pix[i+c])
			diff := orig - int(blurred.Pix[i+c])
			if diff >= threshold || -diff >= threshold {
				out.Pix[i+c] = clamp8(float64(orig) + float64(diff*percent)/100)
			} else {
				out.Pix[i+c] = uint8(orig)
			}
		}
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

// Sharpen applies a fixed 3x3 sharpening kernel.
func Sharpen(img image.Image) *image.NRGBA {
	return imaging.Convolve3x3(opaque(img), sharpenKernel, &imaging.ConvolveOptions{Normalize: true})
}

// blend returns degenerate + factor*(src-degenerate). Both images must share
// dimensions and start at the origin.
func blend(degenerate, src *image.NRGBA, factor float64) *image.NRGBA {
	out := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		out.Pix[i] = lerp(float64(degenerate.Pix[i]), float64(src.Pix[i]), factor)
		out.Pix[i+1] = lerp(float64(degenerate.Pix[i+1]), float64(src.Pix[i+1]), factor)
		out.Pix[i+2] = lerp(float64(degenerate.Pix[i+2]), float64(src.Pix[i+2]), factor)
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

// opaque copies img into an origin-anchored NRGBA with every alpha at 255.
func opaque(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

func luma(c color.NRGBA) uint8 {
	return uint8((int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000)
}

func meanLuma(img *image.NRGBA) int {
	var sum, n int
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += int(luma(color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}))
		n++
	}
	if n == 0 {
		return 0
	}
	return int(float64(sum)/float64(n) + 0.5)
}

func lerp(from, to, factor float64) uint8 {
	return clamp8(from + factor*(to-from))
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
