package postprocess

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"stylegen/internal/domain"
	"stylegen/internal/style"
)

const (
	DefaultPixelSize  = 10
	DefaultColorCount = 32

	pixelContrast  = 1.2
	sourceContrast = 1.15
	sourceSharpen  = 1.15
)

// Mode distinguishes a fresh generation from a restyle of a source image.
type Mode int

const (
	ModeGenerate Mode = iota
	ModeRestyle
)

func (m Mode) String() string {
	if m == ModeRestyle {
		return "restyle"
	}
	return "generate"
}

// Options selects the branch applied by Process.
type Options struct {
	Style style.ID
	Mode  Mode
	// Pixel overrides the pixel-art defaults when set.
	Pixel *style.PixelOptions
}

// Processor runs the post-generation pipeline.
type Processor struct {
	logger zerolog.Logger
}

func NewProcessor(logger zerolog.Logger) *Processor {
	return &Processor{logger: logger.With().Str("component", "postprocess").Logger()}
}

// Process returns a new raster with the same dimensions as img.
func (p *Processor) Process(img image.Image, opts Options) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil raster", domain.ErrPostProcessing)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty raster %v", domain.ErrPostProcessing, img.Bounds())
	}

	start := time.Now()
	branch := "generic"
	var out *image.NRGBA
	if opts.Style == style.PixelArt {
		branch = "pixel_art"
		out = pixelArt(img, opts)
	} else {
		out = Enhance(img, GenericEnhance)
	}

	p.logger.Debug().
		Str("branch", branch).
		Str("mode", opts.Mode.String()).
		Int("width", out.Rect.Dx()).
		Int("height", out.Rect.Dy()).
		Dur("elapsed", time.Since(start)).
		Msg("post-processing complete")
	return out, nil
}

func pixelArt(img image.Image, opts Options) *image.NRGBA {
	size, colors := DefaultPixelSize, DefaultColorCount
	if opts.Pixel != nil {
		size, colors = opts.Pixel.PixelSize, opts.Pixel.ColorCount
	}

	out := opaque(img)
	if opts.Mode == ModeRestyle {
		out = Enhance(out, pixelPrepare)
		out = Sharpen(out)
	}
	out = Contrast(out, pixelContrast)
	out = Pixelate(out, size)
	out = Quantize(out, colors)
	return Enhance(out, pixelFinish)
}

// PreEnhanceSource lifts contrast and sharpness of an uploaded image before
// it is handed to the backend.
func PreEnhanceSource(img image.Image) *image.NRGBA {
	return Sharpness(Contrast(img, sourceContrast), sourceSharpen)
}
