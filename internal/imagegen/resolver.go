package imagegen

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"stylegen/internal/domain"
	"stylegen/internal/style"
)

const (
	// SourcePlaceholder stands in for the prompt of an image-to-image
	// request that carries none.
	SourcePlaceholder = "This image"

	DefaultDimension = 512
	MinDimension     = 256
	MaxDimension     = 1024

	defaultGuidance = 8.0
	defaultStrength = 0.70

	textNegative  = "low quality, blurry, distorted, deformed, disfigured, bad anatomy, ugly, amateur, watermark, signature, text, cropped, low resolution, draft"
	imageNegative = "low quality, blurry, distorted, deformed, disfigured, bad anatomy, ugly, watermark, signature, text"
)

// Resolver turns a request into a GenerationSpec. It is stateless apart
// from the device, so one value can serve concurrent callers.
type Resolver struct {
	device Device
}

// NewResolver returns a Resolver tuned for device.
func NewResolver(device Device) *Resolver {
	return &Resolver{device: device}
}

// DefaultSteps is the inference step floor for the configured device.
func (r *Resolver) DefaultSteps() int {
	if r.device == DeviceCUDA {
		return 40
	}
	return 30
}

// Resolve picks the style, prompts and numeric parameters for req. It fails
// with domain.ErrInvalidRequest only when there is neither a prompt nor a
// source image; an unknown style falls back to unstyled defaults.
func (r *Resolver) Resolve(req GenerationRequest) (GenerationSpec, error) {
	img2img := req.IsImageToImage()
	content := strings.TrimSpace(req.Prompt)
	if content == "" {
		if !img2img {
			return GenerationSpec{}, fmt.Errorf("%w: prompt or source image required", domain.ErrInvalidRequest)
		}
		content = SourcePlaceholder
	}

	spec := GenerationSpec{
		Width:  clampDimension(req.Width),
		Height: clampDimension(req.Height),
	}

	if st, ok := style.ResolveWith(req.Style, req.StyleOptions); ok {
		params := st.ResolveParameters(img2img, content)
		spec.Style = st.ID()
		spec.Prompt = params.Prompt
		spec.NegativePrompt = params.NegativePrompt
		spec.Steps = max(params.Steps, r.DefaultSteps())
		spec.GuidanceScale = params.GuidanceScale
		spec.Strength = params.Strength
		spec.DirectEnhance = params.DirectEnhance
		spec.Pixel = params.Pixel
	} else {
		spec.Prompt = content
		spec.NegativePrompt = textNegative
		spec.Steps = r.DefaultSteps()
		spec.GuidanceScale = defaultGuidance
		if img2img {
			spec.NegativePrompt = imageNegative
			spec.Strength = defaultStrength
		}
	}

	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		spec.Prompt += ", " + instructions
	}
	spec.Seed = deterministicSeed(req.ID, spec.Prompt, spec.Width, spec.Height)
	return spec, nil
}

func clampDimension(v int) int {
	if v == 0 {
		v = DefaultDimension
	}
	return min(max(v, MinDimension), MaxDimension)
}

func deterministicSeed(values ...any) int {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	value := int(binary.BigEndian.Uint32(sum[:4]) % 2147483647)
	if value <= 0 {
		value = int(binary.BigEndian.Uint32(sum[4:8])%2147483646) + 1
	}
	return value
}
