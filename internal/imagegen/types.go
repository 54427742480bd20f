package imagegen

import (
	"image"
	"time"

	"stylegen/internal/postprocess"
	"stylegen/internal/style"
)

// Device is the compute class the diffusion backend runs on. It only
// influences default step counts and working resolution.
type Device string

const (
	DeviceCUDA Device = "cuda"
	DeviceCPU  Device = "cpu"
)

// NormalizeDevice maps free-form input to a known device, defaulting to cpu.
func NormalizeDevice(raw string) Device {
	switch Device(raw) {
	case DeviceCUDA, "gpu":
		return DeviceCUDA
	default:
		return DeviceCPU
	}
}

// GenerationRequest is one caller intent. Source is nil for text-to-image.
type GenerationRequest struct {
	ID           string
	Prompt       string
	Style        string
	StyleOptions style.Options
	Instructions string
	Width        int
	Height       int
	Source       image.Image
}

// IsImageToImage reports whether the request restyles a source image.
func (r GenerationRequest) IsImageToImage() bool { return r.Source != nil }

// GenerationSpec is the backend-ready parameter set. Strength is zero for
// text-to-image. Style is empty when no style resolved.
type GenerationSpec struct {
	Prompt         string              `json:"prompt"`
	NegativePrompt string              `json:"negative_prompt"`
	Steps          int                 `json:"steps"`
	GuidanceScale  float64             `json:"guidance_scale"`
	Strength       float64             `json:"strength,omitempty"`
	Width          int                 `json:"width"`
	Height         int                 `json:"height"`
	Seed           int                 `json:"seed"`
	Style          style.ID            `json:"style,omitempty"`
	DirectEnhance  bool                `json:"direct_enhance,omitempty"`
	Pixel          *style.PixelOptions `json:"pixel,omitempty"`
}

// Result is the final raster with the parameters that produced it.
type Result struct {
	Image *image.NRGBA
	Spec  GenerationSpec
	Mode  postprocess.Mode
	// BackendSkipped is true when the raster was produced locally.
	BackendSkipped bool
	Duration       time.Duration
}
