package imagegen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"stylegen/internal/domain"
	"stylegen/internal/postprocess"
	"stylegen/internal/style"
)

const (
	cpuGenerationSide = 640
	cudaProcessSide   = 1024
	cpuProcessSide    = 768
)

// Recorder receives timing and outcome observations. Implementations must
// be safe for concurrent use.
type Recorder interface {
	ObserveGeneration(mode, styleID, status string, elapsed time.Duration)
	ObserveBackend(family, status string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, string, string, time.Duration) {}
func (nopRecorder) ObserveBackend(string, string, time.Duration)           {}

type OrchestratorOptions struct {
	Device Device
	// LocalPixelArt restyles pixel-art requests without calling the backend.
	LocalPixelArt bool
	Recorder      Recorder
}

// Orchestrator runs one request end to end: resolve, backend, post-process.
type Orchestrator struct {
	resolver      *Resolver
	pipelines     *Pipelines
	processor     *postprocess.Processor
	device        Device
	localPixelArt bool
	recorder      Recorder
	logger        zerolog.Logger
}

func NewOrchestrator(pipelines *Pipelines, processor *postprocess.Processor, logger zerolog.Logger, opts OrchestratorOptions) *Orchestrator {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	device := opts.Device
	if device == "" {
		device = DeviceCPU
	}
	return &Orchestrator{
		resolver:      NewResolver(device),
		pipelines:     pipelines,
		processor:     processor,
		device:        device,
		localPixelArt: opts.LocalPixelArt,
		recorder:      recorder,
		logger:        logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Resolver exposes the parameter resolver used by the orchestrator.
func (o *Orchestrator) Resolver() *Resolver { return o.resolver }

// Generate fails with domain.ErrInvalidRequest before any backend work,
// domain.ErrBackendFailure when the model call fails, and
// domain.ErrPostProcessing when local raster work fails.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	start := time.Now()
	mode := postprocess.ModeGenerate
	if req.IsImageToImage() {
		mode = postprocess.ModeRestyle
	}

	spec, err := o.resolver.Resolve(req)
	if err != nil {
		o.recorder.ObserveGeneration(mode.String(), "", outcome(err), time.Since(start))
		return nil, err
	}

	var res *Result
	if mode == postprocess.ModeRestyle {
		res, err = o.restyle(ctx, req.Source, spec)
	} else {
		res, err = o.generate(ctx, spec)
	}
	elapsed := time.Since(start)
	o.recorder.ObserveGeneration(mode.String(), styleLabel(spec.Style), outcome(err), elapsed)

	logEvent := o.logger.Info()
	if err != nil {
		logEvent = o.logger.Warn().Err(err)
	}
	logEvent.
		Str("request_id", req.ID).
		Str("mode", mode.String()).
		Str("style", styleLabel(spec.Style)).
		Int("steps", spec.Steps).
		Float64("guidance", spec.GuidanceScale).
		Dur("elapsed", elapsed).
		Msg("generation finished")
	if err != nil {
		return nil, err
	}

	res.Mode = mode
	res.Duration = elapsed
	return res, nil
}

func (o *Orchestrator) generate(ctx context.Context, spec GenerationSpec) (*Result, error) {
	run := spec
	if o.device == DeviceCPU {
		run.Width, run.Height = fitDimensions(spec.Width, spec.Height, cpuGenerationSide)
	}

	img, err := o.runBackend(ctx, FamilyTextToImage, run, nil)
	if err != nil {
		return nil, err
	}
	sized := postprocess.ResizeTo(img, spec.Width, spec.Height)

	out, err := o.processor.Process(sized, postprocess.Options{
		Style: spec.Style,
		Mode:  postprocess.ModeGenerate,
		Pixel: spec.Pixel,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Image: out, Spec: spec}, nil
}

func (o *Orchestrator) restyle(ctx context.Context, source image.Image, spec GenerationSpec) (*Result, error) {
	bounds := source.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty source image", domain.ErrPostProcessing)
	}
	origW, origH := bounds.Dx(), bounds.Dy()
	spec.Width, spec.Height = origW, origH
	opts := postprocess.Options{Style: spec.Style, Mode: postprocess.ModeRestyle, Pixel: spec.Pixel}

	if spec.DirectEnhance {
		out, err := o.processor.Process(source, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Image: out, Spec: spec, BackendSkipped: true}, nil
	}

	working, _ := postprocess.FitWithin(postprocess.PreEnhanceSource(source), o.processSide())

	var (
		generated image.Image = working
		skipped               = spec.Style == style.PixelArt && o.localPixelArt
	)
	if !skipped {
		run := spec
		run.Width, run.Height = working.Rect.Dx(), working.Rect.Dy()
		img, err := o.runBackend(ctx, FamilyImageToImage, run, working)
		if err != nil {
			return nil, err
		}
		generated = img
	}

	out, err := o.processor.Process(generated, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Image:          postprocess.ResizeTo(out, origW, origH),
		Spec:           spec,
		BackendSkipped: skipped,
	}, nil
}

func (o *Orchestrator) runBackend(ctx context.Context, family Family, spec GenerationSpec, source image.Image) (image.Image, error) {
	start := time.Now()
	raw, err := o.callBackend(ctx, family, spec, source)
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.recorder.ObserveBackend(string(family), status, time.Since(start))
	if err != nil {
		return nil, err
	}

	img, err := postprocess.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s output: %w", domain.ErrPostProcessing, family, err)
	}
	return img, nil
}

func (o *Orchestrator) callBackend(ctx context.Context, family Family, spec GenerationSpec, source image.Image) ([]byte, error) {
	if o.pipelines == nil {
		return nil, fmt.Errorf("%w: no pipelines configured", domain.ErrBackendFailure)
	}
	pl, err := o.pipelines.Get(ctx, family)
	if err != nil {
		return nil, err
	}
	raw, err := pl.Run(ctx, spec, source)
	if err != nil {
		if errors.Is(err, domain.ErrBackendFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBackendFailure, family, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s returned no image", domain.ErrBackendFailure, family)
	}
	return raw, nil
}

func (o *Orchestrator) processSide() int {
	if o.device == DeviceCUDA {
		return cudaProcessSide
	}
	return cpuProcessSide
}

// fitDimensions scales w by h down so the longer side is at most maxSide.
func fitDimensions(w, h, maxSide int) (int, int) {
	longest := max(w, h)
	if longest <= maxSide {
		return w, h
	}
	scale := float64(maxSide) / float64(longest)
	return max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)
}

func styleLabel(id style.ID) string {
	if id == "" {
		return "none"
	}
	return string(id)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrBackendFailure):
		return "backend_failure"
	case errors.Is(err, domain.ErrPostProcessing):
		return "postprocess_failure"
	default:
		return "error"
	}
}
