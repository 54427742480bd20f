// Package service assembles the generation stack from configuration so the
// API server and the CLI share one wiring.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"stylegen/internal/imagegen"
	"stylegen/internal/infra"
	"stylegen/internal/postprocess"
	"stylegen/internal/providers/fallback"
	"stylegen/internal/providers/sdwebui"
	"stylegen/internal/providers/synthetic"
	"stylegen/internal/storage"
)

// NewLoader selects the backend named by cfg.Backend. The web UI backend
// falls back to the synthetic renderer when BackendFallback is set.
func NewLoader(cfg *infra.Config, logger zerolog.Logger) imagegen.Loader {
	if cfg.Backend == "synthetic" {
		return synthetic.Loader{}
	}
	sdLogger := infra.Component(logger, "sdwebui")
	client := sdwebui.NewClient(sdwebui.Options{
		BaseURL:        cfg.SDBaseURL,
		Sampler:        cfg.SDSampler,
		Checkpoint:     cfg.SDCheckpoint,
		Logger:         &sdLogger,
		RequestTimeout: cfg.SDTimeout,
	})
	if !cfg.BackendFallback {
		return client
	}
	return fallback.New(client, synthetic.Loader{}, infra.Component(logger, "backend"))
}

// NewOrchestrator wires pipelines, the post-processor and the recorder.
func NewOrchestrator(cfg *infra.Config, logger zerolog.Logger, recorder imagegen.Recorder) *imagegen.Orchestrator {
	pipelines := imagegen.NewPipelines(NewLoader(cfg, logger), logger)
	return imagegen.NewOrchestrator(pipelines, postprocess.NewProcessor(logger), logger, imagegen.OrchestratorOptions{
		Device:        imagegen.NormalizeDevice(cfg.BackendDevice),
		LocalPixelArt: cfg.LocalPixelArt,
		Recorder:      recorder,
	})
}

// NewStore opens the configured storage backend.
func NewStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKeyID:  cfg.S3AccessKeyID,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			Prefix:       cfg.S3Prefix,
		}, logger)
	case "local", "":
		return storage.NewFileStore(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
