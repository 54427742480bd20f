package imagegen

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"stylegen/internal/domain"
)

// loadTimeout bounds a single shared load. Loads run detached from the
// caller that started them.
const loadTimeout = 10 * time.Minute

// Family identifies one kind of diffusion pipeline.
type Family string

const (
	FamilyTextToImage  Family = "text2img"
	FamilyImageToImage Family = "img2img"
)

// Pipeline runs one diffusion call and returns encoded image bytes. source is
// nil for text-to-image.
type Pipeline interface {
	Run(ctx context.Context, spec GenerationSpec, source image.Image) ([]byte, error)
}

// Loader prepares the pipeline for a family. Loading may be slow.
type Loader interface {
	Load(ctx context.Context, family Family) (Pipeline, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, family Family) (Pipeline, error)

func (f LoaderFunc) Load(ctx context.Context, family Family) (Pipeline, error) {
	return f(ctx, family)
}

// Pipelines loads each family at most once and hands the same instance to
// every caller afterwards. Concurrent first callers share a single load. A
// failed load is not remembered, so the next call retries it.
type Pipelines struct {
	loader Loader
	logger zerolog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	loaded map[Family]Pipeline
}

func NewPipelines(loader Loader, logger zerolog.Logger) *Pipelines {
	return &Pipelines{
		loader: loader,
		logger: logger.With().Str("component", "pipelines").Logger(),
		loaded: make(map[Family]Pipeline),
	}
}

// Get returns the pipeline for family, loading it on first use. A caller whose
// ctx ends while waiting gives up alone; the shared load keeps running for the
// others.
func (p *Pipelines) Get(ctx context.Context, family Family) (Pipeline, error) {
	if pl, ok := p.cached(family); ok {
		return pl, nil
	}
	if p.loader == nil {
		return nil, fmt.Errorf("%w: no pipeline loader configured", domain.ErrBackendFailure)
	}

	ch := p.group.DoChan(string(family), func() (any, error) {
		if pl, ok := p.cached(family); ok {
			return pl, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		p.logger.Info().Str("family", string(family)).Msg("loading pipeline")
		pl, err := p.loader.Load(loadCtx, family)
		if err != nil {
			return nil, err
		}
		if pl == nil {
			return nil, fmt.Errorf("loader returned no pipeline")
		}
		p.mu.Lock()
		p.loaded[family] = pl
		p.mu.Unlock()
		return pl, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: wait for %s pipeline: %w", domain.ErrBackendFailure, family, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			p.logger.Warn().Err(res.Err).Str("family", string(family)).Bool("shared", res.Shared).Msg("pipeline load failed")
			return nil, fmt.Errorf("%w: load %s pipeline: %w", domain.ErrBackendFailure, family, res.Err)
		}
		return res.Val.(Pipeline), nil
	}
}

// Loaded lists the families that are ready, sorted.
func (p *Pipelines) Loaded() []Family {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Family, 0, len(p.loaded))
	for f := range p.loaded {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Pipelines) cached(family Family) (Pipeline, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pl, ok := p.loaded[family]
	return pl, ok
}
