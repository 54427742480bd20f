// Package fallback chains pipeline loaders so a secondary backend takes over
// when the primary cannot be loaded.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"stylegen/internal/imagegen"
)

// Loader tries primary first and falls back to secondary on load failure.
// Failures during Run are not retried on the secondary.
type Loader struct {
	primary   imagegen.Loader
	secondary imagegen.Loader
	logger    zerolog.Logger
}

// New wires a primary loader with an optional secondary.
func New(primary, secondary imagegen.Loader, logger zerolog.Logger) *Loader {
	return &Loader{primary: primary, secondary: secondary, logger: logger}
}

func (l *Loader) Load(ctx context.Context, family imagegen.Family) (imagegen.Pipeline, error) {
	if l == nil {
		return nil, errors.New("fallback loader not configured")
	}
	if l.primary == nil {
		if l.secondary != nil {
			return l.secondary.Load(ctx, family)
		}
		return nil, errors.New("fallback loader has no backends")
	}
	pl, err := l.primary.Load(ctx, family)
	if err == nil {
		return pl, nil
	}
	if l.secondary == nil || ctx.Err() != nil {
		return nil, err
	}
	l.logger.Warn().Err(err).Str("family", string(family)).Msg("primary backend unavailable, using fallback")
	pl, ferr := l.secondary.Load(ctx, family)
	if ferr != nil {
		return nil, fmt.Errorf("primary: %w; fallback: %v", err, ferr)
	}
	return pl, nil
}

var _ imagegen.Loader = (*Loader)(nil)
