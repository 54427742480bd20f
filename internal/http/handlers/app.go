package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"stylegen/internal/imagegen"
	"stylegen/internal/results"
	"stylegen/internal/storage"
)

const (
	uploadsPrefix   = "uploads"
	generatedPrefix = "generated"

	defaultMaxUploadBytes = 16 << 20
)

// Generator runs one generation request end to end.
type Generator interface {
	Generate(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.Result, error)
}

// UploadRecorder receives one observation per upload attempt.
type UploadRecorder interface {
	ObserveUpload(contentType, status string, size int64)
}

// HealthChecker is implemented by stores that can probe their backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Options struct {
	Generator      Generator
	Store          storage.Store
	Results        *results.Cache
	Uploads        UploadRecorder
	Logger         zerolog.Logger
	BaseURL        string
	MaxUploadBytes int64
	// Concurrency bounds simultaneous generations.
	Concurrency int
}

// App holds handler dependencies.
type App struct {
	gen            Generator
	store          storage.Store
	results        *results.Cache
	uploads        UploadRecorder
	sem            *semaphore.Weighted
	logger         zerolog.Logger
	baseURL        string
	maxUploadBytes int64

	now   func() time.Time
	intn  func(n int) int
	newID func() string
}

func NewApp(opts Options) *App {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	cache := opts.Results
	if cache == nil {
		cache = results.NewCache(results.DefaultTTL)
	}
	return &App{
		gen:            opts.Generator,
		store:          opts.Store,
		results:        cache,
		uploads:        opts.Uploads,
		sem:            semaphore.NewWeighted(int64(concurrency)),
		logger:         opts.Logger.With().Str("component", "http").Logger(),
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		maxUploadBytes: maxUpload,
		now:            time.Now,
		intn:           rand.Intn,
		newID:          newRequestID,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "message": message})
}

func (a *App) observeUpload(contentType, status string, size int64) {
	if a.uploads != nil {
		a.uploads.ObserveUpload(contentType, status, size)
	}
}
