package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`
	// LogLevel overrides the level implied by AppEnv.
	LogLevel string `env:"LOG_LEVEL"`

	HTTPReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"300"`
	HTTPIdleTimeoutSeconds  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
	RateLimitPerMin         int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Backend            string        `env:"BACKEND" envDefault:"sdwebui"`
	BackendFallback    bool          `env:"BACKEND_FALLBACK" envDefault:"true"`
	SDBaseURL          string        `env:"SD_BASE_URL" envDefault:"http://127.0.0.1:7860"`
	SDSampler          string        `env:"SD_SAMPLER" envDefault:"DPM++ 2M Karras"`
	SDCheckpoint       string        `env:"SD_CHECKPOINT"`
	SDTimeout          time.Duration `env:"SD_TIMEOUT" envDefault:"5m"`
	BackendDevice      string        `env:"BACKEND_DEVICE" envDefault:"cuda"`
	BackendConcurrency int           `env:"BACKEND_CONCURRENCY" envDefault:"1"`
	LocalPixelArt      bool          `env:"LOCAL_PIXEL_ART" envDefault:"false"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"./data"`
	StorageBaseURL string `env:"STORAGE_BASE_URL"`

	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKeyID  string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	S3Prefix       string `env:"S3_PREFIX"`

	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`
	ResultCacheTTL time.Duration `env:"RESULT_CACHE_TTL" envDefault:"30m"`

	HTTPReadTimeout  time.Duration `env:"-"`
	HTTPWriteTimeout time.Duration `env:"-"`
	HTTPIdleTimeout  time.Duration `env:"-"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.BackendDevice = strings.ToLower(strings.TrimSpace(cfg.BackendDevice))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if strings.TrimSpace(cfg.StorageBaseURL) == "" {
		cfg.StorageBaseURL = "http://localhost:" + cfg.Port
	}
	cfg.StorageBaseURL = strings.TrimRight(cfg.StorageBaseURL, "/")
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	cfg.HTTPReadTimeout = time.Second * time.Duration(cfg.HTTPReadTimeoutSeconds)
	cfg.HTTPWriteTimeout = time.Second * time.Duration(cfg.HTTPWriteTimeoutSeconds)
	cfg.HTTPIdleTimeout = time.Second * time.Duration(cfg.HTTPIdleTimeoutSeconds)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Backend {
	case "sdwebui", "synthetic":
	default:
		errs = append(errs, fmt.Errorf("BACKEND must be sdwebui or synthetic, got %q", c.Backend))
	}
	switch c.BackendDevice {
	case "cuda", "gpu", "cpu":
	default:
		errs = append(errs, fmt.Errorf("BACKEND_DEVICE must be cuda or cpu, got %q", c.BackendDevice))
	}
	switch c.StorageBackend {
	case "local":
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or s3, got %q", c.StorageBackend))
	}
	if c.BackendConcurrency < 1 {
		errs = append(errs, errors.New("BACKEND_CONCURRENCY must be at least 1"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
