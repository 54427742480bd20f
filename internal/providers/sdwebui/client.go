// Package sdwebui talks to a Stable Diffusion web UI server over its
// /sdapi/v1 HTTP API.
package sdwebui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stylegen/internal/imagegen"
	"stylegen/internal/infra"
)

const (
	defaultBaseURL = "http://127.0.0.1:7860"
	defaultSampler = "DPM++ 2M Karras"
)

// ErrEmptyResponse indicates the server answered without any image.
var ErrEmptyResponse = errors.New("sdwebui: empty image list")

// Options configures the web UI client.
type Options struct {
	BaseURL        string
	Sampler        string
	Checkpoint     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against one web UI instance. It implements
// imagegen.Loader so the orchestrator can load it lazily.
type Client struct {
	baseURL    string
	sampler    string
	checkpoint string
	httpClient *http.Client
	logger     *infra.Logger
}

type generationParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps"`
	CfgScale       float64 `json:"cfg_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Seed           int     `json:"seed"`
	SamplerName    string  `json:"sampler_name,omitempty"`
	BatchSize      int     `json:"batch_size"`
	NIter          int     `json:"n_iter"`
}

type txt2imgRequest struct {
	generationParams
}

type img2imgRequest struct {
	generationParams
	InitImages        []string `json:"init_images"`
	DenoisingStrength float64  `json:"denoising_strength"`
}

type generationResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail"`
	Errors string `json:"errors"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sampler := strings.TrimSpace(opts.Sampler)
	if sampler == "" {
		sampler = defaultSampler
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		sampler:    sampler,
		checkpoint: strings.TrimSpace(opts.Checkpoint),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Load verifies the server is reachable and, when a checkpoint is
// configured, asks it to switch to that checkpoint.
func (c *Client) Load(ctx context.Context, family imagegen.Family) (imagegen.Pipeline, error) {
	var endpoint string
	switch family {
	case imagegen.FamilyTextToImage:
		endpoint = "/sdapi/v1/txt2img"
	case imagegen.FamilyImageToImage:
		endpoint = "/sdapi/v1/img2img"
	default:
		return nil, fmt.Errorf("sdwebui: unsupported family %q", family)
	}

	if c.checkpoint != "" {
		payload := map[string]string{"sd_model_checkpoint": c.checkpoint}
		if err := c.do(ctx, http.MethodPost, "/sdapi/v1/options", payload, nil); err != nil {
			return nil, fmt.Errorf("sdwebui: select checkpoint: %w", err)
		}
	} else {
		var opts map[string]any
		if err := c.do(ctx, http.MethodGet, "/sdapi/v1/options", nil, &opts); err != nil {
			return nil, fmt.Errorf("sdwebui: probe server: %w", err)
		}
	}
	c.logger.Info().
		Str("family", string(family)).
		Str("base_url", c.baseURL).
		Str("checkpoint", c.checkpoint).
		Msg("sdwebui: pipeline ready")
	return &pipeline{client: c, family: family, endpoint: endpoint}, nil
}

type pipeline struct {
	client   *Client
	family   imagegen.Family
	endpoint string
}

func (p *pipeline) Run(ctx context.Context, spec imagegen.GenerationSpec, source image.Image) ([]byte, error) {
	params := generationParams{
		Prompt:         spec.Prompt,
		NegativePrompt: spec.NegativePrompt,
		Steps:          spec.Steps,
		CfgScale:       spec.GuidanceScale,
		Width:          spec.Width,
		Height:         spec.Height,
		Seed:           spec.Seed,
		SamplerName:    p.client.sampler,
		BatchSize:      1,
		NIter:          1,
	}

	var payload any = txt2imgRequest{generationParams: params}
	if p.family == imagegen.FamilyImageToImage {
		if source == nil {
			return nil, errors.New("sdwebui: img2img requires a source image")
		}
		encoded, err := encodePNGBase64(source)
		if err != nil {
			return nil, err
		}
		payload = img2imgRequest{
			generationParams:  params,
			InitImages:        []string{encoded},
			DenoisingStrength: spec.Strength,
		}
	}

	start := time.Now()
	var out generationResponse
	if err := p.client.do(ctx, http.MethodPost, p.endpoint, payload, &out); err != nil {
		return nil, err
	}
	if len(out.Images) == 0 {
		return nil, ErrEmptyResponse
	}
	data, err := decodeImage(out.Images[0])
	if err != nil {
		return nil, err
	}
	p.client.logger.Debug().
		Str("family", string(p.family)).
		Int("steps", spec.Steps).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("sdwebui: generated image")
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("sdwebui: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("sdwebui: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sdwebui: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sdwebui: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			if msg := detail.message(); msg != "" {
				return fmt.Errorf("sdwebui: status %d: %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("sdwebui: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("sdwebui: decode response: %w", err)
	}
	return nil
}

func (e errorResponse) message() string {
	parts := []string{}
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	if e.Detail != nil {
		if d := fmt.Sprint(e.Detail); d != "" {
			parts = append(parts, d)
		}
	}
	if e.Errors != "" {
		parts = append(parts, e.Errors)
	}
	return strings.Join(parts, ": ")
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("sdwebui: encode source: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeImage accepts bare base64 as well as data URLs.
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if _, rest, ok := strings.Cut(encoded, ","); ok {
			encoded = rest
		}
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("sdwebui: decode image: %w", err)
	}
	return data, nil
}

var _ imagegen.Loader = (*Client)(nil)
