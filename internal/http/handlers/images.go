package handlers

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
	"net/url"
	"path"
	"time"

	"stylegen/internal/domain"
	"stylegen/internal/imagegen"
	"stylegen/internal/middleware"
	"stylegen/internal/postprocess"
	"stylegen/internal/results"
	"stylegen/internal/style"
)

// styleFields are the optional style knobs shared by the generation routes.
type styleFields struct {
	Style      string `json:"style"`
	Film       string `json:"film"`
	Scene      string `json:"scene"`
	Era        string `json:"era"`
	Game       string `json:"game"`
	PixelSize  int    `json:"pixel_size"`
	ColorCount int    `json:"color_count"`
}

func (f styleFields) options() style.Options {
	return style.Options{
		Film:       f.Film,
		Scene:      f.Scene,
		Era:        f.Era,
		Game:       f.Game,
		PixelSize:  f.PixelSize,
		ColorCount: f.ColorCount,
	}
}

type generateRequest struct {
	styleFields
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type applyStyleRequest struct {
	styleFields
	Filename     string `json:"filename"`
	Prompt       string `json:"prompt"`
	Instructions string `json:"instructions"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type randomImageRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ID             string `json:"id"`
	Image          string `json:"image"`
	URL            string `json:"url"`
	GenerationTime string `json:"generation_time"`
	Prompt         string `json:"prompt,omitempty"`
	Style          string `json:"style,omitempty"`
}

var randomPrompts = []string{
	"A peaceful mountain landscape at sunset",
	"A futuristic cyberpunk city at night with neon lights",
	"An underwater scene with colorful coral reef and fish",
	"A fantasy castle in the clouds",
	"A cozy cottage in a forest clearing",
	"A tropical beach paradise with palm trees",
	"A space station orbiting a distant planet",
	"An ancient temple hidden in the jungle",
	"A steampunk airship floating in the sky",
	"A winter wonderland with snow-covered trees",
	"A magical fairy garden with glowing mushrooms",
	"A medieval village market scene",
	"A desert oasis with camels and palm trees",
	"A rustic farm with fields of wheat at golden hour",
	"A bustling city street in the rain",
}

var randomStyles = []style.ID{
	style.Realistic, style.Anime, style.Ghibli, style.OilPainting,
	style.Watercolor, style.PixelArt, style.Cyberpunk, style.Fantasy,
}

type outcomeMessages struct {
	success string
	failure string
}

var (
	generateMessages = outcomeMessages{"Image generated successfully", "Error generating image"}
	restyleMessages  = outcomeMessages{"Style applied successfully", "Error applying style to image"}
	randomMessages   = outcomeMessages{"Random image generated successfully", "Error generating random image"}
)

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	a.run(w, r, imagegen.GenerationRequest{
		Prompt:       req.Prompt,
		Style:        req.Style,
		StyleOptions: req.options(),
		Width:        req.Width,
		Height:       req.Height,
	}, generateMessages, nil)
}

func (a *App) ApplyStyle(w http.ResponseWriter, r *http.Request) {
	var req applyStyleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Filename == "" && req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "Either filename or prompt is required")
		return
	}

	genReq := imagegen.GenerationRequest{
		Prompt:       req.Prompt,
		Style:        req.Style,
		StyleOptions: req.options(),
		Instructions: req.Instructions,
		Width:        req.Width,
		Height:       req.Height,
	}
	if req.Filename == "" {
		a.run(w, r, genReq, generateMessages, nil)
		return
	}

	name := storedName(req.Filename)
	if name == "" {
		a.error(w, http.StatusNotFound, "File not found: "+req.Filename)
		return
	}
	data, err := a.store.Read(r.Context(), path.Join(uploadsPrefix, name))
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "File not found: "+req.Filename)
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("filename", name).Msg("read upload")
		a.error(w, http.StatusInternalServerError, restyleMessages.failure)
		return
	}
	src, err := postprocess.Decode(data)
	if errors.Is(err, postprocess.ErrImageTooLarge) {
		a.logger.Warn().Err(err).Str("filename", name).Msg("upload exceeds pixel limit")
		a.error(w, http.StatusRequestEntityTooLarge, "Uploaded image dimensions are too large")
		return
	}
	if err != nil {
		a.logger.Warn().Err(err).Str("filename", name).Msg("decode upload")
		a.error(w, http.StatusUnsupportedMediaType, "Uploaded file is not a readable image")
		return
	}
	genReq.Source = src
	a.run(w, r, genReq, restyleMessages, nil)
}

func (a *App) RandomImage(w http.ResponseWriter, r *http.Request) {
	var req randomImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	prompt := randomPrompts[a.intn(len(randomPrompts))]
	chosen := randomStyles[a.intn(len(randomStyles))]
	a.run(w, r, imagegen.GenerationRequest{
		Prompt: prompt,
		Style:  string(chosen),
		Width:  req.Width,
		Height: req.Height,
	}, randomMessages, func(resp *generationResponse) {
		resp.Prompt = prompt
		resp.Style = string(chosen)
	})
}

// run executes the request under the concurrency bound, persists the PNG and
// writes the JSON envelope.
func (a *App) run(w http.ResponseWriter, r *http.Request, req imagegen.GenerationRequest, msgs outcomeMessages, decorate func(*generationResponse)) {
	ctx := r.Context()
	req.ID = middleware.RequestIDFromContext(ctx)
	if req.ID == "" {
		req.ID = a.newID()
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		a.error(w, http.StatusServiceUnavailable, "server busy, try again later")
		return
	}
	res, err := a.gen.Generate(ctx, req)
	a.sem.Release(1)
	if err != nil {
		status := statusFor(err)
		a.logger.Warn().Err(err).Str("request_id", req.ID).Int("status", status).Msg("generation failed")
		message := msgs.failure
		if status == http.StatusBadRequest {
			message = err.Error()
		}
		a.error(w, status, message)
		return
	}

	if res == nil {
		a.error(w, http.StatusInternalServerError, msgs.failure)
		return
	}
	encoded, err := encodePNG(res.Image)
	if err != nil {
		a.logger.Error().Err(err).Str("request_id", req.ID).Msg("encode result")
		a.error(w, http.StatusInternalServerError, msgs.failure)
		return
	}

	key := a.resultKey(req, res)
	stored, err := a.store.Write(ctx, key, encoded)
	if err != nil {
		// The image is still returned inline when persisting fails.
		a.logger.Error().Err(err).Str("key", key).Msg("persist result")
		stored = ""
	}
	link := a.fileURL(stored)

	elapsed := res.Duration
	a.results.Put(results.Record{
		ID:             req.ID,
		Mode:           res.Mode.String(),
		Style:          string(res.Spec.Style),
		Key:            stored,
		URL:            link,
		Spec:           res.Spec,
		BackendSkipped: res.BackendSkipped,
		GenerationTime: elapsed.Seconds(),
		CreatedAt:      a.now().UTC(),
	})

	resp := generationResponse{
		Success:        true,
		Message:        msgs.success,
		ID:             req.ID,
		Image:          base64.StdEncoding.EncodeToString(encoded),
		URL:            link,
		GenerationTime: formatSeconds(elapsed),
	}
	if decorate != nil {
		decorate(&resp)
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) resultKey(req imagegen.GenerationRequest, res *imagegen.Result) string {
	ts := a.now().Unix()
	suffix := req.ID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if res.Mode == postprocess.ModeRestyle {
		name := string(res.Spec.Style)
		if name == "" {
			name = "styled"
		}
		return path.Join(generatedPrefix, fmt.Sprintf("%s_image_%d_%s.png", name, ts, suffix))
	}
	return path.Join(generatedPrefix, fmt.Sprintf("%s_%d_%s.png", promptFileStem(req.Prompt), ts, suffix))
}

func (a *App) fileURL(key string) string {
	if key == "" {
		return ""
	}
	dir, name := path.Split(key)
	return a.baseURL + "/" + dir + url.PathEscape(name)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrBackendFailure):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func encodePNG(img *image.NRGBA) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: empty result image", domain.ErrPostProcessing)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", domain.ErrPostProcessing, err)
	}
	return buf.Bytes(), nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
