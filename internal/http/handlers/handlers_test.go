package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylegen/internal/domain"
	"stylegen/internal/imagegen"
	"stylegen/internal/middleware"
	"stylegen/internal/postprocess"
	"stylegen/internal/results"
	"stylegen/internal/storage"
	"stylegen/internal/style"
)

type stubGenerator struct {
	mu   sync.Mutex
	reqs []imagegen.GenerationRequest
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, req imagegen.GenerationRequest) (*imagegen.Result, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	mode := postprocess.ModeGenerate
	if req.IsImageToImage() {
		mode = postprocess.ModeRestyle
	}
	id, _ := style.Lookup(req.Style)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})
	return &imagegen.Result{
		Image:    img,
		Spec:     imagegen.GenerationSpec{Prompt: req.Prompt, Style: id, Width: 4, Height: 4},
		Mode:     mode,
		Duration: 1500 * time.Millisecond,
	}, nil
}

func (s *stubGenerator) last(t *testing.T) imagegen.GenerationRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.reqs)
	return s.reqs[len(s.reqs)-1]
}

type stubUploads struct {
	statuses []string
}

func (s *stubUploads) ObserveUpload(_ string, status string, _ int64) {
	s.statuses = append(s.statuses, status)
}

type fixture struct {
	app     *App
	gen     *stubGenerator
	store   *storage.FileStore
	uploads *stubUploads
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	gen := &stubGenerator{}
	uploads := &stubUploads{}
	app := NewApp(Options{
		Generator:      gen,
		Store:          store,
		Results:        results.NewCache(time.Minute),
		Uploads:        uploads,
		Logger:         zerolog.Nop(),
		BaseURL:        "http://localhost:8080/",
		MaxUploadBytes: 1 << 20,
	})
	app.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	app.newID = func() string { return "0123456789abcdef" }

	r := chi.NewRouter()
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/styles", app.ListStyles)
	r.Get("/v1/uploads", app.ListUploads)
	r.Get("/v1/results/{id}", app.GetResult)
	r.Post("/v1/generate", app.Generate)
	r.Post("/v1/upload", app.Upload)
	r.Post("/v1/apply_style", app.ApplyStyle)
	r.Post("/v1/random_image", app.RandomImage)
	r.Get("/uploads/{name}", app.ServeUpload)
	r.Get("/generated/{name}", app.ServeGenerated)

	return &fixture{app: app, gen: gen, store: store, uploads: uploads, router: r}
}

func (f *fixture) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	payload := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngWithHeaderSize encodes a 1x1 PNG and rewrites IHDR to claim w x h.
func pngWithHeaderSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" || field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestGenerateRequiresPrompt(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodPost, "/v1/generate", map[string]any{"style": "anime"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Prompt is required", payload["message"])
}

func TestGenerateStoresAndReturnsImage(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodPost, "/v1/generate", map[string]any{
		"prompt": "A red fox, at dawn!", "style": "ghibli", "film": "totoro", "width": 640, "height": 480,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Image generated successfully", payload["message"])
	assert.Equal(t, "1.50", payload["generation_time"])
	assert.Equal(t, "0123456789abcdef", payload["id"])

	raw, err := base64.StdEncoding.DecodeString(payload["image"].(string))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	key := "generated/A_red_fox__at_dawn__1700000000_01234567.png"
	assert.Equal(t, "http://localhost:8080/"+key, payload["url"])
	stored, err := f.store.Read(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	req := f.gen.last(t)
	assert.Equal(t, "totoro", req.StyleOptions.Film)
	assert.Equal(t, 640, req.Width)
	assert.Nil(t, req.Source)
}

func TestGenerateUsesMiddlewareRequestID(t *testing.T) {
	f := newFixture(t)
	body := strings.NewReader(`{"prompt":"a lighthouse","style":"anime"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.ContextWithRequestID(req.Context(), "req-feedbeef42"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "req-feedbeef42", payload["id"])
	assert.Equal(t, "req-feedbeef42", f.gen.last(t).ID)
	assert.Contains(t, payload["url"], "_req-feed.png")
}

func TestGenerateMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", fmt.Errorf("%w: bad", domain.ErrInvalidRequest), http.StatusBadRequest},
		{"backend", fmt.Errorf("%w: down", domain.ErrBackendFailure), http.StatusBadGateway},
		{"postprocess", fmt.Errorf("%w: oops", domain.ErrPostProcessing), http.StatusInternalServerError},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.gen.err = tc.err
			rec, payload := f.do(t, http.MethodPost, "/v1/generate", map[string]any{"prompt": "x"})
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, false, payload["success"])
			if tc.status == http.StatusBadGateway {
				assert.Equal(t, "Error generating image", payload["message"])
			}
		})
	}
}

func TestApplyStyleNeedsFilenameOrPrompt(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{"style": "anime"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Either filename or prompt is required", payload["message"])
}

func TestApplyStylePromptOnlyGenerates(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{
		"prompt": "castle", "style": "fantasy", "instructions": "at night",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Image generated successfully", payload["message"])

	req := f.gen.last(t)
	assert.Nil(t, req.Source)
	assert.Equal(t, "at night", req.Instructions)
}

func TestApplyStyleMissingFile(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{"filename": "nope.png", "style": "anime"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found: nope.png", payload["message"])
}

func TestApplyStyleRestylesUpload(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(context.Background(), "uploads/abc_cat.png", pngBytes(t, 6, 5))
	require.NoError(t, err)

	rec, payload := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{
		"filename": "../uploads/abc_cat.png", "style": "pixel_art", "pixel_size": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Style applied successfully", payload["message"])
	assert.Equal(t, "http://localhost:8080/generated/pixel_art_image_1700000000_01234567.png", payload["url"])

	req := f.gen.last(t)
	require.NotNil(t, req.Source)
	assert.Equal(t, 6, req.Source.Bounds().Dx())
	assert.Equal(t, 4, req.StyleOptions.PixelSize)
}

func TestApplyStyleRejectsUndecodableUpload(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(context.Background(), "uploads/bad.png", []byte("not an image"))
	require.NoError(t, err)

	rec, _ := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{"filename": "bad.png"})
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplyStyleRejectsOversizedDimensions(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(context.Background(), "uploads/huge.png", pngWithHeaderSize(t, 60000, 60000))
	require.NoError(t, err)

	rec, payload := f.do(t, http.MethodPost, "/v1/apply_style", map[string]any{"filename": "huge.png", "style": "anime"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Uploaded image dimensions are too large", payload["message"])
	assert.Empty(t, f.gen.reqs)
}

func TestRandomImageUsesFixedLists(t *testing.T) {
	f := newFixture(t)
	f.app.intn = func(n int) int { return n - 1 }

	rec, payload := f.do(t, http.MethodPost, "/v1/random_image", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Random image generated successfully", payload["message"])
	assert.Equal(t, "A bustling city street in the rain", payload["prompt"])
	assert.Equal(t, "fantasy", payload["style"])
	assert.Len(t, randomPrompts, 15)
	assert.Len(t, randomStyles, 8)
}

func TestUploadFlow(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartBody(t, "file", "My Cät (1).png", pngBytes(t, 2, 2))
	req := httptest.NewRequest(http.MethodPost, "/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasSuffix(resp.Filename, "_My_Cat_1.png"), resp.Filename)
	assert.Equal(t, "uploads/"+resp.Filename, resp.Filepath)
	assert.Equal(t, []string{"ok"}, f.uploads.statuses)

	listRec, listPayload := f.do(t, http.MethodGet, "/v1/uploads", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	files := listPayload["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "/uploads/"+resp.Filename, files[0].(map[string]any)["path"])

	serveRec := httptest.NewRecorder()
	f.router.ServeHTTP(serveRec, httptest.NewRequest(http.MethodGet, "/uploads/"+resp.Filename, nil))
	assert.Equal(t, http.StatusOK, serveRec.Code)
	assert.Equal(t, "image/png", serveRec.Header().Get("Content-Type"))
}

func TestUploadRejections(t *testing.T) {
	cases := []struct {
		name     string
		field    string
		filename string
		data     []byte
		message  string
	}{
		{"wrong field", "image", "a.png", []byte("x"), "No file part"},
		{"empty name", "file", "", []byte("x"), "No file part"},
		{"extension", "file", "a.txt", []byte("hello"), notAllowedMessage},
		{"sniffed type", "file", "a.png", []byte("hello world, plain text"), notAllowedMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			body, contentType := multipartBody(t, tc.field, tc.filename, tc.data)
			req := httptest.NewRequest(http.MethodPost, "/v1/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var payload map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.Equal(t, tc.message, payload["message"])
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture(t)
	f.app.maxUploadBytes = 1024
	body, contentType := multipartBody(t, "file", "big.png", bytes.Repeat([]byte{1}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestResultLookup(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/v1/results/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	genRec, _ := f.do(t, http.MethodPost, "/v1/generate", map[string]any{"prompt": "boat", "style": "watercolor"})
	require.Equal(t, http.StatusOK, genRec.Code)

	rec, payload := f.do(t, http.MethodGet, "/v1/results/0123456789abcdef", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := payload["result"].(map[string]any)
	assert.Equal(t, "generate", result["mode"])
	assert.Equal(t, "watercolor", result["style"])
}

func TestListStyles(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodGet, "/v1/styles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["styles"].([]any), len(style.All))
	options := payload["options"].(map[string]any)
	assert.Contains(t, options["film"], "totoro")
}

func TestServeGeneratedMissing(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generated/none.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, payload := f.do(t, http.MethodGet, "/v1/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}
