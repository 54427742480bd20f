package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

const notAllowedMessage = "File type not allowed. Please upload PNG, JPG, JPEG, or GIF files."

type uploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	URL      string `json:"url"`
}

type uploadEntry struct {
	Filename string  `json:"filename"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
}

func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > a.maxUploadBytes {
		a.observeUpload("unknown", "too_large", 0)
		a.error(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.observeUpload("unknown", "too_large", 0)
			a.error(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "No file part")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		a.error(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !allowedFile(header.Filename) {
		a.observeUpload("unknown", "rejected", 0)
		a.error(w, http.StatusBadRequest, notAllowedMessage)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	detected := mimetype.Detect(data)
	if !detected.Is(allowedMIME[0]) && !detected.Is(allowedMIME[1]) && !detected.Is(allowedMIME[2]) {
		a.observeUpload(detected.String(), "rejected", int64(len(data)))
		a.error(w, http.StatusBadRequest, notAllowedMessage)
		return
	}

	key, name := uploadKey(header.Filename)
	stored, err := a.store.Write(r.Context(), key, data)
	if err != nil {
		a.logger.Error().Err(err).Str("key", key).Msg("store upload")
		a.observeUpload(detected.String(), "error", int64(len(data)))
		a.error(w, http.StatusInternalServerError, "Could not store uploaded file")
		return
	}
	a.observeUpload(detected.String(), "ok", int64(len(data)))

	a.json(w, http.StatusOK, uploadResponse{
		Success:  true,
		Message:  "File successfully uploaded",
		Filename: name,
		Filepath: stored,
		URL:      a.fileURL(stored),
	})
}

func (a *App) ListUploads(w http.ResponseWriter, r *http.Request) {
	objects, err := a.store.List(r.Context(), uploadsPrefix)
	if err != nil {
		a.logger.Error().Err(err).Msg("list uploads")
		a.error(w, http.StatusInternalServerError, "Could not list uploads")
		return
	}
	files := make([]uploadEntry, 0, len(objects))
	for _, obj := range objects {
		name := path.Base(obj.Key)
		if !allowedFile(name) {
			continue
		}
		files = append(files, uploadEntry{
			Filename: name,
			Path:     "/" + uploadsPrefix + "/" + name,
			Size:     obj.Size,
			Modified: float64(obj.Modified.UnixNano()) / 1e9,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "files": files})
}
