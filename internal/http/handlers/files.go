package handlers

import (
	"errors"
	"net/http"
	"path"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"stylegen/internal/domain"
)

// ServeUpload returns the raw bytes of an uploaded file.
func (a *App) ServeUpload(w http.ResponseWriter, r *http.Request) {
	a.serveStored(w, r, uploadsPrefix)
}

// ServeGenerated returns the raw bytes of a generated image.
func (a *App) ServeGenerated(w http.ResponseWriter, r *http.Request) {
	a.serveStored(w, r, generatedPrefix)
}

func (a *App) serveStored(w http.ResponseWriter, r *http.Request, prefix string) {
	name := storedName(chi.URLParam(r, "name"))
	if name == "" {
		a.error(w, http.StatusNotFound, "file not found")
		return
	}
	data, err := a.store.Read(r.Context(), path.Join(prefix, name))
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("name", name).Msg("read stored file")
		a.error(w, http.StatusInternalServerError, "could not read file")
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
