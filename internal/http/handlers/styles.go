package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stylegen/internal/domain"
	"stylegen/internal/style"
)

func (a *App) ListStyles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"styles":  style.Catalog(),
		"options": map[string][]string{
			"film":  style.GhibliFilms(),
			"scene": style.GhibliScenes(),
			"era":   style.PixelEras(),
			"game":  style.PixelGames(),
		},
	})
}

func (a *App) GetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := a.results.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "could not load result")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "result": rec})
}
