package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if checker, ok := a.store.(HealthChecker); ok {
		if err := checker.Health(r.Context()); err != nil {
			a.logger.Warn().Err(err).Msg("storage health check failed")
			a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
