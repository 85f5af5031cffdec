package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/replay", h.ReplayHandler)
	r.Get("/runs/{runId}", h.GetRunHandler)

	return r
}
