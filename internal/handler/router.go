package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/sola-table/internal/auth"
	"github.com/Shivanand-hulikatti/sola-table/internal/model"
	"github.com/Shivanand-hulikatti/sola-table/internal/service"
)

// NewRouter builds the HTTP API. Both record kinds share the same handlers and
// differ only in their mount point.
func NewRouter(svc *service.TableService, verifier *auth.Verifier, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)

	// Health
	r.Get("/health", HealthCheck)

	authenticate := Authenticate(verifier)
	for _, kind := range []model.Kind{model.KindTable, model.KindMeetup} {
		h := NewTableHandler(svc, kind, log)
		r.Route("/"+string(kind)+"s", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Get("/{id}/participants", h.Participants)
			r.Get("/{id}/calendar.ics", h.Calendar)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", h.Create)
				r.Post("/{id}/join", h.Join)
			})
		})
	}

	return r
}
