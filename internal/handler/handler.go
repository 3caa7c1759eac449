// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/sola-table/internal/auth"
	"github.com/Shivanand-hulikatti/sola-table/internal/calendar"
	"github.com/Shivanand-hulikatti/sola-table/internal/model"
	"github.com/Shivanand-hulikatti/sola-table/internal/service"
)

// TableHandler serves the routes of one record kind.
type TableHandler struct {
	svc  *service.TableService
	kind model.Kind
	log  *slog.Logger
}

// NewTableHandler constructs a TableHandler for kind.
func NewTableHandler(svc *service.TableService, kind model.Kind, log *slog.Logger) *TableHandler {
	return &TableHandler{svc: svc, kind: kind, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps a service error onto its HTTP status and error code.
func (h *TableHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		writeError(w, statusFor(domainErr.Code), domainErr.Message, domainErr.Name())
		return
	}

	h.log.ErrorContext(r.Context(), "request failed",
		slog.String("kind", string(h.kind)),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func statusFor(code model.Code) int {
	switch code {
	case model.CodeInvalidInput:
		return http.StatusBadRequest
	case model.CodeOrganizerCannotJoin:
		return http.StatusForbidden
	case model.CodeNotFound:
		return http.StatusNotFound
	case model.CodeFull, model.CodeExpired, model.CodeAlreadyJoined:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Create handles POST /tables and POST /meetups.
// The authenticated caller becomes the organizer.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizer, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "Unauthenticated")
		return
	}

	var req model.CreateTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), string(model.CodeInvalidInput))
		return
	}

	t, err := h.svc.Create(r.Context(), h.kind, organizer, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// List handles GET /tables and GET /meetups.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.List(r.Context(), h.kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if tables == nil {
		tables = []model.Table{}
	}

	writeJSON(w, http.StatusOK, tables)
}

// Get handles GET /{kind}s/{id}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Join handles POST /{kind}s/{id}/join.
// The authenticated caller is the joining participant.
func (h *TableHandler) Join(w http.ResponseWriter, r *http.Request) {
	participant, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "Unauthenticated")
		return
	}

	t, err := h.svc.Join(r.Context(), h.kind, chi.URLParam(r, "id"), participant)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Participants handles GET /{kind}s/{id}/participants.
func (h *TableHandler) Participants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.Participants(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if participants == nil {
		participants = []string{}
	}

	writeJSON(w, http.StatusOK, participants)
}

// Calendar handles GET /{kind}s/{id}/calendar.ics.
func (h *TableHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.ID+`.ics"`)
	if err := calendar.Encode(w, t, h.svc.Now()); err != nil {
		h.log.ErrorContext(r.Context(), "calendar export failed",
			slog.String("table_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
