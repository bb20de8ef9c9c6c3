package handler

import (
	"log/slog"
	"net/http"

	"github.com/boardadmin/boardadmin/internal/ui"
)

// Pinger is satisfied by *sqlx.DB
type Pinger interface {
	Ping() error
}

type HomeHandler struct {
	db Pinger
}

func NewHomeHandler(db Pinger) *HomeHandler {
	return &HomeHandler{db: db}
}

func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.Page("home", ui.NewView(r, "")))
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	notFound(w, r)
}

func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	err := h.db.Ping()
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	ui.RenderStatus(w, r, http.StatusNotFound, ui.Page("not_found", ui.NewView(r, "Not found")))
}
