package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/admin"
)

const maxTokensPerPage = 1000

// AdminHandler handles HTTP requests for operational queries
type AdminHandler struct {
	service admin.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service admin.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns the admin routes
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/tokens", h.ListTokens)
	r.Get("/tokens/count", h.CountTokens)
	r.Get("/tokens/stats", h.GetStats)

	return r
}

// ListTokens lists stored token configuration records
// Query parameters:
//   - after_id: resume after this token id (keyset cursor)
//   - limit: page size (default 100, max 1000)
func (h *AdminHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	var filters admin.TokenFilters

	if afterStr := r.URL.Query().Get("after_id"); afterStr != "" {
		after, err := tokenmeta.ParseTokenID(afterStr)
		if err != nil {
			slog.Error("Invalid after_id", "after_id", afterStr, "error", err)
			http.Error(w, "Invalid after_id", http.StatusBadRequest)
			return
		}
		filters.AfterID = &after
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > maxTokensPerPage {
			slog.Error("Invalid limit", "limit", limitStr)
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filters.Limit = &limit
	}

	resp, err := h.service.ListConfiguredTokens(r.Context(), admin.ListTokensRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to list token configs", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, resp)
}

// CountTokens returns the number of stored configuration records
func (h *AdminHandler) CountTokens(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CountConfiguredTokens(r.Context())
	if err != nil {
		slog.Error("Failed to count token configs", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, resp)
}

// GetStats returns aggregated configuration statistics
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetStatistics(r.Context())
	if err != nil {
		slog.Error("Failed to get token config statistics", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, resp)
}
