package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// CollectionResponse is the response body for collection-wide configuration
type CollectionResponse struct {
	DefaultBaseURI string `json:"default_base_uri"`
	MetadataURI    string `json:"metadata_uri"`
}

// SetMetadataURIRequest is the request body for updating the contract-level
// metadata URI. An empty value is allowed and clears it.
type SetMetadataURIRequest struct {
	URI string `json:"uri"`
}

// CollectionHandler handles HTTP requests for collection-wide configuration
type CollectionHandler struct {
	service tokenmeta.Service
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(service tokenmeta.Service) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// Routes returns the routes for the collection
func (h *CollectionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetConfig)
	r.Get("/metadata-uri", h.GetMetadataURI)
	r.Put("/metadata-uri", h.SetMetadataURI)

	return r
}

// GetConfig retrieves the collection-wide configuration
func (h *CollectionHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetCollectionConfig(r.Context())
	if err != nil {
		slog.Error("Failed to get collection config", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, CollectionResponse{
		DefaultBaseURI: cfg.DefaultBaseURI,
		MetadataURI:    cfg.MetadataURI,
	})
}

// GetMetadataURI retrieves the contract-level metadata URI
func (h *CollectionHandler) GetMetadataURI(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetCollectionConfig(r.Context())
	if err != nil {
		slog.Error("Failed to get collection config", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, map[string]string{"uri": cfg.MetadataURI})
}

// SetMetadataURI updates the contract-level metadata URI
func (h *CollectionHandler) SetMetadataURI(w http.ResponseWriter, r *http.Request) {
	var req SetMetadataURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetCollectionMetadataURI(r.Context(), req.URI); err != nil {
		slog.Error("Failed to set collection metadata URI", "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Collection metadata URI set")
	w.WriteHeader(http.StatusNoContent)
}
