package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// URIResponse is the response body for a resolved token URI
type URIResponse struct {
	TokenID string `json:"token_id"`
	URI     string `json:"uri"`
}

// TokenConfigResponse is the response body for a token's stored configuration
type TokenConfigResponse struct {
	TokenID      string `json:"token_id"`
	ExplicitURI  string `json:"explicit_uri,omitempty"`
	BaseURI      string `json:"base_uri,omitempty"`
	UseIDInPath  bool   `json:"use_id_in_path"`
	IsConfigured bool   `json:"is_configured"`
}

// SetBaseURIRequest is the request body for configuring a per-token base path
type SetBaseURIRequest struct {
	BaseURI     string `json:"base_uri"`
	UseIDInPath bool   `json:"use_id_in_path"`
}

// SetURIRequest is the request body for setting an explicit URI override
type SetURIRequest struct {
	URI string `json:"uri"`
}

// BatchSetURIsRequest is the request body for assigning explicit URIs in bulk.
// TokenIDs and URIs are parallel slices and must have the same length.
type BatchSetURIsRequest struct {
	TokenIDs []tokenmeta.TokenID `json:"token_ids"`
	URIs     []string            `json:"uris"`
}

// PublishMetadataResponse is the response body after publishing a metadata document
type PublishMetadataResponse struct {
	TokenID string `json:"token_id"`
	URL     string `json:"url,omitempty"`
}

// TokenHandler handles HTTP requests for per-token URI configuration
type TokenHandler struct {
	service tokenmeta.Service
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(service tokenmeta.Service) *TokenHandler {
	return &TokenHandler{service: service}
}

// Routes returns the routes for tokens
func (h *TokenHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{tokenID}/uri", h.ResolveURI)
	r.Get("/{tokenID}/config", h.GetConfig)
	r.Put("/{tokenID}/base-uri", h.SetBaseURI)
	r.Put("/{tokenID}/uri", h.SetURI)
	r.Delete("/{tokenID}/uri", h.ClearURI)
	r.Post("/uris", h.SetURIBatch)

	// Routes for metadata documents
	r.Put("/{tokenID}/metadata", h.PublishMetadata)
	r.Get("/{tokenID}/metadata", h.GetMetadata)
	r.Delete("/{tokenID}/metadata", h.DeleteMetadata)
	r.Get("/{tokenID}/metadata/url", h.GetMetadataURL)
	r.Get("/{tokenID}/metadata/upload-url", h.GetMetadataUploadURL)

	return r
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, tokenmeta.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, tokenmeta.ErrLengthMismatch):
		return http.StatusBadRequest
	case errors.Is(err, tokenmeta.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tokenmeta.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, tokenmeta.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, tokenmeta.ErrDocumentStoreNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ResolveURI resolves the metadata URI for a token
func (h *TokenHandler) ResolveURI(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	uri, err := h.service.ResolveTokenURI(r.Context(), id)
	if err != nil {
		slog.Error("Failed to resolve token URI", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, URIResponse{TokenID: idStr, URI: uri})
}

// GetConfig retrieves the stored configuration for a token
func (h *TokenHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	cfg, err := h.service.GetTokenURIConfig(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get token config", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, TokenConfigResponse{
		TokenID:      idStr,
		ExplicitURI:  cfg.ExplicitURI,
		BaseURI:      cfg.BaseURI,
		UseIDInPath:  cfg.UseIDInPath,
		IsConfigured: cfg.IsConfigured,
	})
}

// SetBaseURI configures a per-token base path
func (h *TokenHandler) SetBaseURI(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	var req SetBaseURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetTokenBaseURI(r.Context(), id, req.BaseURI, req.UseIDInPath); err != nil {
		slog.Error("Failed to set token base URI", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Token base URI set", "token_id", idStr, "use_id_in_path", req.UseIDInPath)
	w.WriteHeader(http.StatusNoContent)
}

// SetURI sets an explicit URI override for a token
func (h *TokenHandler) SetURI(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	var req SetURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetTokenURI(r.Context(), id, req.URI); err != nil {
		slog.Error("Failed to set token URI", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Token URI set", "token_id", idStr)
	w.WriteHeader(http.StatusNoContent)
}

// ClearURI removes the explicit URI override for a token
func (h *TokenHandler) ClearURI(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	if err := h.service.ClearTokenURI(r.Context(), id); err != nil {
		slog.Error("Failed to clear token URI", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Token URI cleared", "token_id", idStr)
	w.WriteHeader(http.StatusNoContent)
}

// SetURIBatch assigns explicit URIs to many tokens in one call
func (h *TokenHandler) SetURIBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchSetURIsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetTokenURIBatch(r.Context(), req.TokenIDs, req.URIs); err != nil {
		slog.Error("Failed to set token URIs", "count", len(req.TokenIDs), "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Token URIs set", "count", len(req.TokenIDs))
	w.WriteHeader(http.StatusNoContent)
}

// PublishMetadata stores a metadata document for a token
func (h *TokenHandler) PublishMetadata(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	var metadata tokenmeta.TokenMetadata
	if err := json.NewDecoder(r.Body).Decode(&metadata); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.PublishTokenMetadata(r.Context(), tokenmeta.PublishTokenMetadataRequest{
		TokenID:  id,
		Metadata: metadata,
	}); err != nil {
		slog.Error("Failed to publish token metadata", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	resp := PublishMetadataResponse{TokenID: idStr}

	// The document URL is best effort: backends without stable URLs serve
	// documents through the metadata endpoint instead.
	url, err := h.service.GetTokenMetadataURL(r.Context(), id)
	if err != nil {
		slog.Warn("No download URL for published metadata", "token_id", idStr)
	} else {
		resp.URL = url
	}

	slog.Info("Token metadata published", "token_id", idStr)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// GetMetadata retrieves the stored metadata document for a token
func (h *TokenHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	metadata, err := h.service.GetTokenMetadata(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get token metadata", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, metadata)
}

// DeleteMetadata removes the stored metadata document for a token
func (h *TokenHandler) DeleteMetadata(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTokenMetadata(r.Context(), id); err != nil {
		slog.Error("Failed to delete token metadata", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	slog.Info("Token metadata deleted", "token_id", idStr)
	w.WriteHeader(http.StatusNoContent)
}

// GetMetadataURL returns the download URL for a token's metadata document
func (h *TokenHandler) GetMetadataURL(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	url, err := h.service.GetTokenMetadataURL(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get metadata URL", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, map[string]string{"url": url})
}

// GetMetadataUploadURL returns a presigned upload URL for a token's metadata document
func (h *TokenHandler) GetMetadataUploadURL(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "tokenID")
	id, err := tokenmeta.ParseTokenID(idStr)
	if err != nil {
		slog.Error("Invalid token ID", "token_id", idStr, "error", err)
		http.Error(w, "Invalid token ID", http.StatusBadRequest)
		return
	}

	url, err := h.service.GetTokenMetadataUploadURL(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get metadata upload URL", "token_id", idStr, "error", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	render.JSON(w, r, map[string]string{"url": url})
}
