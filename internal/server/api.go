// ABOUTME: HTTP handlers for the bookmark, validation, and server-path endpoints
// ABOUTME: Maps store and Workflowy errors to human-readable JSON error strings

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/workflowy"
)

// ValidateKeyRequest is the JSON request body for POST /api/validate-key.
type ValidateKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ValidateKeyResponse is the JSON response for a successful validation.
type ValidateKeyResponse struct {
	Valid bool `json:"valid"`
}

// UpdateContextRequest is the JSON request body for PUT /api/bookmarks/{name}/context.
// A null (or absent) context clears the annotation.
type UpdateContextRequest struct {
	Context *string `json:"context"`
}

// ServerPathResponse is the JSON response for GET /api/server-path.
type ServerPathResponse struct {
	Path string `json:"path"`
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleBookmarks handles GET /api/bookmarks requests.
// An absent database file answers with an empty array, not an error.
func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	bookmarks, err := s.store.ListBookmarks(r.Context())
	if err != nil {
		s.requestLogger(r).Error("listing bookmarks failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmarks)
}

// handleBookmarkRoutes dispatches /api/bookmarks/{name} and
// /api/bookmarks/{name}/context.
func (s *Server) handleBookmarkRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/bookmarks/")

	if name, ok := strings.CutSuffix(rest, "/context"); ok && name != "" {
		s.handleUpdateContext(w, r, name)
		return
	}

	if rest == "" || strings.Contains(rest, "/") {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}
	s.handleDeleteBookmark(w, r, rest)
}

// handleDeleteBookmark handles DELETE /api/bookmarks/{name}.
// A name that matches no row still succeeds; only a missing database file
// is an error.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.DeleteBookmark(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			s.sendJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		s.requestLogger(r).Error("deleting bookmark failed", "name", name, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateContext handles PUT /api/bookmarks/{name}/context.
func (s *Server) handleUpdateContext(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req UpdateContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.UpdateContext(r.Context(), name, req.Context); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			s.sendJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		s.requestLogger(r).Error("updating bookmark context failed", "name", name, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleValidateKey handles POST /api/validate-key.
// A rejected key answers 401 with the upstream status and body in the
// message; a transport failure answers 502. Both carry a displayable
// error string.
func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ValidateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := s.workflowy.ValidateAPIKey(r.Context(), req.APIKey)
	if err != nil {
		var apiErr *workflowy.APIError
		if errors.As(err, &apiErr) {
			s.sendJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.requestLogger(r).Error("key validation transport failure", "error", err)
		s.sendJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ValidateKeyResponse{Valid: valid})
}

// handleServerPath handles GET /api/server-path.
// Returns the helper script path without checking it exists; callers that
// launch the helper find out then.
func (s *Server) handleServerPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ServerPathResponse{Path: s.ServerPath()})
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
