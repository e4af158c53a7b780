package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/packhub/packhub/pkg/errors"
	"github.com/packhub/packhub/pkg/graph"
	"github.com/packhub/packhub/pkg/hierarchy"
	"github.com/packhub/packhub/pkg/manifest"
	"github.com/packhub/packhub/pkg/store"
)

// defaultListLimit applies when the limit query parameter is absent.
const defaultListLimit = 50

// manifestView is the client-facing manifest. The raw pages list stays
// server-internal; clients see pages only through packs and the graph.
type manifestView struct {
	SchemaVersion string          `json:"schema_version"`
	LastUpdated   string          `json:"last_updated"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Author        string          `json:"author"`
	Packs         []manifest.Pack `json:"packs"`
}

// bundleEnvelope is the manifest endpoint's response body.
type bundleEnvelope struct {
	Manifest  manifestView    `json:"manifest"`
	Hierarchy *hierarchy.Node `json:"hierarchy"`
	Graph     *graph.Graph    `json:"graph"`
	Meta      store.Meta      `json:"meta"`
}

func newBundleEnvelope(b *store.Bundle) bundleEnvelope {
	return bundleEnvelope{
		Manifest: manifestView{
			SchemaVersion: b.Manifest.SchemaVersion,
			LastUpdated:   b.Manifest.LastUpdated,
			Name:          b.Manifest.Name,
			Description:   b.Manifest.Description,
			Author:        b.Manifest.Author,
			Packs:         b.Manifest.Packs,
		},
		Hierarchy: b.Hierarchy,
		Graph:     b.Graph,
		Meta:      b.Meta,
	}
}

// handleManifest serves the full bundle envelope for a repository.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.bundle(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newBundleEnvelope(bundle))
}

// handleGraph serves only the dependency graph of a repository's bundle.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.bundle(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, bundle.Graph)
}

// handleHierarchy serves only the display hierarchy of a repository's bundle.
func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.bundle(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, bundle.Hierarchy)
}

// repoKey joins the owner and name path segments into the store's repository
// key form.
func repoKey(r *http.Request) string {
	return chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
}

// bundle resolves the request's repository bundle, honoring ?refresh=.
// On failure it writes the error response and returns ok=false.
func (s *Server) bundle(w http.ResponseWriter, r *http.Request) (*store.Bundle, bool) {
	key := repoKey(r)
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	bundle, err := s.store.Get(r.Context(), key, refresh)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return bundle, true
}

// handleSync creates a repo_sync operation and kicks off the background
// refresh. Responds 202 with the operation id; clients poll the operations
// endpoints for progress.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	key := repoKey(r)
	if err := errors.ValidateRepoKey(key); err != nil {
		s.writeError(w, err)
		return
	}

	var userID *string
	if u := r.URL.Query().Get("user"); u != "" {
		userID = &u
	}

	op, err := s.syncer.Trigger(r.Context(), key, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"operation_id": op.ID,
		"status":       string(op.Status),
	})
}

// handleGetOperation serves one operation by id.
func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op, err := s.registry.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if op == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "operation %s not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, op)
}

// handleListOperations serves operations newest first, optionally filtered
// by ?user= and bounded by ?limit=.
func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	var userID *string
	if u := r.URL.Query().Get("user"); u != "" {
		userID = &u
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidLimit, "limit %q is not an integer", raw))
			return
		}
		limit = n
	}

	list, err := s.registry.List(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"operations": list})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps coded errors to status codes. Clients branch on the code
// field, never on message text.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidRepo, errors.ErrCodeInvalidLimit, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeParse:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeFetch:
		status = http.StatusBadGateway
	case errors.ErrCodeInvalidTransition:
		status = http.StatusConflict
	}

	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)

	if status >= 500 {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "err", err)
	}
}
